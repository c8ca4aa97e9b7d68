package media

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"path/filepath"

	"braces.dev/errtrace"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gotranspile/g722"
	"github.com/jfreymuth/oggvorbis"

	"sipalert/global"
	"sipalert/system"
)

const (
	ExtWav  string = ".wav"
	ExtOgg  string = ".ogg"
	ExtG722 string = ".g722"
	ExtRaw  string = ".raw"
	ExtPcm  string = ".pcm"
)

// Source yields interleaved 16-bit PCM samples from an audio container.
// Read returns fewer samples than requested only at the end of the data.
type Source interface {
	Read(buf []int16) (int, error)
	Close() error
	Channels() int
	SampleRate() int
}

func Supported(path string) bool {
	switch system.ASCIIToLower(filepath.Ext(path)) {
	case ExtWav, ExtOgg, ExtG722, ExtRaw, ExtPcm:
		return true
	}
	return false
}

// Open picks a decoder by file extension.
func Open(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, global.NewError(global.ErrOpenFailed, err)
	}
	var src Source
	switch ext := system.ASCIIToLower(filepath.Ext(path)); ext {
	case ExtWav:
		src, err = newWavSource(f)
	case ExtOgg:
		src, err = newOggSource(f)
	case ExtG722:
		src = newG722Source(f)
	case ExtRaw, ExtPcm:
		src = &rawSource{file: f}
	default:
		err = global.NewError(global.ErrOpenFailed, "unsupported extension %q", ext)
	}
	if err != nil {
		_ = f.Close()
		return nil, errtrace.Wrap(err)
	}
	return src, nil
}

// OpenPrompt opens path and checks it is mono 16 kHz.
func OpenPrompt(path string) (Source, error) {
	src, err := Open(path)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	if src.Channels() != 1 || src.SampleRate() != global.PcmSamplingRate {
		ch, sr := src.Channels(), src.SampleRate()
		_ = src.Close()
		return nil, global.NewError(global.ErrFormatMismatch, "%s: %d channel(s) at %d Hz, want mono %d Hz", path, ch, sr, global.PcmSamplingRate)
	}
	return src, nil
}

// ============================================================

type wavSource struct {
	file *os.File
	dec  *wav.Decoder
	buf  *audio.IntBuffer
}

func newWavSource(f *os.File) (*wavSource, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, global.NewError(global.ErrOpenFailed, "%s: invalid wav file", f.Name())
	}
	if dec.BitDepth != 16 {
		return nil, global.NewError(global.ErrFormatMismatch, "%s: %d bit samples, want 16", f.Name(), dec.BitDepth)
	}
	return &wavSource{
		file: f,
		dec:  dec,
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: int(dec.NumChans), SampleRate: int(dec.SampleRate)},
			SourceBitDepth: 16,
		},
	}, nil
}

func (s *wavSource) Read(buf []int16) (int, error) {
	if cap(s.buf.Data) < len(buf) {
		s.buf.Data = make([]int, len(buf))
	}
	s.buf.Data = s.buf.Data[:len(buf)]
	n, err := s.dec.PCMBuffer(s.buf)
	for i := range n {
		buf[i] = int16(s.buf.Data[i])
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, errtrace.Wrap(err)
	}
	return n, nil
}

func (s *wavSource) Close() error    { return errtrace.Wrap(s.file.Close()) }
func (s *wavSource) Channels() int   { return int(s.dec.NumChans) }
func (s *wavSource) SampleRate() int { return int(s.dec.SampleRate) }

// ============================================================

type oggSource struct {
	file *os.File
	dec  *oggvorbis.Reader
	buf  []float32
}

func newOggSource(f *os.File) (*oggSource, error) {
	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, global.NewError(global.ErrOpenFailed, err)
	}
	return &oggSource{file: f, dec: dec}, nil
}

func (s *oggSource) Read(buf []int16) (int, error) {
	if cap(s.buf) < len(buf) {
		s.buf = make([]float32, len(buf))
	}
	s.buf = s.buf[:len(buf)]
	n := 0
	for n < len(buf) {
		m, err := s.dec.Read(s.buf[n:])
		n += m
		if err != nil {
			if !errors.Is(err, io.EOF) {
				floatToPCM(s.buf[:n], buf)
				return n, errtrace.Wrap(err)
			}
			break
		}
		if m == 0 {
			break
		}
	}
	floatToPCM(s.buf[:n], buf)
	return n, nil
}

func (s *oggSource) Close() error    { return errtrace.Wrap(s.file.Close()) }
func (s *oggSource) Channels() int   { return s.dec.Channels() }
func (s *oggSource) SampleRate() int { return s.dec.SampleRate() }

func floatToPCM(in []float32, out []int16) {
	for i, v := range in {
		switch {
		case v >= 1:
			out[i] = 32767
		case v <= -1:
			out[i] = -32768
		default:
			out[i] = int16(v * 32767)
		}
	}
}

// ============================================================

type g722Source struct {
	file *os.File
	dec  *g722.Decoder
	enc  []byte
}

func newG722Source(f *os.File) *g722Source {
	return &g722Source{file: f, dec: g722.NewDecoder(64000, 0)}
}

// Read decodes two 16 kHz samples per G.722 byte.
func (s *g722Source) Read(buf []int16) (int, error) {
	want := len(buf) / 2
	if cap(s.enc) < want {
		s.enc = make([]byte, want)
	}
	s.enc = s.enc[:want]
	m, err := io.ReadFull(s.file, s.enc)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, errtrace.Wrap(err)
	}
	if m == 0 {
		return 0, nil
	}
	return s.dec.Decode(buf, s.enc[:m]), nil
}

func (s *g722Source) Close() error  { return errtrace.Wrap(s.file.Close()) }
func (s *g722Source) Channels() int { return 1 }
func (s *g722Source) SampleRate() int {
	return global.PcmSamplingRate
}

// ============================================================

// rawSource reads headerless signed 16-bit little endian mono 16 kHz audio.
type rawSource struct {
	file *os.File
	raw  []byte
}

func (s *rawSource) Read(buf []int16) (int, error) {
	if cap(s.raw) < 2*len(buf) {
		s.raw = make([]byte, 2*len(buf))
	}
	s.raw = s.raw[:2*len(buf)]
	m, err := io.ReadFull(s.file, s.raw)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, errtrace.Wrap(err)
	}
	n := m / 2
	for i := range n {
		buf[i] = int16(binary.LittleEndian.Uint16(s.raw[2*i:]))
	}
	return n, nil
}

func (s *rawSource) Close() error    { return errtrace.Wrap(s.file.Close()) }
func (s *rawSource) Channels() int   { return 1 }
func (s *rawSource) SampleRate() int { return global.PcmSamplingRate }
