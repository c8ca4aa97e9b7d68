package rtp

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/zaf/g711"

	"sipalert/global"
	"sipalert/system"
)

// Silence is the A-law code of a zero sample.
const Silence byte = 0xD5

var newAlawSink = func(w io.Writer) (io.Writer, error) {
	enc, err := g711.NewAlawEncoder(w, g711.Lpcm)
	if err != nil {
		return nil, err
	}
	return enc, nil
}

// DownsampleHalve averages each pair of adjacent samples of in into out
// and returns the number of samples written.
func DownsampleHalve(in, out []int16) int {
	n := min(len(in)/2, len(out))
	for i := range n {
		out[i] = int16((int32(in[2*i]) + int32(in[2*i+1])) / 2)
	}
	return n
}

// Encoder companding-encodes linear PCM to A-law through one sink that
// is created on first use and kept for the lifetime of the Encoder.
type Encoder struct {
	sink io.Writer
	out  bytes.Buffer
	pcm  []byte
	half []int16
}

func NewEncoder() *Encoder {
	return &Encoder{
		pcm:  make([]byte, 0, 2*global.FrameSamples),
		half: make([]int16, global.FrameSamples/2),
	}
}

func (e *Encoder) init() error {
	if e.sink != nil {
		return nil
	}
	sink, err := newAlawSink(&e.out)
	if err != nil {
		return global.NewError(global.ErrSinkInitFailed, err)
	}
	system.LogDebug(system.LTMediaCapability, "A-law sink created")
	e.sink = sink
	return nil
}

// Encode writes at most len(out) A-law bytes for pcm and returns the count.
func (e *Encoder) Encode(pcm []int16, out []byte) (int, error) {
	if err := e.init(); err != nil {
		return 0, err
	}
	e.pcm = e.pcm[:0]
	for _, s := range pcm {
		e.pcm = binary.LittleEndian.AppendUint16(e.pcm, uint16(s))
	}
	e.out.Reset()
	if _, err := e.sink.Write(e.pcm); err != nil {
		return 0, global.NewError(global.ErrSinkInitFailed, err)
	}
	return copy(out, e.out.Bytes()), nil
}

// EncodeFrame encodes one 20 ms frame of 16 kHz pcm for a codec framed at
// samplesPerFrame, halving the rate first for 8 kHz codecs.
func (e *Encoder) EncodeFrame(pcm []int16, samplesPerFrame int, out []byte) (int, error) {
	if samplesPerFrame < global.FrameSamples {
		n := DownsampleHalve(pcm, e.half)
		return e.Encode(e.half[:n], out)
	}
	return e.Encode(pcm, out)
}
