package media

import (
	"encoding/binary"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/go-cmp/cmp"

	"sipalert/global"
)

func writeRaw(t *testing.T, dir, name string, samples []int16) string {
	t.Helper()
	data := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(s))
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeWav(t *testing.T, dir, name string, rate, channels int, samples []int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenRaw(t *testing.T) {
	path := writeRaw(t, t.TempDir(), "beep.raw", []int16{1, -2, 300, -32768, 32767})
	src, err := OpenPrompt(path)
	if err != nil {
		t.Fatalf("OpenPrompt() error = %v, want nil", err)
	}
	defer src.Close()

	buf := make([]int16, 4)
	if n, err := src.Read(buf); n != 4 || err != nil {
		t.Fatalf("Read() = %d, %v, want 4, nil", n, err)
	}
	if diff := cmp.Diff(buf, []int16{1, -2, 300, -32768}); diff != "" {
		t.Errorf("Read() mismatch (-got +want):\n%s", diff)
	}
	if n, _ := src.Read(buf); n != 1 || buf[0] != 32767 {
		t.Errorf("Read() = %d (sample %d), want 1 sample of 32767", n, buf[0])
	}
	if n, _ := src.Read(buf); n != 0 {
		t.Errorf("Read() at end = %d, want 0", n)
	}
}

func TestOpenWav(t *testing.T) {
	dir := t.TempDir()
	path := writeWav(t, dir, "tone.wav", global.PcmSamplingRate, 1, []int{10, 20, 30})
	src, err := OpenPrompt(path)
	if err != nil {
		t.Fatalf("OpenPrompt() error = %v, want nil", err)
	}
	defer src.Close()

	buf := make([]int16, 8)
	n, err := src.Read(buf)
	if err != nil {
		t.Fatalf("Read() error = %v, want nil", err)
	}
	if diff := cmp.Diff(buf[:n], []int16{10, 20, 30}); diff != "" {
		t.Errorf("Read() mismatch (-got +want):\n%s", diff)
	}
}

func TestOpenPromptMismatch(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"stereo": writeWav(t, dir, "stereo.wav", global.PcmSamplingRate, 2, []int{1, 1, 2, 2}),
		"narrow": writeWav(t, dir, "narrow.wav", global.SamplingRate, 1, []int{1, 2}),
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := OpenPrompt(path); !errors.Is(err, global.ErrFormatMismatch) {
				t.Errorf("OpenPrompt() error = %v, want %v", err, global.ErrFormatMismatch)
			}
			// the rejected file must be closed so that it can be removed and reopened
			if err := os.Remove(path); err != nil {
				t.Errorf("os.Remove() error = %v, want nil", err)
			}
		})
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(filepath.Join(dir, "missing.wav"))
	if !errors.Is(err, global.ErrOpenFailed) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open(missing) error = %v, want %v and %v", err, global.ErrOpenFailed, fs.ErrNotExist)
	}

	bad := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(bad, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(bad); !errors.Is(err, global.ErrOpenFailed) {
		t.Errorf("Open(txt) error = %v, want %v", err, global.ErrOpenFailed)
	}

	junk := filepath.Join(dir, "junk.wav")
	if err := os.WriteFile(junk, []byte("not a riff file at all"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(junk); !errors.Is(err, global.ErrOpenFailed) {
		t.Errorf("Open(junk) error = %v, want %v", err, global.ErrOpenFailed)
	}
}

func TestFloatToPCM(t *testing.T) {
	out := make([]int16, 4)
	floatToPCM([]float32{0, 1.5, -2, 0.5}, out)
	if diff := cmp.Diff(out, []int16{0, 32767, -32768, 16383}); diff != "" {
		t.Errorf("floatToPCM() mismatch (-got +want):\n%s", diff)
	}
}

func TestLibrary(t *testing.T) {
	dir := t.TempDir()
	writeRaw(t, dir, "test.raw", make([]int16, global.PcmSamplingRate/2))
	writeWav(t, dir, "stereo.wav", global.PcmSamplingRate, 2, []int{1, 1})
	if err := os.WriteFile(filepath.Join(dir, "readme.md"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	lib, err := LoadLibrary(dir)
	if err != nil {
		t.Fatalf("LoadLibrary() error = %v, want nil", err)
	}
	if lib.Count() != 1 {
		t.Errorf("Count() = %d, want 1", lib.Count())
	}
	want := filepath.Join(dir, "test.raw")
	for _, name := range []string{"test.raw", "test"} {
		if got, ok := lib.Resolve(name); !ok || got != want {
			t.Errorf("Resolve(%q) = %q, %v, want %q, true", name, got, ok, want)
		}
	}
	if _, ok := lib.Resolve("stereo"); ok {
		t.Errorf("Resolve(stereo) = true, want false")
	}
	if p := lib.Prompts(); len(p) != 1 || p[0].Duration.Milliseconds() != 500 {
		t.Errorf("Prompts() = %v, want one 500 ms prompt", p)
	}

	if _, err := LoadLibrary(filepath.Join(dir, "none")); !errors.Is(err, global.ErrOpenFailed) {
		t.Errorf("LoadLibrary(missing) error = %v, want %v", err, global.ErrOpenFailed)
	}
}
