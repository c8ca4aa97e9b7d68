package rtp

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zaf/g711"

	"sipalert/global"
)

func TestDownsampleHalve(t *testing.T) {
	cases := []struct {
		name string
		in   []int16
		want []int16
	}{
		{"pairs", []int16{10, 20, 30, 40}, []int16{15, 35}},
		{"odd tail dropped", []int16{10, 20, 30}, []int16{15}},
		{"no overflow", []int16{32767, 32767, -32768, -32768}, []int16{32767, -32768}},
		{"negative", []int16{-3, 0}, []int16{-1}},
		{"empty", nil, []int16{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out := make([]int16, 8)
			n := DownsampleHalve(c.in, out)
			if diff := cmp.Diff(out[:n], c.want); diff != "" {
				t.Errorf("DownsampleHalve(%v) mismatch (-got +want):\n%s", c.in, diff)
			}
		})
	}
}

func TestEncoderEncode(t *testing.T) {
	e := NewEncoder()
	pcm := []int16{0, 1000, -1000, 32767}
	out := make([]byte, 8)
	n, err := e.Encode(pcm, out)
	if err != nil {
		t.Fatalf("Encode() error = %v, want nil", err)
	}
	if n != len(pcm) {
		t.Fatalf("Encode() = %d, want %d", n, len(pcm))
	}
	if out[0] != Silence {
		t.Errorf("Encode(0) = %#x, want %#x", out[0], Silence)
	}
	for i, s := range pcm {
		if want := g711.EncodeAlawFrame(s); out[i] != want {
			t.Errorf("Encode()[%d] = %#x, want %#x", i, out[i], want)
		}
	}
}

func TestEncoderClamp(t *testing.T) {
	e := NewEncoder()
	out := make([]byte, 3)
	n, err := e.Encode(make([]int16, 10), out)
	if err != nil || n != 3 {
		t.Errorf("Encode() = %d, %v, want 3, nil", n, err)
	}
}

func TestEncoderSinkCreatedOnce(t *testing.T) {
	calls := 0
	prev := newAlawSink
	newAlawSink = func(w io.Writer) (io.Writer, error) {
		calls++
		return prev(w)
	}
	t.Cleanup(func() { newAlawSink = prev })

	e := NewEncoder()
	out := make([]byte, global.FrameSamples)
	for range 3 {
		if _, err := e.Encode(make([]int16, 4), out); err != nil {
			t.Fatalf("Encode() error = %v, want nil", err)
		}
	}
	if calls != 1 {
		t.Errorf("sink created %d times, want 1", calls)
	}
}

func TestEncoderSinkFailure(t *testing.T) {
	prev := newAlawSink
	newAlawSink = func(io.Writer) (io.Writer, error) { return nil, errors.New("boom") }
	t.Cleanup(func() { newAlawSink = prev })

	_, err := NewEncoder().Encode([]int16{1}, make([]byte, 1))
	if !errors.Is(err, global.ErrSinkInitFailed) {
		t.Errorf("Encode() error = %v, want %v", err, global.ErrSinkInitFailed)
	}
}

func TestEncodeFrame(t *testing.T) {
	pcm := make([]int16, global.FrameSamples)
	out := make([]byte, global.FrameSamples)
	e := NewEncoder()

	cases := []struct {
		samplesPerFrame int
		want            int
	}{
		{160, 160},
		{320, 320},
	}
	for _, c := range cases {
		n, err := e.EncodeFrame(pcm, c.samplesPerFrame, out)
		if err != nil || n != c.want {
			t.Errorf("EncodeFrame(%d) = %d, %v, want %d, nil", c.samplesPerFrame, n, err, c.want)
		}
	}
}
