package media

import (
	"fmt"

	"braces.dev/errtrace"

	"sipalert/global"
	"sipalert/system"
)

type entry struct {
	src   Source
	path  string
	delay int // remaining 20 ms ticks of leading silence
}

// Queue is a bounded FIFO of prompts. It keeps one slot free so that
// head == tail means empty and (head+1)%slots == tail means full.
// A Queue is not safe for concurrent use; the session drives it from the
// scheduler goroutine only.
type Queue struct {
	slots []entry
	head  int
	tail  int
	open  func(string) (Source, error)
}

func NewQueue(capacity int) *Queue {
	return &Queue{
		slots: make([]entry, capacity+1),
		open:  OpenPrompt,
	}
}

// SetOpener replaces the function used to open enqueued paths.
func (q *Queue) SetOpener(open func(string) (Source, error)) {
	q.open = open
}

func (q *Queue) full() bool  { return (q.head+1)%len(q.slots) == q.tail }
func (q *Queue) empty() bool { return q.head == q.tail }

func (q *Queue) Cap() int { return len(q.slots) - 1 }

func (q *Queue) Len() int {
	return (q.head - q.tail + len(q.slots)) % len(q.slots)
}

func (q *Queue) Empty() bool {
	return q.empty()
}

// Enqueue opens path and appends it after delayMs of silence.
// The delay is counted in whole 20 ms ticks.
func (q *Queue) Enqueue(delayMs int, path string) error {
	if q.full() {
		return global.NewError(global.ErrQueueFull, "%s: %d prompts pending", path, q.Cap())
	}
	if delayMs < 0 {
		delayMs = 0
	}
	src, err := q.open(path)
	if err != nil {
		return errtrace.Wrap(err)
	}
	if src.Channels() != 1 || src.SampleRate() != global.PcmSamplingRate {
		_ = src.Close()
		return global.NewError(global.ErrFormatMismatch, "%s: %d channel(s) at %d Hz", path, src.Channels(), src.SampleRate())
	}
	q.slots[q.head] = entry{src: src, path: path, delay: delayMs / global.PacketizationTime}
	q.head = (q.head + 1) % len(q.slots)
	system.LogDebug(system.LTPlayback, fmt.Sprintf("Queued [%s] after %d ms", path, delayMs))
	return nil
}

// ReadFrame fills out with the next samples in FIFO order. A short count
// marks the end of the current prompt, which is then closed.
func (q *Queue) ReadFrame(out []int16) int {
	if q.empty() {
		system.LogWarning(system.LTPlayback, "read without open source")
		return 0
	}
	e := &q.slots[q.tail]
	if e.delay > 0 {
		e.delay--
		clear(out)
		return len(out)
	}
	n, err := e.src.Read(out)
	if err != nil {
		system.LogError(system.LTPlayback, fmt.Sprintf("Reading [%s] failed: %v", e.path, err))
	}
	if n < len(out) {
		q.pop()
	}
	return n
}

func (q *Queue) pop() {
	e := &q.slots[q.tail]
	if err := e.src.Close(); err != nil {
		system.LogWarning(system.LTPlayback, fmt.Sprintf("Closing [%s] failed: %v", e.path, err))
	}
	system.LogDebug(system.LTPlayback, fmt.Sprintf("Finished [%s]", e.path))
	*e = entry{}
	q.tail = (q.tail + 1) % len(q.slots)
}

// FlushAll closes every pending prompt in FIFO order.
func (q *Queue) FlushAll() {
	for !q.empty() {
		q.pop()
	}
}

// Open replaces any backlog with path.
func (q *Queue) Open(path string) error {
	q.FlushAll()
	return errtrace.Wrap(q.Enqueue(0, path))
}
