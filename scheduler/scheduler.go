// Package scheduler runs the single loop that interleaves signaling events
// with 20 ms audio frames.
package scheduler

//go:generate go tool mockgen -destination ../internal/testutil/schedmock/schedmock.go -package schedmock sipalert/scheduler Events,Engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"braces.dev/errtrace"

	"sipalert/global"
	"sipalert/sip"
	"sipalert/system"
)

// Events is the source of signaling events. *sip.UserAgent implements it.
type Events interface {
	WaitEvent(timeout time.Duration) (*sip.Event, bool)
}

// Engine consumes events and produces audio. *session.Session implements it.
type Engine interface {
	Dispatch(ev *sip.Event)
	Refresh(now time.Time)
	AudioTick() error
	Shutdown()
}

// Run loops until ctx is cancelled, then shuts the engine down and returns
// nil. Only a failed audio sink ends the loop with an error.
func Run(ctx context.Context, events Events, engine Engine) error {
	system.LogInfo(system.LTScheduler, "Scheduler started")
	for {
		if ctx.Err() != nil {
			system.LogInfo(system.LTScheduler, "Scheduler stopping")
			engine.Shutdown()
			return nil
		}
		if err := step(events, engine); err != nil {
			engine.Shutdown()
			return errtrace.Wrap(err)
		}
	}
}

func step(events Events, engine Engine) error {
	defer func() {
		if r := recover(); r != nil {
			system.LogCallStack(r)
		}
	}()
	if ev, ok := events.WaitEvent(global.EventWait); ok && ev != nil {
		engine.Dispatch(ev)
	}
	engine.Refresh(time.Now())
	if err := engine.AudioTick(); err != nil {
		if errors.Is(err, global.ErrSinkInitFailed) {
			return errtrace.Wrap(err)
		}
		system.LogWarning(system.LTScheduler, fmt.Sprintf("Audio tick failed: %v", err))
	}
	return nil
}
