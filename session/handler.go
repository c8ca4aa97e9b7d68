package session

import (
	"sipalert/sip"
	"sipalert/system"
)

// Handler receives the call milestones. Methods run on the scheduler
// goroutine and may call back into the session.
type Handler interface {
	OnAnswered(s *Session)
	// OnInvite returns the status sent for a new incoming call. 1xx keeps
	// it ringing, 2xx answers it, anything else rejects it.
	OnInvite(s *Session, ev *sip.Event) int
	OnTerminate(s *Session)
	OnDTMF(s *Session, digit byte)
}

// NopHandler starts media on answer and lets incoming calls ring.
type NopHandler struct{}

func (NopHandler) OnAnswered(s *Session) {
	if err := s.StartMedia(); err != nil {
		system.LogError(system.LTRTPStack, err.Error())
	}
}

func (NopHandler) OnInvite(*Session, *sip.Event) int { return 180 }

func (NopHandler) OnTerminate(*Session) {}

func (NopHandler) OnDTMF(*Session, byte) {}
