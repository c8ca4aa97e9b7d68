package rtp

//go:generate go tool mockgen -destination ../internal/testutil/rtpmock/rtpmock.go -package rtpmock sipalert/rtp Transport,Dialer

import (
	"fmt"

	"braces.dev/errtrace"

	"sipalert/global"
	"sipalert/system"
)

// Transport puts RTP payloads on the wire.
type Transport interface {
	Send(payload []byte, ts uint32) error
	// CurrentTimestamp returns the send clock for the current time.
	CurrentTimestamp() uint32
	Close() error
}

type Dialer interface {
	Dial(host string, port int, pt uint8, profile *Profile) (Transport, error)
}

type DialerFunc func(host string, port int, pt uint8, profile *Profile) (Transport, error)

func (f DialerFunc) Dial(host string, port int, pt uint8, profile *Profile) (Transport, error) {
	return f(host, port, pt, profile)
}

// Session tracks the send timestamp of one media stream. The timestamp
// never moves backwards between Start and Stop. It is not safe for
// concurrent use.
type Session struct {
	dialer    Dialer
	transport Transport
	profile   *Profile
	pt        uint8
	ts        uint32
}

func NewSession(d Dialer) *Session {
	return &Session{dialer: d}
}

// Start replaces any running transport with a new one towards host:port.
func (s *Session) Start(host string, port int, pt uint8, codec string) error {
	c, err := ParseCodec(codec)
	if err != nil {
		return global.NewError(global.ErrInvalidArgs, err)
	}

	s.Stop()

	profile := ProfileFor(pt, c)
	tr, err := s.dialer.Dial(host, port, pt, profile)
	if err != nil {
		return errtrace.Wrap(err)
	}
	s.transport = tr
	s.profile = profile
	s.pt = pt
	s.ts = tr.CurrentTimestamp()
	system.LogInfo(system.LTRTPStack, fmt.Sprintf("RTP session started to %s:%d pt %d (%s, profile %s)", host, port, pt, c, profile.Name()))
	return nil
}

func (s *Session) Started() bool {
	return s.transport != nil
}

// Resume moves the timestamp up to the transport clock so that idle
// time is not replayed.
func (s *Session) Resume() error {
	if s.transport == nil {
		return global.ErrNotStarted
	}
	if cur := s.transport.CurrentTimestamp(); int32(cur-s.ts) > 0 {
		s.ts = cur
	}
	return nil
}

// Send transmits payload at the current timestamp and advances it by nsamples.
func (s *Session) Send(payload []byte, nsamples int) error {
	if s.transport == nil {
		return global.ErrNotStarted
	}
	err := s.transport.Send(payload, s.ts)
	s.ts += uint32(nsamples)
	return errtrace.Wrap(err)
}

func (s *Session) Timestamp() uint32 {
	return s.ts
}

func (s *Session) PayloadType() uint8 {
	return s.pt
}

// Stop closes the transport; the next Start dials a new one.
func (s *Session) Stop() {
	if s.transport == nil {
		return
	}
	if err := s.transport.Close(); err != nil {
		system.LogWarning(system.LTRTPStack, fmt.Sprintf("Closing RTP transport failed: %v", err))
	}
	s.transport = nil
	s.profile = nil
	system.LogInfo(system.LTRTPStack, "RTP session stopped")
}
