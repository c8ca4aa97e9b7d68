package session

import (
	"cmp"
	"time"
)

type NotificationKind string

const (
	KindState        NotificationKind = "state"
	KindRegistration NotificationKind = "registration"
	KindDTMF         NotificationKind = "dtmf"
)

// Notification is published on every state transition, registration
// outcome and received digit.
type Notification struct {
	Time   time.Time        `json:"time"`
	Kind   NotificationKind `json:"kind"`
	State  State            `json:"state,omitempty"`
	Detail string           `json:"detail,omitempty"`
}

// Snapshot is a copy of the session fields, safe to read from any goroutine.
type Snapshot struct {
	State        State              `json:"state"`
	Registration RegistrationStatus `json:"registration"`
	CallID       int                `json:"cid"`
	DialogID     int                `json:"did"`
	Active       bool               `json:"active"`
	Playing      bool               `json:"playing"`
	Queued       int                `json:"queued"`
	RemoteHost   string             `json:"remote_host,omitempty"`
	RemotePort   int                `json:"remote_port,omitempty"`
	Codec        string             `json:"codec,omitempty"`
}

func (s *Session) publish() {
	s.snap.Store(&Snapshot{
		State:        s.State(),
		Registration: s.reg.status,
		CallID:       s.cid,
		DialogID:     s.did,
		Active:       s.active,
		Playing:      s.playing,
		Queued:       s.queue.Len(),
		RemoteHost:   s.remote.Host,
		RemotePort:   s.remote.Port,
		Codec:        s.remote.Codec,
	})
}

// Snapshot returns the state published after the last change.
func (s *Session) Snapshot() Snapshot {
	return *s.snap.Load()
}

func (s *Session) notify(n Notification) {
	if s.opts.Notify == nil {
		return
	}
	if n.Time.IsZero() {
		n.Time = time.Now()
	}
	n.State = cmp.Or(n.State, s.State())
	s.opts.Notify(n)
}
