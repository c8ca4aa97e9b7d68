// Package session drives the single call of the agent: registration, the
// call state machine and the prompt playback that feeds RTP.
package session

//go:generate go tool mockgen -destination ../internal/testutil/sipmock/sipmock.go -package sipmock sipalert/session Signaling

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"braces.dev/errtrace"
	"github.com/qmuntal/stateless"

	"sipalert/global"
	"sipalert/media"
	"sipalert/rtp"
	"sipalert/sdp"
	"sipalert/sip"
	"sipalert/system"
)

// Signaling is the set of SIP actions the session needs. *sip.UserAgent
// implements it.
type Signaling interface {
	Register(expires int) (int, error)
	Unregister() error
	Invite(to, from, subject string, sdp []byte) (int, error)
	Respond(tid, code int, body []byte, contentType string) error
	Ack(did int) error
	SendInfo(did int, contentType string, body []byte) error
	Terminate(cid, did int) error
	WaitEvent(timeout time.Duration) (*sip.Event, bool)
	LocalIP() string
}

var _ Signaling = (*sip.UserAgent)(nil)

type State string

const (
	StateIdle         State = "Idle"
	StateRegistering  State = "Registering"
	StateRegistered   State = "Registered"
	StateInviting     State = "Inviting"
	StateRingingIn    State = "RingingIn"
	StateActive       State = "Active"
	StateTerminating  State = "Terminating"
	StateShuttingDown State = "ShuttingDown"
)

type trigger string

const (
	trRegister   trigger = "register"
	trRegistered trigger = "registered"
	trRegFailed  trigger = "registration_failed"
	trCall       trigger = "call"
	trIncoming   trigger = "incoming"
	trAnswered   trigger = "answered"
	trAccept     trigger = "accept"
	trHangup     trigger = "hangup"
	trEnded      trigger = "ended"
	trCleared    trigger = "cleared"
	trShutdown   trigger = "shutdown"
)

type RegistrationStatus string

const (
	Unregistered RegistrationStatus = "unregistered"
	Pending      RegistrationStatus = "pending"
	Registered   RegistrationStatus = "registered"
	Failed       RegistrationStatus = "failed"
)

// registrationRetries is the number of failures tolerated before giving up.
const registrationRetries = 1

type registration struct {
	rid         int
	status      RegistrationStatus
	failures    int
	lastRefresh time.Time
	interval    time.Duration
}

type Options struct {
	From       string // display identity used in INVITE From, empty for the AOR
	RTPPort    int
	Wideband   bool
	Handler    Handler
	Notify     func(Notification)
	RefreshAge time.Duration // upper bound of the re-registration interval
}

type deferred struct {
	at time.Time
	fn func()
}

// Session owns the state of the one call. All methods except Snapshot
// must be called from the scheduler goroutine.
type Session struct {
	sig     Signaling
	rtp     *rtp.Session
	queue   *media.Queue
	enc     *rtp.Encoder
	handler Handler
	opts    Options

	fsm *stateless.StateMachine
	reg registration

	cid, did, tid int
	active        bool
	playing       bool
	remote        sdp.RemoteMedia

	frame   []int16
	payload []byte
	later   []deferred

	snap atomic.Pointer[Snapshot]
}

func New(sig Signaling, rtps *rtp.Session, queue *media.Queue, opts Options) *Session {
	if opts.Handler == nil {
		opts.Handler = NopHandler{}
	}
	if opts.RTPPort == 0 {
		opts.RTPPort = global.RTPPort
	}
	if opts.RefreshAge == 0 {
		opts.RefreshAge = time.Duration(global.RegistrationExpires) * time.Second
	}
	s := &Session{
		sig:     sig,
		rtp:     rtps,
		queue:   queue,
		enc:     rtp.NewEncoder(),
		handler: opts.Handler,
		opts:    opts,
		reg:     registration{rid: -1, status: Unregistered},
		cid:     -1,
		did:     -1,
		tid:     -1,
		frame:   make([]int16, global.FrameSamples),
		payload: make([]byte, global.FrameSamples),
	}
	s.fsm = s.newFSM()
	s.publish()
	return s
}

func (s *Session) newFSM() *stateless.StateMachine {
	fsm := stateless.NewStateMachine(StateIdle)

	fsm.Configure(StateIdle).
		Permit(trRegister, StateRegistering).
		Permit(trShutdown, StateShuttingDown)

	fsm.Configure(StateRegistering).
		Ignore(trRegister).
		Permit(trRegistered, StateRegistered).
		Permit(trRegFailed, StateIdle).
		Permit(trShutdown, StateShuttingDown)

	fsm.Configure(StateRegistered).
		Ignore(trRegister).
		Ignore(trRegistered).
		Ignore(trRegFailed).
		Permit(trCall, StateInviting).
		Permit(trIncoming, StateRingingIn).
		Permit(trShutdown, StateShuttingDown)

	fsm.Configure(StateInviting).
		SubstateOf(StateRegistered).
		Permit(trAnswered, StateActive).
		Permit(trHangup, StateTerminating).
		Permit(trEnded, StateTerminating)

	fsm.Configure(StateRingingIn).
		SubstateOf(StateRegistered).
		Permit(trAccept, StateActive).
		Permit(trHangup, StateTerminating).
		Permit(trEnded, StateTerminating)

	fsm.Configure(StateActive).
		SubstateOf(StateRegistered).
		OnEntry(func(context.Context, ...any) error {
			s.active = true
			return nil
		}).
		Permit(trHangup, StateTerminating).
		Permit(trEnded, StateTerminating)

	fsm.Configure(StateTerminating).
		SubstateOf(StateRegistered).
		OnEntry(s.onTerminating).
		Permit(trCleared, StateRegistered)

	fsm.Configure(StateShuttingDown).
		Ignore(trRegistered).
		Ignore(trRegFailed).
		Ignore(trShutdown)

	fsm.OnTransitioned(func(_ context.Context, t stateless.Transition) {
		system.LogInfo(system.LTSessionState, fmt.Sprintf("%v -> %v on %v", t.Source, t.Destination, t.Trigger))
		s.notify(Notification{Kind: KindState, State: t.Destination.(State), Detail: fmt.Sprint(t.Trigger)})
	})
	return fsm
}

// onTerminating releases the media of the ended call.
func (s *Session) onTerminating(context.Context, ...any) error {
	s.handler.OnTerminate(s)
	s.rtp.Stop()
	s.queue.FlushAll()
	s.playing = false
	s.active = false
	s.cid, s.did, s.tid = -1, -1, -1
	s.remote = sdp.RemoteMedia{}
	return nil
}

func (s *Session) fire(tr trigger) error {
	err := s.fsm.Fire(tr)
	s.publish()
	if err != nil {
		return global.NewError(global.ErrInvalidArgs, "%v in state %v: %v", tr, s.State(), err)
	}
	return nil
}

func (s *Session) State() State {
	return s.fsm.MustState().(State)
}

func (s *Session) is(st State) bool {
	ok, _ := s.fsm.IsInState(st)
	return ok
}

// inCall reports whether a call is pending or established.
func (s *Session) inCall() bool {
	return s.cid >= 0 || s.did >= 0 ||
		s.is(StateInviting) || s.is(StateRingingIn) || s.is(StateActive) || s.is(StateTerminating)
}

func (s *Session) Active() bool  { return s.active }
func (s *Session) Playing() bool { return s.playing }
func (s *Session) CallID() int   { return s.cid }
func (s *Session) DialogID() int { return s.did }

func (s *Session) Remote() sdp.RemoteMedia { return s.remote }

func (s *Session) Registration() RegistrationStatus { return s.reg.status }

func (s *Session) prefs() []string {
	if s.opts.Wideband {
		return []string{"PCMA/16000", "PCMA/8000"}
	}
	return []string{"PCMA/8000"}
}

func (s *Session) local() sdp.Local {
	return sdp.Local{IP: s.sig.LocalIP(), Port: s.opts.RTPPort, Wideband: s.opts.Wideband}
}

// ==================================================================
// Registration

// Register sends the initial REGISTER.
func (s *Session) Register() error {
	if err := s.fire(trRegister); err != nil {
		return errtrace.Wrap(err)
	}
	return errtrace.Wrap(s.register())
}

func (s *Session) register() error {
	rid, err := s.sig.Register(global.RegistrationExpires)
	if err != nil {
		return global.NewError(global.ErrRegistrationFailure, err)
	}
	s.reg.rid = rid
	if s.reg.status != Registered {
		s.reg.status = Pending
	}
	s.reg.lastRefresh = time.Now()
	s.publish()
	return nil
}

// WaitRegistered waits for the registration outcome, dispatching every
// event that arrives meanwhile.
func (s *Session) WaitRegistered(ctx context.Context) error {
	for range global.RegistrationTries {
		if err := ctx.Err(); err != nil {
			return errtrace.Wrap(err)
		}
		if ev, ok := s.sig.WaitEvent(global.RegistrationTryWait); ok {
			s.Dispatch(ev)
		}
		switch s.reg.status {
		case Registered:
			return nil
		case Failed:
			return global.NewError(global.ErrNoRights, "registration of rid %d refused", s.reg.rid)
		}
	}
	return global.NewError(global.ErrRegistrationTimeout, "no answer after %d tries", global.RegistrationTries)
}

// refreshInterval is half the granted expiry, capped at limit. A response
// without expiry is taken to grant what was requested.
func refreshInterval(granted int, limit time.Duration) time.Duration {
	if granted <= 0 {
		granted = global.RegistrationExpires
	}
	return min(time.Duration(granted)*time.Second/2, limit)
}

func (s *Session) onRegistrationSuccess(ev *sip.Event) {
	s.reg.status = Registered
	s.reg.failures = 0
	s.reg.interval = refreshInterval(ev.Expires(), s.opts.RefreshAge)
	if err := s.fire(trRegistered); err != nil {
		system.LogWarning(system.LTRegistration, err.Error())
	}
	s.notify(Notification{Kind: KindRegistration, Detail: string(Registered)})
}

func (s *Session) onRegistrationFailure(ev *sip.Event) {
	sc := ev.StatusCode()
	if s.reg.status == Registered {
		if sc != 401 && sc != 407 {
			system.LogWarning(system.LTRegistration, fmt.Sprintf("Registration refresh failed: %s", ev))
		}
		return
	}
	s.reg.failures++
	if s.reg.failures > registrationRetries {
		s.reg.status = Failed
		if err := s.fire(trRegFailed); err != nil {
			system.LogWarning(system.LTRegistration, err.Error())
		}
		s.notify(Notification{Kind: KindRegistration, Detail: string(Failed)})
		return
	}
	// the user agent answers challenges itself; anything else is retried here
	if sc != 401 && sc != 407 {
		if err := s.register(); err != nil {
			system.LogError(system.LTRegistration, err.Error())
		}
	}
}

// Refresh re-registers when the binding is due and runs deferred actions.
func (s *Session) Refresh(now time.Time) {
	if s.reg.status == Registered && now.Sub(s.reg.lastRefresh) >= s.reg.interval {
		system.LogInfo(system.LTRegistration, "Refreshing registration")
		if err := s.register(); err != nil {
			system.LogError(system.LTRegistration, err.Error())
		}
	}
	for len(s.later) > 0 && !now.Before(s.later[0].at) {
		d := s.later[0]
		s.later = s.later[1:]
		d.fn()
	}
}

// After runs fn on the scheduler goroutine once delay has passed.
func (s *Session) After(delay time.Duration, fn func()) {
	at := time.Now().Add(delay)
	i := len(s.later)
	for i > 0 && s.later[i-1].at.After(at) {
		i--
	}
	s.later = append(s.later, deferred{})
	copy(s.later[i+1:], s.later[i:])
	s.later[i] = deferred{at: at, fn: fn}
}

// ==================================================================
// Calls

// Call invites to with subject. Only one call may exist at a time.
func (s *Session) Call(to, subject string) error {
	if s.inCall() {
		return global.NewError(global.ErrTooManyCalls, "call %d in progress", s.cid)
	}
	if !s.is(StateRegistered) {
		return global.NewError(global.ErrNotStarted, "cannot call in state %v", s.State())
	}
	cid, err := s.sig.Invite(to, s.opts.From, subject, s.local().Offer())
	if err != nil {
		return global.NewError(global.ErrBuildFailure, err)
	}
	s.cid = cid
	system.LogInfo(system.LTSessionState, fmt.Sprintf("Calling %s (cid %d)", to, cid))
	return errtrace.Wrap(s.fire(trCall))
}

// Answer accepts the ringing incoming call with the local SDP.
func (s *Session) Answer() error {
	if !s.is(StateRingingIn) {
		return global.NewError(global.ErrUnknownCall, "no incoming call to answer")
	}
	body, err := s.local().Answer(s.remote)
	if err != nil {
		if rerr := s.sig.Respond(s.tid, 400, nil, ""); rerr != nil {
			system.LogError(system.LTSIPStack, rerr.Error())
		}
		s.end(trHangup)
		return errtrace.Wrap(err)
	}
	if err := s.sig.Respond(s.tid, 200, body, sdp.ContentType); err != nil {
		return errtrace.Wrap(err)
	}
	s.tid = -1
	if err := s.StartMedia(); err != nil {
		system.LogError(system.LTRTPStack, err.Error())
	}
	return errtrace.Wrap(s.fire(trAccept))
}

// Terminate hangs up the current call, whatever its stage.
func (s *Session) Terminate() error {
	if !s.inCall() {
		return nil
	}
	if err := s.sig.Terminate(s.cid, s.did); err != nil {
		system.LogWarning(system.LTSIPStack, err.Error())
	}
	s.end(trHangup)
	return nil
}

// end moves the call through Terminating back to Registered.
func (s *Session) end(tr trigger) {
	if err := s.fire(tr); err != nil {
		system.LogWarning(system.LTSessionState, err.Error())
		return
	}
	if err := s.fire(trCleared); err != nil {
		system.LogWarning(system.LTSessionState, err.Error())
	}
}

// Shutdown ends any call and removes the registration.
func (s *Session) Shutdown() {
	if s.is(StateShuttingDown) {
		return
	}
	if err := s.Terminate(); err != nil {
		system.LogWarning(system.LTSessionState, err.Error())
	}
	if s.reg.status == Registered || s.reg.status == Pending {
		if err := s.sig.Unregister(); err != nil {
			system.LogWarning(system.LTRegistration, err.Error())
		}
		s.reg.status = Unregistered
	}
	if err := s.fire(trShutdown); err != nil {
		system.LogWarning(system.LTSessionState, err.Error())
	}
}
