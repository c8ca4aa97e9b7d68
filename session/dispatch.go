package session

import (
	"fmt"

	"sipalert/global"
	"sipalert/sdp"
	"sipalert/sip"
	"sipalert/system"
)

// Dispatch applies one signaling event to the session.
func (s *Session) Dispatch(ev *sip.Event) {
	system.LogInfo(system.LTSessionState, fmt.Sprintf("Received event %s", ev))
	switch ev.Type {
	case sip.EventRegistrationSuccess:
		s.onRegistrationSuccess(ev)
	case sip.EventRegistrationFailure:
		s.onRegistrationFailure(ev)
	case sip.EventCallInvite:
		s.onInvite(ev)
	case sip.EventCallReinvite:
		s.onReinvite(ev)
	case sip.EventCallAnswered:
		s.onAnswered(ev)
	case sip.EventCallProceeding, sip.EventCallRinging:
		if s.isCurrent(ev) && ev.DID > 0 {
			s.did = ev.DID
		}
	case sip.EventCallRequestFailure:
		if sc := ev.StatusCode(); sc == 401 || sc == 407 {
			// retried with credentials by the user agent
			return
		}
		s.onEnded(ev)
	case sip.EventCallNoAnswer, sip.EventCallRedirected, sip.EventCallServerFailure, sip.EventCallGlobalFailure,
		sip.EventCallCancelled, sip.EventCallClosed, sip.EventCallReleased:
		s.onEnded(ev)
	case sip.EventCallMessageNew:
		s.onMessage(ev)
	case sip.EventCallAck, sip.EventCallMessageAnswered, sip.EventCallMessageRequestFailure:
	default:
		system.LogWarning(system.LTSessionState, fmt.Sprintf("Unhandled event %s", ev))
	}
	s.publish()
}

// isCurrent reports whether ev belongs to the call in progress.
func (s *Session) isCurrent(ev *sip.Event) bool {
	if !s.inCall() {
		return false
	}
	return (s.cid >= 0 && ev.CID == s.cid) || (s.did > 0 && ev.DID == s.did)
}

func (s *Session) respond(tid, code int, body []byte, contentType string) {
	if err := s.sig.Respond(tid, code, body, contentType); err != nil {
		system.LogError(system.LTSIPStack, fmt.Sprintf("Responding %d to tid %d failed: %v", code, tid, err))
	}
}

func (s *Session) onInvite(ev *sip.Event) {
	if s.inCall() || !s.is(StateRegistered) {
		system.LogWarning(system.LTSessionState, fmt.Sprintf("Rejecting cid %d: call %d in progress", ev.CID, s.cid))
		s.respond(ev.TID, 486, nil, "")
		return
	}
	rm, err := sdp.Negotiate(ev.Body(), s.prefs())
	if err != nil {
		system.LogWarning(system.LTSDPStack, fmt.Sprintf("Rejecting cid %d: %v", ev.CID, err))
		s.respond(ev.TID, 488, nil, "")
		return
	}
	s.remote = rm
	s.tid, s.cid, s.did = ev.TID, ev.CID, ev.DID
	if err := s.fire(trIncoming); err != nil {
		system.LogError(system.LTSessionState, err.Error())
		return
	}

	code := s.handler.OnInvite(s, ev)
	switch {
	case code >= 100 && code < 200:
		s.respond(ev.TID, code, nil, "")
	case code >= 200 && code < 300:
		if err := s.Answer(); err != nil {
			system.LogError(system.LTSessionState, err.Error())
		}
	default:
		s.respond(ev.TID, code, nil, "")
		s.end(trHangup)
	}
}

// onReinvite replaces the remote media and answers with the local SDP.
func (s *Session) onReinvite(ev *sip.Event) {
	if !s.isCurrent(ev) {
		s.respond(ev.TID, 481, nil, "")
		return
	}
	rm, err := sdp.Negotiate(ev.Body(), s.prefs())
	if err != nil {
		s.respond(ev.TID, 488, nil, "")
		return
	}
	body, err := s.local().Answer(rm)
	if err != nil {
		s.respond(ev.TID, 400, nil, "")
		return
	}
	s.remote = rm
	s.respond(ev.TID, 200, body, sdp.ContentType)
	if s.active {
		if err := s.StartMedia(); err != nil {
			system.LogError(system.LTRTPStack, err.Error())
		}
	}
}

func (s *Session) onAnswered(ev *sip.Event) {
	if !s.is(StateInviting) || ev.CID != s.cid {
		system.LogDebug(system.LTSessionState, fmt.Sprintf("Ignoring answer for cid %d", ev.CID))
		return
	}
	s.did = ev.DID
	if err := s.sig.Ack(ev.DID); err != nil {
		system.LogError(system.LTSIPStack, err.Error())
	}
	rm, err := sdp.Negotiate(ev.Body(), s.prefs())
	if err != nil {
		system.LogError(system.LTSDPStack, fmt.Sprintf("Unusable answer: %v", err))
		if err := s.Terminate(); err != nil {
			system.LogError(system.LTSessionState, err.Error())
		}
		return
	}
	s.remote = rm
	if err := s.fire(trAnswered); err != nil {
		system.LogError(system.LTSessionState, err.Error())
		return
	}
	s.handler.OnAnswered(s)
}

func (s *Session) onEnded(ev *sip.Event) {
	if !s.isCurrent(ev) {
		return
	}
	system.LogInfo(system.LTSessionState, fmt.Sprintf("Call %d ended: %s", s.cid, ev.Type))
	s.end(trEnded)
}

// onMessage handles INFO within the call. DTMF relay bodies reach the
// handler; every request is answered 200.
func (s *Session) onMessage(ev *sip.Event) {
	req := ev.Request
	if req != nil && req.GetMethod() == global.INFO && s.isCurrent(ev) {
		if digit, ok := req.DTMFSignal(); ok {
			system.LogInfo(system.LTDTMF, fmt.Sprintf("Received DTMF [%c]", digit))
			s.notify(Notification{Kind: KindDTMF, Detail: string(digit)})
			s.handler.OnDTMF(s, digit)
		}
	}
	s.respond(ev.TID, 200, nil, "")
}
