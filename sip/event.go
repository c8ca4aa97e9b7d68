package sip

import (
	"fmt"
)

type EventType int

const (
	EventUnknown EventType = iota

	EventRegistrationSuccess
	EventRegistrationFailure

	EventCallInvite
	EventCallReinvite
	EventCallNoAnswer
	EventCallProceeding
	EventCallRinging
	EventCallAnswered
	EventCallRedirected
	EventCallRequestFailure
	EventCallServerFailure
	EventCallGlobalFailure
	EventCallAck
	EventCallCancelled

	EventCallMessageNew
	EventCallMessageAnswered
	EventCallMessageRequestFailure

	EventCallClosed
	EventCallReleased
)

var eventNames = [...]string{
	EventUnknown:                   "",
	EventRegistrationSuccess:       "REGISTER: user is successfully registered",
	EventRegistrationFailure:       "REGISTER: user is not registered",
	EventCallInvite:                "INVITE: new call",
	EventCallReinvite:              "INVITE: new INVITE within call",
	EventCallNoAnswer:              "INVITE: no answer within the timeout",
	EventCallProceeding:            "INVITE: processing by a remote app",
	EventCallRinging:               "INVITE: ringback",
	EventCallAnswered:              "INVITE: start of call",
	EventCallRedirected:            "INVITE: redirection",
	EventCallRequestFailure:        "INVITE: request failure",
	EventCallServerFailure:         "INVITE: server failure",
	EventCallGlobalFailure:         "INVITE: global failure",
	EventCallAck:                   "INVITE: ACK received for 200ok to INVITE",
	EventCallCancelled:             "CALL: that call has been cancelled",
	EventCallMessageNew:            "MESSAGE: new incoming request",
	EventCallMessageAnswered:       "MESSAGE: 200ok",
	EventCallMessageRequestFailure: "MESSAGE: request failure",
	EventCallClosed:                "BYE: received for this call",
	EventCallReleased:              "CALL: call context is cleared",
}

func (et EventType) String() string {
	if et > EventUnknown && int(et) < len(eventNames) {
		return eventNames[et]
	}
	return fmt.Sprintf("Unrecognized event %d", int(et))
}

// Event is one signaling occurrence. Ids are -1 when not applicable.
type Event struct {
	Type     EventType
	RID      int
	CID      int
	DID      int
	TID      int
	Request  *SipMessage
	Response *SipMessage
}

func newEvent(et EventType, cid, did, tid int) *Event {
	return &Event{Type: et, RID: -1, CID: cid, DID: did, TID: tid}
}

func (ev *Event) String() string {
	if sc := ev.StatusCode(); sc != 0 {
		return fmt.Sprintf("%s (%d) cid=%d did=%d tid=%d", ev.Type, sc, ev.CID, ev.DID, ev.TID)
	}
	return fmt.Sprintf("%s cid=%d did=%d tid=%d", ev.Type, ev.CID, ev.DID, ev.TID)
}

// StatusCode returns the status of the carried response, 0 without one.
func (ev *Event) StatusCode() int {
	if ev.Response == nil {
		return 0
	}
	return ev.Response.GetStatusCode()
}

// Expires returns the expiry granted by a REGISTER response, -1 when the
// event carries none.
func (ev *Event) Expires() int {
	if ev.Response == nil {
		return -1
	}
	return ev.Response.Expires()
}

// Message returns the response when present, the request otherwise.
func (ev *Event) Message() *SipMessage {
	if ev.Response != nil {
		return ev.Response
	}
	return ev.Request
}

// Body returns the body of Message.
func (ev *Event) Body() []byte {
	msg := ev.Message()
	if msg == nil || msg.Body.WithNoBody() {
		return nil
	}
	return msg.Body.Bytes
}

func (ev *Event) ContentType() string {
	msg := ev.Message()
	if msg == nil {
		return ""
	}
	return msg.ContentType()
}
