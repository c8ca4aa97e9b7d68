package sip

import (
	"testing"

	"sipalert/global"
)

func TestEventTypeString(t *testing.T) {
	tests := []struct {
		et   EventType
		want string
	}{
		{EventRegistrationSuccess, "REGISTER: user is successfully registered"},
		{EventCallInvite, "INVITE: new call"},
		{EventCallAnswered, "INVITE: start of call"},
		{EventCallMessageNew, "MESSAGE: new incoming request"},
		{EventCallReleased, "CALL: call context is cleared"},
		{EventUnknown, "Unrecognized event 0"},
		{EventType(99), "Unrecognized event 99"},
	}
	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("EventType(%d).String() = %q, want %q", int(tt.et), got, tt.want)
		}
	}
}

func TestEventAccessors(t *testing.T) {
	ev := newEvent(EventCallMessageNew, 1, 2, 3)
	if ev.StatusCode() != 0 || ev.Body() != nil || ev.ContentType() != "" {
		t.Errorf("empty event = %d/%q/%q, want 0/nil/\"\"", ev.StatusCode(), ev.Body(), ev.ContentType())
	}
	if ev.RID != -1 {
		t.Errorf("RID = %d, want -1", ev.RID)
	}

	req := NewRequestMessage(global.INFO, "sip:a@b")
	bdy := NewMessageBody("application/dtmf-relay", []byte("Signal=1"))
	req.Body = &bdy
	req.Headers.SetHeader(global.Content_Type, "application/dtmf-relay")
	ev.Request = req
	if got := ev.ContentType(); got != "application/dtmf-relay" {
		t.Errorf("ContentType() = %q, want application/dtmf-relay", got)
	}
	if got := string(ev.Body()); got != "Signal=1" {
		t.Errorf("Body() = %q, want Signal=1", got)
	}

	ev.Response = NewResponseMessage(486, "")
	if got := ev.StatusCode(); got != 486 {
		t.Errorf("StatusCode() = %d, want 486", got)
	}
	if ev.Message() != ev.Response {
		t.Errorf("Message() did not return the response")
	}
}
