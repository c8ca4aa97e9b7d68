package sip

import (
	"cmp"
	"strconv"

	"sipalert/global"
)

// SipStartLine is the request line (Method, RUri) or the status line
// (StatusCode, ReasonPhrase) of a message.
type SipStartLine struct {
	global.Method
	RUri string

	StatusCode   int
	ReasonPhrase string
}

// Line renders the start line with its CRLF. An empty ReasonPhrase takes the
// standard phrase of StatusCode.
func (ssl *SipStartLine) Line(mt global.MessageType) string {
	if mt == global.REQUEST {
		return ssl.Method.String() + " " + ssl.RUri + " " + global.SipVersion + "\r\n"
	}
	return global.SipVersion + " " + strconv.Itoa(ssl.StatusCode) + " " + cmp.Or(ssl.ReasonPhrase, global.ReasonPhrase(ssl.StatusCode)) + "\r\n"
}
