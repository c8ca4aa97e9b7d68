package sip

import (
	"bytes"
	"fmt"
	"strconv"

	"sipalert/global"
	"sipalert/system"
)

type SipMessage struct {
	MsgType   global.MessageType
	StartLine *SipStartLine
	Headers   *SipHeaders
	Body      *MessageBody

	//all fields below are only set in incoming messages
	FromHeader string
	ToHeader   string

	CallID    string
	FromTag   string
	ToTag     string
	ViaBranch string

	RCURI        string
	RecordRoutes []string

	MaxFwds       int
	CSeqNum       uint32
	CSeqMethod    global.Method
	ContentLength int
}

func NewRequestMessage(md global.Method, ruri string) *SipMessage {
	return &SipMessage{
		MsgType:   global.REQUEST,
		StartLine: &SipStartLine{Method: md, RUri: ruri},
		Headers:   NewHeaders(true),
		Body:      new(MessageBody),
	}
}

func NewResponseMessage(sc int, rp string) *SipMessage {
	sipmsg := &SipMessage{
		MsgType:   global.RESPONSE,
		StartLine: new(SipStartLine),
		Headers:   NewHeaders(false),
		Body:      new(MessageBody),
	}
	if 100 <= sc && sc <= 699 {
		sipmsg.StartLine.StatusCode = sc
		sipmsg.StartLine.ReasonPhrase = rp
		if rp == "" {
			sipmsg.StartLine.ReasonPhrase = global.ReasonPhrase(sc)
		}
	}
	return sipmsg
}

// ==========================================================================

func (sipmsg *SipMessage) IsOutOfDialog() bool {
	return sipmsg.ToTag == ""
}

func (sipmsg *SipMessage) IsResponse() bool {
	return sipmsg.MsgType == global.RESPONSE
}

func (sipmsg *SipMessage) IsRequest() bool {
	return sipmsg.MsgType == global.REQUEST
}

func (sipmsg *SipMessage) GetMethod() global.Method {
	return sipmsg.StartLine.Method
}

func (sipmsg *SipMessage) GetStatusCode() int {
	return sipmsg.StartLine.StatusCode
}

// ContentType returns the Content-Type header value, "" without a body.
func (sipmsg *SipMessage) ContentType() string {
	if sipmsg.Body.WithNoBody() {
		return ""
	}
	return sipmsg.Headers.ValueHeader(global.Content_Type)
}

// Expires returns the expiry granted in a REGISTER response: the Contact
// expires parameter first, then the Expires header, else -1.
func (sipmsg *SipMessage) Expires() int {
	var mtch []string
	for _, c := range sipmsg.Headers.HeaderValues(global.Contact) {
		if global.RMatch(c, global.ExpiresParameter, &mtch) {
			return system.Atoi[int](mtch[1])
		}
	}
	if v := sipmsg.Headers.ValueHeader(global.Expires); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return -1
}

// DTMFSignal returns the character that follows "Signal=" in an
// application/dtmf-relay body.
func (sipmsg *SipMessage) DTMFSignal() (byte, bool) {
	if !sipmsg.Body.IsDTMFRelay() {
		return 0, false
	}
	return ParseDTMFSignal(sipmsg.Body.Bytes)
}

func ParseDTMFSignal(body []byte) (byte, bool) {
	mtch := global.DicFieldRegEx[global.SignalDTMF].FindSubmatch(body)
	if mtch == nil || len(mtch[1]) == 0 {
		return 0, false
	}
	return mtch[1][0], true
}

// ==========================================================================

// Bytes serializes the message. Known headers are written in the order of
// the method (or response) template, the rest in name order.
func (sipmsg *SipMessage) Bytes() []byte {
	var bb bytes.Buffer
	var headers []string

	hdrs := sipmsg.Headers
	if sipmsg.Body.WithNoBody() {
		hdrs.Delete(global.Content_Type.String())
	} else if !hdrs.HeaderExists(global.Content_Type.String()) {
		hdrs.SetHeader(global.Content_Type, sipmsg.Body.ContentType)
	}
	hdrs.Delete(global.Content_Length.String())

	sl := sipmsg.StartLine
	bb.WriteString(sl.Line(sipmsg.MsgType))
	if sipmsg.IsRequest() {
		headers = global.DicRequestHeaders[sl.Method]
		if headers == nil {
			headers = global.RequestHeaderCHs
		}
	} else {
		headers = global.ResponseHeaders
	}

	written := make(map[string]bool, len(headers))
	writeHeader := func(h string) {
		values := hdrs.Values(h)
		for _, hv := range values {
			if hv != "" {
				bb.WriteString(fmt.Sprintf("%v: %v\r\n", h, hv))
			}
		}
		written[system.ASCIIToLower(h)] = true
	}
	for _, h := range headers {
		writeHeader(h)
	}
	for _, h := range hdrs.Names() {
		if !written[h] {
			writeHeader(global.HeaderCase(h))
		}
	}

	bb.WriteString(fmt.Sprintf("%v: %d\r\n", global.Content_Length, sipmsg.Body.ContentLength()))

	// write separator
	bb.WriteString("\r\n")

	if !sipmsg.Body.WithNoBody() {
		bb.Write(sipmsg.Body.Bytes)
	}
	return bb.Bytes()
}
