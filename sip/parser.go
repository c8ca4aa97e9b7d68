package sip

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"sipalert/global"
	"sipalert/system"
)

// ParseMessage parses one message from the start of payload and returns the
// bytes that follow it. A payload without a header terminator yields nil.
func ParseMessage(payload []byte) (sipmsg *SipMessage, rest []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			system.LogCallStack(r)
			sipmsg, rest, err = nil, nil, global.NewError(global.ErrBadMessage, fmt.Sprintf("%v", r))
		}
	}()

	dblCrLfIdx := bytes.Index(payload, []byte("\r\n\r\n"))
	if dblCrLfIdx == -1 {
		//empty sip message
		return nil, nil, nil
	}

	msglines := strings.Split(string(payload[:dblCrLfIdx]), "\r\n")

	startLine := new(SipStartLine)
	sipmsg = &SipMessage{StartLine: startLine}
	msgmap := NewHeaders(false)

	var matches []string
	//start line parsing
	switch {
	case global.RMatch(msglines[0], global.RequestStartLinePattern, &matches):
		sipmsg.MsgType = global.REQUEST
		startLine.Method = global.MethodFromName(system.ASCIIToUpper(matches[1]))
		if startLine.Method == global.UNKNOWN {
			return nil, nil, global.NewError(global.ErrBadMessage, "invalid method [%s] for Request message", matches[1])
		}
		startLine.RUri = matches[2]
	case global.RMatch(msglines[0], global.ResponseStartLinePattern, &matches):
		sipmsg.MsgType = global.RESPONSE
		code := system.Atoi[int](matches[2])
		if code < 100 || code > 699 {
			return nil, nil, global.NewError(global.ErrBadMessage, "invalid code [%d] for Response message", code)
		}
		startLine.StatusCode = code
		startLine.ReasonPhrase = matches[3]
	default:
		return nil, nil, global.NewError(global.ErrBadMessage, "invalid start line [%s]", msglines[0])
	}

	//headers parsing
	for _, ln := range msglines[1:] {
		if ln == "" {
			break
		}
		matches := global.DicFieldRegEx[global.FullHeader].FindStringSubmatch(ln)
		if matches == nil {
			system.LogWarning(system.LTBadSIPMessage, fmt.Sprintf("Skipping malformed header line [%s]", ln))
			continue
		}
		headerLC := global.ExpandCompactHeader(matches[1])
		value := matches[2]
		switch headerLC {
		case global.From.LowerCaseString():
			if tag := global.DicFieldRegEx[global.Tag].FindStringSubmatch(value); tag != nil {
				sipmsg.FromTag = tag[1]
			}
			sipmsg.FromHeader = value
		case global.To.LowerCaseString():
			if tag := global.DicFieldRegEx[global.Tag].FindStringSubmatch(value); tag != nil {
				sipmsg.ToTag = tag[1]
				if !sipmsg.IsOutOfDialog() && startLine.Method == global.INVITE && sipmsg.IsRequest() {
					startLine.Method = global.ReINVITE
				}
			}
			sipmsg.ToHeader = value
		case global.Call_ID.LowerCaseString():
			sipmsg.CallID = value
		case global.Max_Forwards.LowerCaseString():
			mf, err := strconv.Atoi(value)
			if err != nil || mf < 0 || mf > 255 {
				system.LogWarning(system.LTBadSIPMessage, fmt.Sprintf("Invalid Max-Forwards header [%s]", value))
			} else {
				sipmsg.MaxFwds = mf
			}
		case global.Contact.LowerCaseString():
			if rc := global.DicFieldRegEx[global.URIFull].FindStringSubmatch(value); rc != nil && sipmsg.RCURI == "" {
				sipmsg.RCURI = rc[1]
			}
		case global.Record_Route.LowerCaseString():
			for rr := range strings.SplitSeq(value, ",") {
				if rr = strings.TrimSpace(rr); rr != "" {
					sipmsg.RecordRoutes = append(sipmsg.RecordRoutes, rr)
				}
			}
		case global.CSeq.LowerCaseString():
			cseq := global.DicFieldRegEx[global.CSeqHeader].FindStringSubmatch(value)
			if cseq == nil {
				return nil, nil, global.NewError(global.ErrBadMessage, "invalid CSeq header [%s]", value)
			}
			sipmsg.CSeqNum = system.Atoi[uint32](cseq[1])
			sipmsg.CSeqMethod = global.MethodFromName(system.ASCIIToUpper(cseq[2]))
			if sipmsg.IsRequest() {
				r1 := startLine.Method.String()
				r2 := system.ASCIIToUpper(cseq[2])
				if r1 != r2 {
					return nil, nil, global.NewError(global.ErrBadMessage, "request method %s vs CSeq method %s", r1, r2)
				}
			}
		case global.Via.LowerCaseString():
			if via := global.DicFieldRegEx[global.ViaBranchPattern].FindStringSubmatch(value); via != nil && sipmsg.ViaBranch == "" {
				sipmsg.ViaBranch = via[1]
				if !strings.HasPrefix(via[1], global.MagicCookie) {
					system.LogWarning(system.LTSIPStack, fmt.Sprintf("Received message [%v] having non-RFC3261 Via branch [%v]", startLine.Method.String(), via[1]))
				}
			}
		}
		msgmap.Add(headerLC, value)
	}
	sipmsg.Headers = msgmap

	if hdr, missing := msgmap.MissingMandatory(); missing {
		return nil, nil, global.NewError(global.ErrBadMessage, "missing mandatory header [%s]", hdr)
	}
	if msgmap.HeaderCount(global.CSeq.String()) > 1 {
		return nil, nil, global.NewError(global.ErrBadMessage, "duplicate CSeq header")
	}
	if msgmap.HeaderCount(global.Content_Length.String()) > 1 {
		return nil, nil, global.NewError(global.ErrBadMessage, "duplicate Content-Length header")
	}

	bodyStartIdx := dblCrLfIdx + 4 //CrLf x 2

	//automatic deducing of content-length
	cntntLength := len(payload) - bodyStartIdx
	if v := msgmap.ValueHeader(global.Content_Length); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return nil, nil, global.NewError(global.ErrBadMessage, "invalid Content-Length header [%s]", v)
		}
		cntntLength = n
	}
	sipmsg.ContentLength = cntntLength

	//body parsing
	if cntntLength == 0 {
		sipmsg.Body = new(MessageBody)
		return sipmsg, payload[bodyStartIdx:], nil
	}
	if len(payload) < bodyStartIdx+cntntLength {
		return nil, nil, global.NewError(global.ErrBadMessage, "bad content-length or fragmented pdu")
	}
	cntntType := msgmap.ValueHeader(global.Content_Type)
	if cntntType == "" {
		return nil, nil, global.NewError(global.ErrBadMessage, "Content-Type header is missing while Content-Length is non-zero")
	}
	bdy := NewMessageBody(cntntType, payload[bodyStartIdx:bodyStartIdx+cntntLength])
	if bdy.Type == global.Unknown {
		system.LogDebug(system.LTSIPStack, fmt.Sprintf("Unhandled Content-Type [%s]", cntntType))
	}
	sipmsg.Body = &bdy

	return sipmsg, payload[bodyStartIdx+cntntLength:], nil
}
