package sip

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"sipalert/global"
	"sipalert/system"
)

func TestMain(m *testing.M) {
	system.SetLogger(system.Noop)
	goleak.VerifyTestMain(m)
}

const waitTimeout = 2 * time.Second

// peer plays registrar, proxy and remote party on one UDP socket.
type peer struct {
	t    *testing.T
	conn *net.UDPConn
}

func newPeer(t *testing.T) *peer {
	t.Helper()
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &peer{t: t, conn: conn}
}

func (p *peer) addr() *net.UDPAddr { return p.conn.LocalAddr().(*net.UDPAddr) }

func (p *peer) contact() string { return fmt.Sprintf("<sip:bob@%s>", p.addr()) }

// recv returns the next message matching want, skipping retransmissions
// and anything else.
func (p *peer) recv(want func(*SipMessage) bool) (*SipMessage, *net.UDPAddr) {
	p.t.Helper()
	buf := make([]byte, global.BufferSize)
	deadline := time.Now().Add(waitTimeout)
	for {
		_ = p.conn.SetReadDeadline(deadline)
		n, src, err := p.conn.ReadFromUDP(buf)
		if err != nil {
			p.t.Fatalf("peer read error = %v", err)
		}
		msg, _, err := ParseMessage(buf[:n])
		if err != nil || msg == nil {
			p.t.Fatalf("peer got unparsable message %q: %v", buf[:n], err)
		}
		if want(msg) {
			return msg, src
		}
	}
}

func (p *peer) recvRequest(md global.Method) (*SipMessage, *net.UDPAddr) {
	p.t.Helper()
	return p.recv(func(m *SipMessage) bool { return m.IsRequest() && m.GetMethod() == md })
}

func (p *peer) recvResponse(sc int, md global.Method) *SipMessage {
	p.t.Helper()
	msg, _ := p.recv(func(m *SipMessage) bool {
		return m.IsResponse() && m.GetStatusCode() == sc && m.CSeqMethod == md
	})
	return msg
}

func (p *peer) send(b []byte, to *net.UDPAddr) {
	p.t.Helper()
	if _, err := p.conn.WriteToUDP(b, to); err != nil {
		p.t.Fatalf("peer write error = %v", err)
	}
}

// reply answers req with sc. toTag is added when req has none.
func (p *peer) reply(req *SipMessage, src *net.UDPAddr, sc int, toTag string, hdrs map[global.HeaderEnum]string, body string) {
	p.t.Helper()
	resp := NewResponseMessage(sc, "")
	h := resp.Headers
	h.AddHeaderValues(global.Via, req.Headers.HeaderValues(global.Via))
	h.SetHeader(global.From, req.Headers.ValueHeader(global.From))
	to := req.Headers.ValueHeader(global.To)
	if req.ToTag == "" && toTag != "" {
		to += ";tag=" + toTag
	}
	h.SetHeader(global.To, to)
	h.SetHeader(global.Call_ID, req.CallID)
	h.SetHeader(global.CSeq, req.Headers.ValueHeader(global.CSeq))
	for k, v := range hdrs {
		h.SetHeader(k, v)
	}
	if body != "" {
		bdy := NewMessageSDPBody([]byte(body))
		resp.Body = &bdy
	}
	p.send(resp.Bytes(), src)
}

func newTestUA(t *testing.T, p *peer) *UserAgent {
	t.Helper()
	ua, err := NewUserAgent(Config{
		ListenIP:  "127.0.0.1",
		AOR:       "Alert <sip:alert@example.com>",
		Registrar: p.addr().String(),
		Login:     "alert",
		Password:  "secret",
	})
	if err != nil {
		t.Fatalf("NewUserAgent() error = %v", err)
	}
	t.Cleanup(ua.Close)
	return ua
}

func nextEvent(t *testing.T, ua *UserAgent, want EventType) *Event {
	t.Helper()
	ev, ok := ua.WaitEvent(waitTimeout)
	if !ok {
		t.Fatalf("WaitEvent() timed out, want %s", want)
	}
	if ev.Type != want {
		t.Fatalf("WaitEvent() = %s, want %s", ev, want)
	}
	return ev
}

const testSDP = "v=0\r\no=bob 1 1 IN IP4 127.0.0.1\r\ns=-\r\nc=IN IP4 127.0.0.1\r\nt=0 0\r\nm=audio 4000 RTP/AVP 8\r\na=rtpmap:8 PCMA/8000\r\n"

func TestNewUserAgentErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"bad aor", Config{AOR: "alert", Registrar: "127.0.0.1"}},
		{"bad registrar", Config{AOR: "sip:alert@example.com", Registrar: "@@"}},
		{"bad listen ip", Config{AOR: "sip:alert@example.com", Registrar: "127.0.0.1", ListenIP: "nowhere"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewUserAgent(tt.cfg); err == nil {
				t.Errorf("NewUserAgent() error = nil, want error")
			}
		})
	}
}

func TestRegisterWithChallenge(t *testing.T) {
	p := newPeer(t)
	ua := newTestUA(t, p)

	rid, err := ua.Register(global.RegistrationExpires)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	req, src := p.recvRequest(global.REGISTER)
	if req.Headers.HeaderExists(global.Authorization.String()) {
		t.Errorf("first REGISTER carries credentials")
	}
	if got := req.Headers.ValueHeader(global.Expires); got != "1800" {
		t.Errorf("Expires = %q, want 1800", got)
	}
	p.reply(req, src, 401, "reg", map[global.HeaderEnum]string{global.WWW_Authenticate: testChallenge.String()}, "")

	ev := nextEvent(t, ua, EventRegistrationFailure)
	if ev.StatusCode() != 401 || ev.RID != rid {
		t.Errorf("failure event = %s rid %d, want 401 rid %d", ev, ev.RID, rid)
	}

	req, src = p.recv(func(m *SipMessage) bool {
		return m.GetMethod() == global.REGISTER && m.CSeqNum == 2
	})
	verifyCredentials(t, testChallenge, req.Headers.ValueHeader(global.Authorization), "REGISTER", "secret")
	if req.CSeqNum != 2 {
		t.Errorf("retried CSeq = %d, want 2", req.CSeqNum)
	}
	p.reply(req, src, 200, "reg", map[global.HeaderEnum]string{global.Contact: ua.contact() + ";expires=600"}, "")
	ev = nextEvent(t, ua, EventRegistrationSuccess)
	if ev.RID != rid {
		t.Errorf("success RID = %d, want %d", ev.RID, rid)
	}

	if err := ua.Unregister(); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	req, _ = p.recv(func(m *SipMessage) bool {
		return m.GetMethod() == global.REGISTER && m.CSeqNum == 3
	})
	if got := req.Headers.ValueHeader(global.Expires); got != "0" {
		t.Errorf("unregister Expires = %q, want 0", got)
	}
	if !req.Headers.HeaderExists(global.Authorization.String()) {
		t.Errorf("unregister is not pre-authorised")
	}
}

func TestRegisterRejected(t *testing.T) {
	p := newPeer(t)
	ua := newTestUA(t, p)

	if _, err := ua.Register(60); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	chal := map[global.HeaderEnum]string{global.WWW_Authenticate: testChallenge.String()}
	req, src := p.recvRequest(global.REGISTER)
	p.reply(req, src, 401, "reg", chal, "")
	nextEvent(t, ua, EventRegistrationFailure)
	req, src = p.recv(func(m *SipMessage) bool {
		return m.GetMethod() == global.REGISTER && m.CSeqNum == 2
	})
	p.reply(req, src, 401, "reg", chal, "")
	nextEvent(t, ua, EventRegistrationFailure)

	if ev, ok := ua.WaitEvent(100 * time.Millisecond); ok {
		t.Errorf("WaitEvent() = %s after exhausted retry, want none", ev)
	}
}

func TestOutboundCall(t *testing.T) {
	p := newPeer(t)
	ua := newTestUA(t, p)

	cid, err := ua.Invite("<sip:bob@example.com>", "", "Boiler alarm", []byte(testSDP))
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}
	inv, src := p.recvRequest(global.INVITE)
	for h, want := range map[global.HeaderEnum]string{
		global.Alert_Info: global.AlertInfo,
		global.Subject:    "Boiler alarm",
		global.Supported:  "100rel",
	} {
		if got := inv.Headers.ValueHeader(h); got != want {
			t.Errorf("INVITE %s = %q, want %q", h, got, want)
		}
	}
	if !inv.Body.ContainsSDP() {
		t.Errorf("INVITE carries no SDP")
	}

	p.reply(inv, src, 100, "", nil, "")
	nextEvent(t, ua, EventCallProceeding)

	p.reply(inv, src, 180, "bob1", nil, "")
	ev := nextEvent(t, ua, EventCallRinging)
	if ev.CID != cid || ev.DID <= 0 {
		t.Errorf("ringing event cid=%d did=%d, want cid=%d did>0", ev.CID, ev.DID, cid)
	}
	did := ev.DID

	p.reply(inv, src, 200, "bob1", map[global.HeaderEnum]string{global.Contact: p.contact()}, testSDP)
	ev = nextEvent(t, ua, EventCallAnswered)
	if ev.DID != did || !strings.Contains(string(ev.Body()), "PCMA/8000") {
		t.Errorf("answered event = %s body %q, want did %d with SDP", ev, ev.Body(), did)
	}
	if err := ua.Ack(did); err != nil {
		t.Fatalf("Ack() error = %v", err)
	}
	ack, _ := p.recvRequest(global.ACK)
	if ack.ToTag != "bob1" || ack.CSeqNum != inv.CSeqNum {
		t.Errorf("ACK to-tag %q cseq %d, want bob1 %d", ack.ToTag, ack.CSeqNum, inv.CSeqNum)
	}

	if err := ua.SendInfo(did, "application/dtmf-relay", []byte("Signal=7\r\nDuration=250\r\n")); err != nil {
		t.Fatalf("SendInfo() error = %v", err)
	}
	info, src := p.recvRequest(global.INFO)
	if sig, ok := info.DTMFSignal(); !ok || sig != '7' {
		t.Errorf("INFO DTMFSignal() = %q, %v, want '7', true", sig, ok)
	}
	p.reply(info, src, 200, "", nil, "")
	nextEvent(t, ua, EventCallMessageAnswered)

	if err := ua.Terminate(cid, did); err != nil {
		t.Fatalf("Terminate() error = %v", err)
	}
	bye, src := p.recvRequest(global.BYE)
	if bye.CSeqNum <= info.CSeqNum {
		t.Errorf("BYE CSeq %d not above INFO CSeq %d", bye.CSeqNum, info.CSeqNum)
	}
	p.reply(bye, src, 200, "", nil, "")
	ev = nextEvent(t, ua, EventCallReleased)
	if ev.CID != cid {
		t.Errorf("released cid = %d, want %d", ev.CID, cid)
	}
	if err := ua.Terminate(cid, did); err == nil {
		t.Errorf("Terminate() of released call error = nil, want error")
	}
}

func TestOutboundCallRejected(t *testing.T) {
	tests := []struct {
		sc   int
		want EventType
	}{
		{302, EventCallRedirected},
		{486, EventCallRequestFailure},
		{503, EventCallServerFailure},
		{603, EventCallGlobalFailure},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.sc), func(t *testing.T) {
			p := newPeer(t)
			ua := newTestUA(t, p)
			cid, err := ua.Invite("sip:bob@example.com", "", "", nil)
			if err != nil {
				t.Fatalf("Invite() error = %v", err)
			}
			inv, src := p.recvRequest(global.INVITE)
			p.reply(inv, src, tt.sc, "bob1", nil, "")
			ev := nextEvent(t, ua, tt.want)
			if ev.StatusCode() != tt.sc {
				t.Errorf("event status = %d, want %d", ev.StatusCode(), tt.sc)
			}
			nextEvent(t, ua, EventCallReleased)
			ack, _ := p.recvRequest(global.ACK)
			if ack.ViaBranch != inv.ViaBranch {
				t.Errorf("ACK branch = %q, want INVITE branch %q", ack.ViaBranch, inv.ViaBranch)
			}
			ua.mu.Lock()
			_, ok := ua.calls[cid]
			ua.mu.Unlock()
			if ok {
				t.Errorf("call %d still tracked", cid)
			}
		})
	}
}

func TestOutboundCallProxyAuth(t *testing.T) {
	p := newPeer(t)
	ua := newTestUA(t, p)

	if _, err := ua.Invite("sip:bob@example.com", "", "", []byte(testSDP)); err != nil {
		t.Fatalf("Invite() error = %v", err)
	}
	inv, src := p.recvRequest(global.INVITE)
	p.reply(inv, src, 407, "px", map[global.HeaderEnum]string{global.Proxy_Authenticate: testChallenge.String()}, "")
	ev := nextEvent(t, ua, EventCallRequestFailure)
	if ev.StatusCode() != 407 {
		t.Errorf("failure status = %d, want 407", ev.StatusCode())
	}

	retry, src := p.recv(func(m *SipMessage) bool {
		return m.GetMethod() == global.INVITE && m.CSeqNum == inv.CSeqNum+1
	})
	verifyCredentials(t, testChallenge, retry.Headers.ValueHeader(global.Proxy_Authorization), "INVITE", "secret")
	if retry.CallID != inv.CallID || retry.CSeqNum != inv.CSeqNum+1 || retry.ToTag != "" {
		t.Errorf("retry call-id %s cseq %d to-tag %q, want %s %d none", retry.CallID, retry.CSeqNum, retry.ToTag, inv.CallID, inv.CSeqNum+1)
	}
	if !retry.Body.ContainsSDP() {
		t.Errorf("retried INVITE lost its SDP")
	}
	p.reply(retry, src, 200, "bob1", map[global.HeaderEnum]string{global.Contact: p.contact()}, testSDP)
	nextEvent(t, ua, EventCallAnswered)
}

func TestOutboundCancel(t *testing.T) {
	p := newPeer(t)
	ua := newTestUA(t, p)

	cid, err := ua.Invite("sip:bob@example.com", "", "", nil)
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}
	inv, src := p.recvRequest(global.INVITE)
	// no provisional yet: CANCEL waits for one
	if err := ua.Terminate(cid, -1); err != nil {
		t.Fatalf("Terminate() error = %v", err)
	}
	p.reply(inv, src, 180, "bob1", nil, "")
	nextEvent(t, ua, EventCallRinging)

	cancel, src := p.recvRequest(global.CANCEL)
	if cancel.ViaBranch != inv.ViaBranch || cancel.CSeqNum != inv.CSeqNum || cancel.ToTag != "" {
		t.Errorf("CANCEL branch %q cseq %d to-tag %q, want %q %d none", cancel.ViaBranch, cancel.CSeqNum, cancel.ToTag, inv.ViaBranch, inv.CSeqNum)
	}
	p.reply(cancel, src, 200, "bob1", nil, "")
	p.reply(inv, src, 487, "bob1", nil, "")
	nextEvent(t, ua, EventCallRequestFailure)
	nextEvent(t, ua, EventCallReleased)
}

func TestOutboundNoAnswer(t *testing.T) {
	defer func(t1 time.Duration) { timerT1 = t1 }(timerT1)
	timerT1 = 2 * time.Millisecond

	p := newPeer(t)
	ua := newTestUA(t, p)
	cid, err := ua.Invite("sip:bob@example.com", "", "", nil)
	if err != nil {
		t.Fatalf("Invite() error = %v", err)
	}
	ev := nextEvent(t, ua, EventCallNoAnswer)
	if ev.CID != cid {
		t.Errorf("no-answer cid = %d, want %d", ev.CID, cid)
	}
	nextEvent(t, ua, EventCallReleased)
}

// inbound sends an INVITE from the peer and returns it with the
// CALL_INVITE event.
func inbound(t *testing.T, p *peer, ua *UserAgent, branch string) (*SipMessage, *Event) {
	t.Helper()
	raw := crlf(
		fmt.Sprintf("INVITE sip:alert@%s SIP/2.0", ua.local),
		fmt.Sprintf("Via: SIP/2.0/UDP %s;branch=%s", p.addr(), branch),
		"Max-Forwards: 70",
		"From: \"Bob\" <sip:bob@example.com>;tag=bob1",
		"To: <sip:alert@example.com>",
		"Call-ID: in-"+branch,
		"CSeq: 10 INVITE",
		"Contact: "+p.contact(),
		"Content-Type: application/sdp",
		fmt.Sprintf("Content-Length: %d", len(testSDP)),
		"",
		testSDP)
	p.send(raw, ua.local)
	p.recvResponse(100, global.INVITE)
	ev := nextEvent(t, ua, EventCallInvite)
	inv, _, err := ParseMessage(raw)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	return inv, ev
}

func inDialog(ua *UserAgent, p *peer, md global.Method, branch string, cseq int, toTag, ctype, body string) []byte {
	lines := []string{
		fmt.Sprintf("%s sip:alert@%s SIP/2.0", md, ua.local),
		fmt.Sprintf("Via: SIP/2.0/UDP %s;branch=%s", p.addr(), branch),
		"Max-Forwards: 70",
		"From: \"Bob\" <sip:bob@example.com>;tag=bob1",
		"To: <sip:alert@example.com>;tag=" + toTag,
		"Call-ID: in-z9hG4bKin1",
		fmt.Sprintf("CSeq: %d %s", cseq, md),
	}
	if ctype != "" {
		lines = append(lines, "Content-Type: "+ctype)
	}
	lines = append(lines, fmt.Sprintf("Content-Length: %d", len(body)), "", body)
	return crlf(lines...)
}

func TestInboundCall(t *testing.T) {
	p := newPeer(t)
	ua := newTestUA(t, p)

	inv, ev := inbound(t, p, ua, "z9hG4bKin1")
	if !ev.Request.Body.ContainsSDP() || ev.TID <= 0 || ev.DID <= 0 {
		t.Fatalf("invite event = %s, want SDP and ids", ev)
	}

	if err := ua.Respond(ev.TID, 180, nil, ""); err != nil {
		t.Fatalf("Respond(180) error = %v", err)
	}
	ringing := p.recvResponse(180, global.INVITE)
	if ringing.ToTag == "" {
		t.Fatalf("180 has no To tag")
	}
	if err := ua.Respond(ev.TID, 200, []byte(testSDP), "application/sdp"); err != nil {
		t.Fatalf("Respond(200) error = %v", err)
	}
	ok := p.recvResponse(200, global.INVITE)
	if ok.ToTag != ringing.ToTag || !ok.Body.ContainsSDP() || ok.RCURI == "" {
		t.Errorf("200 to-tag %q sdp %v contact %q, want %q, true, set", ok.ToTag, ok.Body.ContainsSDP(), ok.RCURI, ringing.ToTag)
	}
	if err := ua.Respond(ev.TID, 200, nil, ""); err == nil {
		t.Errorf("second final Respond() error = nil, want error")
	}

	tag := ok.ToTag
	p.send(inDialog(ua, p, global.ACK, "z9hG4bKack1", int(inv.CSeqNum), tag, "", ""), ua.local)
	nextEvent(t, ua, EventCallAck)

	p.send(inDialog(ua, p, global.INFO, "z9hG4bKinfo1", 11, tag, "application/dtmf-relay", "Signal=5\r\nDuration=250\r\n"), ua.local)
	ev = nextEvent(t, ua, EventCallMessageNew)
	if sig, ok := ev.Request.DTMFSignal(); !ok || sig != '5' {
		t.Errorf("DTMFSignal() = %q, %v, want '5', true", sig, ok)
	}
	if err := ua.Respond(ev.TID, 200, nil, ""); err != nil {
		t.Fatalf("Respond(INFO 200) error = %v", err)
	}
	p.recvResponse(200, global.INFO)

	p.send(inDialog(ua, p, global.BYE, "z9hG4bKbye1", 12, tag, "", ""), ua.local)
	p.recvResponse(200, global.BYE)
	nextEvent(t, ua, EventCallClosed)
	nextEvent(t, ua, EventCallReleased)
}

func TestInboundCancelled(t *testing.T) {
	p := newPeer(t)
	ua := newTestUA(t, p)

	inv, ev := inbound(t, p, ua, "z9hG4bKin1")
	cancel := crlf(
		fmt.Sprintf("CANCEL sip:alert@%s SIP/2.0", ua.local),
		fmt.Sprintf("Via: SIP/2.0/UDP %s;branch=z9hG4bKin1", p.addr()),
		"Max-Forwards: 70",
		"From: \"Bob\" <sip:bob@example.com>;tag=bob1",
		"To: <sip:alert@example.com>",
		"Call-ID: "+inv.CallID,
		"CSeq: 10 CANCEL",
		"Content-Length: 0",
		"", "")
	p.send(cancel, ua.local)
	p.recvResponse(200, global.CANCEL)
	terminated := p.recvResponse(487, global.INVITE)
	cev := nextEvent(t, ua, EventCallCancelled)
	if cev.TID != ev.TID {
		t.Errorf("cancelled tid = %d, want %d", cev.TID, ev.TID)
	}

	p.send(inDialog(ua, p, global.ACK, "z9hG4bKin1", 10, terminated.ToTag, "", ""), ua.local)
	nextEvent(t, ua, EventCallReleased)
}

func TestInboundDeclined(t *testing.T) {
	p := newPeer(t)
	ua := newTestUA(t, p)

	_, ev := inbound(t, p, ua, "z9hG4bKin1")
	if err := ua.Terminate(ev.CID, ev.DID); err != nil {
		t.Fatalf("Terminate() error = %v", err)
	}
	p.recvResponse(603, global.INVITE)
}

func TestOutOfDialogRequests(t *testing.T) {
	p := newPeer(t)
	ua := newTestUA(t, p)

	p.send(inDialog(ua, p, global.BYE, "z9hG4bKbye9", 5, "nosuchtag", "", ""), ua.local)
	p.recvResponse(481, global.BYE)

	p.send(inDialog(ua, p, global.INFO, "z9hG4bKinfo9", 6, "nosuchtag", "application/dtmf-relay", "Signal=1"), ua.local)
	p.recvResponse(481, global.INFO)

	options := crlf(
		fmt.Sprintf("OPTIONS sip:alert@%s SIP/2.0", ua.local),
		fmt.Sprintf("Via: SIP/2.0/UDP %s;branch=z9hG4bKopt", p.addr()),
		"From: <sip:bob@example.com>;tag=bob1",
		"To: <sip:alert@example.com>",
		"Call-ID: opt-1",
		"CSeq: 1 OPTIONS",
		"Content-Length: 0",
		"", "")
	p.send(options, ua.local)
	resp := p.recvResponse(200, global.OPTIONS)
	if got := resp.Headers.ValueHeader(global.Allow); got != global.AllowedMethods {
		t.Errorf("OPTIONS Allow = %q, want %q", got, global.AllowedMethods)
	}

	// retransmission is answered from the transaction
	p.send(options, ua.local)
	p.recvResponse(200, global.OPTIONS)

	p.send(crlf(
		fmt.Sprintf("SUBSCRIBE sip:alert@%s SIP/2.0", ua.local),
		fmt.Sprintf("Via: SIP/2.0/UDP %s;branch=z9hG4bKsub", p.addr()),
		"From: <sip:bob@example.com>;tag=bob2",
		"To: <sip:alert@example.com>",
		"Call-ID: sub-1",
		"CSeq: 1 SUBSCRIBE",
		"Event: dialog",
		"Content-Length: 0",
		"", ""), ua.local)
	p.recvResponse(405, global.SUBSCRIBE)

	if ev, ok := ua.WaitEvent(50 * time.Millisecond); ok {
		t.Errorf("WaitEvent() = %s, want no event", ev)
	}
}

func TestClosedUserAgent(t *testing.T) {
	p := newPeer(t)
	ua := newTestUA(t, p)
	ua.Close()
	if _, err := ua.Register(60); err == nil {
		t.Errorf("Register() after Close error = nil, want error")
	}
	if _, err := ua.Invite("sip:bob@example.com", "", "", nil); err == nil {
		t.Errorf("Invite() after Close error = nil, want error")
	}
}
