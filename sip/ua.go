package sip

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"braces.dev/errtrace"

	"sipalert/global"
	"sipalert/guid"
	"sipalert/system"
)

// EventQueueSize bounds the events waiting for WaitEvent.
var EventQueueSize = 64

type Config struct {
	ListenIP  string
	Port      int
	AOR       string // address of record, e.g. "Alert <sip:alert@example.com>"
	Registrar string // host[:port] or SIP URI
	Login     string
	Password  string
}

// UserAgent is a single-socket UDP SIP user agent. Out-of-dialog requests
// go to the registrar, which also acts as outbound proxy.
type UserAgent struct {
	mu sync.Mutex

	conn      *net.UDPConn
	local     *net.UDPAddr
	registrar *net.UDPAddr
	domain    string
	identity  string
	user      string

	auth authenticator
	reg  registration

	nextID int
	calls  map[int]*Dialog
	server map[int]*Transaction
	client map[string]*Transaction // by branch and method

	events chan *Event
	wg     sync.WaitGroup
	closed bool
}

type registration struct {
	rid     int
	callID  string
	fromTag string
	cseq    uint32
	expires int
}

func NewUserAgent(cfg Config) (*UserAgent, error) {
	var mtch []string
	aor := cfg.AOR
	if global.RMatch(aor, global.URIFull, &mtch) {
		aor = mtch[1]
	}
	if !global.RMatch(aor, global.URIUserHost, &mtch) {
		return nil, global.NewError(global.ErrInvalidArgs, "bad address of record [%s]", cfg.AOR)
	}
	ua := &UserAgent{
		identity: headerForm(cfg.AOR),
		user:     mtch[1],
		auth:     authenticator{login: cfg.Login, password: cfg.Password},
		calls:    make(map[int]*Dialog),
		server:   make(map[int]*Transaction),
		client:   make(map[string]*Transaction),
		events:   make(chan *Event, EventQueueSize),
	}

	registrar := cfg.Registrar
	if !global.RMatch(registrar, global.URIUserHost, &mtch) {
		registrar = "sip:" + registrar
		if !global.RMatch(registrar, global.URIUserHost, &mtch) {
			return nil, global.NewError(global.ErrInvalidArgs, "bad registrar [%s]", cfg.Registrar)
		}
	}
	ua.domain = mtch[2]
	if mtch[3] != "" {
		ua.domain = net.JoinHostPort(mtch[2], mtch[3])
	}
	addr, err := resolveURI(registrar)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	ua.registrar = addr

	ip := net.IPv4zero
	if cfg.ListenIP != "" {
		if ip = net.ParseIP(cfg.ListenIP); ip == nil {
			return nil, global.NewError(global.ErrInvalidArgs, "bad listen address [%s]", cfg.ListenIP)
		}
	}
	conn, err := system.ListenUDP(ip, cfg.Port)
	if err != nil {
		return nil, global.NewError(global.ErrTransport, err)
	}
	ua.conn = conn
	ua.local = system.LocalUDPAddr(conn)
	if ua.local.IP.IsUnspecified() {
		ua.local = &net.UDPAddr{IP: system.OutboundIPv4(addr), Port: ua.local.Port}
	}
	system.LogInfo(system.LTSIPStack, fmt.Sprintf("SIP user agent [%s] listening on %s, registrar %s", ua.identity, ua.local, ua.registrar))

	ua.startListener()
	return ua, nil
}

// ==================================================================

func headerForm(uri string) string {
	if strings.Contains(uri, "<") {
		return uri
	}
	return "<" + uri + ">"
}

func resolveURI(uri string) (*net.UDPAddr, error) {
	var mtch []string
	if global.RMatch(uri, global.URIFull, &mtch) {
		uri = mtch[1]
	}
	if !global.RMatch(uri, global.URIUserHost, &mtch) {
		return nil, global.NewError(global.ErrInvalidArgs, "bad URI [%s]", uri)
	}
	port := global.SipPort
	if mtch[3] != "" {
		port = system.Atoi[int](mtch[3])
	}
	addr, err := system.ResolveUDP(mtch[2], port)
	if err != nil {
		return nil, global.NewError(global.ErrTransport, err)
	}
	return addr, nil
}

func (ua *UserAgent) newID() int {
	ua.nextID++
	return ua.nextID
}

func (ua *UserAgent) viaWithoutBranch() string {
	return "SIP/2.0/UDP " + ua.local.String()
}

func (ua *UserAgent) contact() string {
	if ua.user == "" {
		return fmt.Sprintf("<sip:%s;transport=udp>", ua.local)
	}
	return fmt.Sprintf("<sip:%s@%s;transport=udp>", ua.user, ua.local)
}

func (ua *UserAgent) write(b []byte, dest *net.UDPAddr) {
	if _, err := ua.conn.WriteToUDP(b, dest); err != nil {
		system.LogError(system.LTSIPStack, "Failed to send message: "+err.Error())
	}
}

func (ua *UserAgent) emit(ev *Event) {
	select {
	case ua.events <- ev:
	default:
		system.LogWarning(system.LTSIPStack, fmt.Sprintf("Event queue full - dropping %s", ev))
	}
}

func (ua *UserAgent) dialogByDID(did int) *Dialog {
	for _, d := range ua.calls {
		if d.DID == did && did > 0 {
			return d
		}
	}
	return nil
}

func (ua *UserAgent) dialogFor(msg *SipMessage) *Dialog {
	for _, d := range ua.calls {
		if d.matches(msg) {
			return d
		}
	}
	return nil
}

// removeCall forgets d. Pending transaction timeouts check membership in
// ua.calls before acting.
func (ua *UserAgent) removeCall(d *Dialog) {
	if d.invite != nil {
		d.invite.stopRetransmission()
	}
	delete(ua.calls, d.CID)
}

func (ua *UserAgent) releaseCall(d *Dialog, resp *SipMessage) {
	ua.removeCall(d)
	ev := newEvent(EventCallReleased, d.CID, d.DID, -1)
	ev.Response = resp
	ua.emit(ev)
}

// ==================================================================
// Outbound actions

func (ua *UserAgent) LocalIP() string {
	return ua.local.IP.String()
}

// Register sends a REGISTER binding for expires seconds and returns the
// registration id. Later calls refresh the same registration.
func (ua *UserAgent) Register(expires int) (int, error) {
	ua.mu.Lock()
	defer ua.mu.Unlock()
	if ua.closed {
		return -1, global.NewError(global.ErrShutdown)
	}
	if ua.reg.rid == 0 {
		ua.reg.rid = ua.newID()
		ua.reg.callID = guid.NewCallID()
		ua.reg.fromTag = guid.NewTag()
	}
	ua.reg.expires = expires
	return ua.reg.rid, errtrace.Wrap(ua.sendRegister(false))
}

// Unregister removes the binding with Expires 0.
func (ua *UserAgent) Unregister() error {
	ua.mu.Lock()
	defer ua.mu.Unlock()
	if ua.closed {
		return global.NewError(global.ErrShutdown)
	}
	if ua.reg.rid == 0 {
		return nil
	}
	ua.reg.expires = 0
	return errtrace.Wrap(ua.sendRegister(false))
}

func (ua *UserAgent) sendRegister(authTried bool) error {
	ua.reg.cseq++
	tx := newClientTransaction(global.REGISTER, ua.reg.cseq)
	tx.CallID = ua.reg.callID
	tx.authTried = authTried

	sipmsg := NewRequestMessage(global.REGISTER, "sip:"+ua.domain)
	hdrs := sipmsg.Headers
	hdrs.AddHeader(global.Via, fmt.Sprintf("%s;branch=%s;rport", ua.viaWithoutBranch(), tx.ViaBranch))
	hdrs.SetHeader(global.From, fmt.Sprintf("%s;tag=%s", ua.identity, ua.reg.fromTag))
	hdrs.SetHeader(global.To, ua.identity)
	hdrs.SetHeader(global.Call_ID, ua.reg.callID)
	hdrs.SetHeader(global.CSeq, fmt.Sprintf("%d %s", tx.CSeq, global.REGISTER))
	hdrs.SetHeader(global.Contact, ua.contact())
	hdrs.SetHeader(global.Expires, fmt.Sprint(ua.reg.expires))
	hdrs.SetHeader(global.Max_Forwards, fmt.Sprint(global.MaxForwards))
	hdrs.SetHeader(global.Supported, "100rel, path")
	if err := ua.auth.Authorize(sipmsg); err != nil {
		return errtrace.Wrap(err)
	}
	tx.Request = sipmsg
	ua.sendClient(tx, ua.registrar)
	return nil
}

// Invite starts a call to the destination URI and returns its call id.
func (ua *UserAgent) Invite(to, from, subject string, sdp []byte) (int, error) {
	ua.mu.Lock()
	defer ua.mu.Unlock()
	if ua.closed {
		return -1, global.NewError(global.ErrShutdown)
	}
	var mtch []string
	if !global.RMatch(to, global.URIFull, &mtch) {
		return -1, global.NewError(global.ErrInvalidArgs, "bad destination [%s]", to)
	}
	d := &Dialog{
		CID:          ua.newID(),
		DID:          -1,
		CallID:       guid.NewCallID(),
		LocalTag:     guid.NewTag(),
		Outbound:     true,
		RemoteTarget: mtch[1],
		RemoteHeader: headerForm(to),
	}
	fromHdr := ua.identity
	if from != "" {
		fromHdr = headerForm(from)
	}
	d.LocalHeader = fmt.Sprintf("%s;tag=%s", fromHdr, d.LocalTag)

	sipmsg, tx := d.newRequest(ua, global.INVITE)
	sipmsg.Headers.SetHeader(global.Supported, "100rel")
	sipmsg.Headers.SetHeader(global.Alert_Info, global.AlertInfo)
	if subject != "" {
		sipmsg.Headers.SetHeader(global.Subject, subject)
	}
	if len(sdp) > 0 {
		bdy := NewMessageSDPBody(sdp)
		sipmsg.Body = &bdy
	}
	if err := ua.auth.Authorize(sipmsg); err != nil {
		return -1, errtrace.Wrap(err)
	}
	d.invite = tx
	ua.calls[d.CID] = d
	ua.sendClient(tx, ua.registrar)
	system.LogInfo(system.LTSIPStack, fmt.Sprintf("INVITE sent to [%s] - %s", to, d))
	return d.CID, nil
}

// Respond answers the server transaction tid.
func (ua *UserAgent) Respond(tid, code int, body []byte, contentType string) error {
	ua.mu.Lock()
	defer ua.mu.Unlock()
	if ua.closed {
		return global.NewError(global.ErrShutdown)
	}
	tx, ok := ua.server[tid]
	if !ok {
		return global.NewError(global.ErrUnknownCall, "no transaction %d", tid)
	}
	if tx.IsFinalized {
		return global.NewError(global.ErrInvalidArgs, "transaction %d already answered", tid)
	}
	if code < 100 || code > 699 {
		return global.NewError(global.ErrInvalidArgs, "bad status code %d", code)
	}
	resp := ua.buildResponse(tx, code)
	if len(body) > 0 {
		bdy := NewMessageBody(contentType, body)
		resp.Body = &bdy
		resp.Headers.SetHeader(global.Content_Type, contentType)
	}
	ua.sendResponse(tx, resp)
	return nil
}

// Ack confirms the 2xx answer of dialog did.
func (ua *UserAgent) Ack(did int) error {
	ua.mu.Lock()
	defer ua.mu.Unlock()
	d := ua.dialogByDID(did)
	if d == nil {
		return global.NewError(global.ErrUnknownCall, "no dialog %d", did)
	}
	return errtrace.Wrap(ua.sendAck(d))
}

func (ua *UserAgent) sendAck(d *Dialog) error {
	if !d.Outbound || !d.Confirmed {
		return global.NewError(global.ErrInvalidArgs, "dialog %d has no answer to acknowledge", d.DID)
	}
	sipmsg, _ := d.newRequest(ua, global.ACK)
	dest, err := resolveURI(d.nextHop())
	if err != nil {
		return errtrace.Wrap(err)
	}
	d.ack = sipmsg.Bytes()
	d.ackDest = dest
	ua.write(d.ack, dest)
	return nil
}

// SendInfo sends an INFO request within dialog did.
func (ua *UserAgent) SendInfo(did int, contentType string, body []byte) error {
	ua.mu.Lock()
	defer ua.mu.Unlock()
	if ua.closed {
		return global.NewError(global.ErrShutdown)
	}
	d := ua.dialogByDID(did)
	if d == nil || !d.Confirmed {
		return global.NewError(global.ErrUnknownCall, "no established dialog %d", did)
	}
	sipmsg, tx := d.newRequest(ua, global.INFO)
	bdy := NewMessageBody(contentType, body)
	sipmsg.Body = &bdy
	sipmsg.Headers.SetHeader(global.Content_Type, contentType)
	return errtrace.Wrap(ua.sendInDialog(d, tx))
}

func (ua *UserAgent) sendInDialog(d *Dialog, tx *Transaction) error {
	dest, err := resolveURI(d.nextHop())
	if err != nil {
		return errtrace.Wrap(err)
	}
	ua.sendClient(tx, dest)
	return nil
}

// Terminate ends call cid (or dialog did when cid is not positive): CANCEL
// or a decline before the answer, BYE after it.
func (ua *UserAgent) Terminate(cid, did int) error {
	ua.mu.Lock()
	defer ua.mu.Unlock()
	if ua.closed {
		return global.NewError(global.ErrShutdown)
	}
	d := ua.calls[cid]
	if d == nil {
		d = ua.dialogByDID(did)
	}
	if d == nil {
		return global.NewError(global.ErrUnknownCall, "no call cid=%d did=%d", cid, did)
	}
	return errtrace.Wrap(ua.terminate(d))
}

func (ua *UserAgent) terminate(d *Dialog) error {
	switch {
	case d.Confirmed:
		return errtrace.Wrap(ua.sendBye(d))
	case d.Outbound:
		if d.invite.any1xx() {
			ua.sendCancel(d)
		} else {
			d.cancelPending = true
		}
	case !d.invite.IsFinalized:
		ua.sendResponse(d.invite, ua.buildResponse(d.invite, 603))
	}
	return nil
}

func (ua *UserAgent) sendBye(d *Dialog) error {
	_, tx := d.newRequest(ua, global.BYE)
	d.Confirmed = false
	return errtrace.Wrap(ua.sendInDialog(d, tx))
}

func (ua *UserAgent) sendCancel(d *Dialog) {
	d.cancelPending = false
	_, tx := d.newRequest(ua, global.CANCEL)
	ua.sendClient(tx, d.invite.dest)
}

// WaitEvent returns the next event, waiting at most timeout.
func (ua *UserAgent) WaitEvent(timeout time.Duration) (*Event, bool) {
	if timeout <= 0 {
		select {
		case ev := <-ua.events:
			return ev, true
		default:
			return nil, false
		}
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case ev := <-ua.events:
		return ev, true
	case <-t.C:
		return nil, false
	}
}

// Close stops every timer, closes the socket and waits for the reader.
func (ua *UserAgent) Close() {
	ua.mu.Lock()
	if ua.closed {
		ua.mu.Unlock()
		return
	}
	ua.closed = true
	for _, tx := range ua.client {
		tx.stopTimers()
	}
	for _, tx := range ua.server {
		tx.stopTimers()
	}
	ua.mu.Unlock()
	_ = ua.conn.Close()
	ua.wg.Wait()
}

// ==================================================================
// Transaction plumbing. Callers hold ua.mu.

func (ua *UserAgent) sendClient(tx *Transaction, dest *net.UDPAddr) {
	tx.dest = dest
	tx.sent = tx.Request.Bytes()
	ua.client[tx.key()] = tx
	ua.write(tx.sent, dest)
	tx.startRetransmission(ua, !tx.isInvite())
	tx.startTimeout(ua, timerB(), ua.clientTimeout)
}

func (ua *UserAgent) addServer(req *SipMessage, src *net.UDPAddr) *Transaction {
	tx := newServerTransaction(ua.newID(), req)
	tx.dest = src
	ua.server[tx.TID] = tx
	return tx
}

func (ua *UserAgent) buildResponse(tx *Transaction, sc int) *SipMessage {
	req := tx.Request
	resp := NewResponseMessage(sc, "")
	hdrs := resp.Headers
	hdrs.AddHeaderValues(global.Via, req.Headers.HeaderValues(global.Via))
	hdrs.SetHeader(global.From, req.Headers.ValueHeader(global.From))
	hdrs.SetHeader(global.To, req.Headers.ValueHeader(global.To))
	hdrs.SetHeader(global.Call_ID, req.CallID)
	hdrs.SetHeader(global.CSeq, req.Headers.ValueHeader(global.CSeq))
	hdrs.SetHeader(global.Server, global.UserAgent)

	if d := tx.dialog; d != nil && sc > 100 && req.ToTag == "" {
		hdrs.SetHeader(global.To, fmt.Sprintf("%s;tag=%s", req.ToHeader, d.LocalTag))
	}
	if tx.isInvite() && sc > 100 && sc < 300 {
		hdrs.SetHeader(global.Contact, ua.contact())
		hdrs.AddHeaderValues(global.Record_Route, req.Headers.HeaderValues(global.Record_Route))
	}
	switch sc {
	case 200:
		if tx.Method == global.OPTIONS {
			hdrs.SetHeader(global.Allow, global.AllowedMethods)
			hdrs.SetHeader(global.Accept, global.SDP.ContentType())
		}
	case 405, 501:
		hdrs.SetHeader(global.Allow, global.AllowedMethods)
	}
	return resp
}

func (ua *UserAgent) sendResponse(tx *Transaction, resp *SipMessage) {
	sc := resp.GetStatusCode()
	tx.addResponse(sc)
	tx.LastResponse = resp
	tx.sent = resp.Bytes()
	ua.write(tx.sent, tx.dest)
	if sc < 200 {
		return
	}
	if tx.isInvite() {
		if d := tx.dialog; d != nil && sc < 300 {
			d.Confirmed = true
		}
		tx.startRetransmission(ua, true)
		tx.startTimeout(ua, timerB(), ua.serverInviteTimeout)
		return
	}
	tx.startTimeout(ua, timerB(), func(tx *Transaction) { delete(ua.server, tx.TID) })
}

func (ua *UserAgent) lastResponse(tx *Transaction) int {
	if len(tx.Responses) == 0 {
		return 0
	}
	return tx.Responses[len(tx.Responses)-1]
}

// ackFailure acknowledges a non-2xx final answer within the INVITE
// transaction.
func (ua *UserAgent) ackFailure(tx *Transaction, resp *SipMessage) {
	req := tx.Request
	ack := NewRequestMessage(global.ACK, req.StartLine.RUri)
	hdrs := ack.Headers
	hdrs.SetHeader(global.Via, req.Headers.ValueHeader(global.Via))
	hdrs.AddHeaderValues(global.Route, req.Headers.HeaderValues(global.Route))
	hdrs.SetHeader(global.From, req.Headers.ValueHeader(global.From))
	hdrs.SetHeader(global.To, resp.ToHeader)
	hdrs.SetHeader(global.Call_ID, req.CallID)
	hdrs.SetHeader(global.CSeq, fmt.Sprintf("%d %s", tx.CSeq, global.ACK))
	hdrs.SetHeader(global.Max_Forwards, fmt.Sprint(global.MaxForwards))
	tx.sent = ack.Bytes()
	ua.write(tx.sent, tx.dest)
}

// ==================================================================
// Timeouts

func (ua *UserAgent) clientTimeout(tx *Transaction) {
	delete(ua.client, tx.key())
	if tx.IsFinalized {
		return
	}
	system.LogWarning(system.LTSIPStack, fmt.Sprintf("Transaction timed out: %s", tx))
	switch tx.Method {
	case global.REGISTER:
		ev := newEvent(EventRegistrationFailure, -1, -1, -1)
		ev.RID = ua.reg.rid
		ev.Request = tx.Request
		ua.emit(ev)
	case global.INVITE:
		if d := tx.dialog; d != nil && ua.calls[d.CID] == d {
			ua.removeCall(d)
			ua.emit(&Event{Type: EventCallNoAnswer, RID: -1, CID: d.CID, DID: d.DID, TID: -1, Request: tx.Request})
			ua.emit(newEvent(EventCallReleased, d.CID, d.DID, -1))
		}
	case global.INFO:
		if d := tx.dialog; d != nil {
			ua.emit(&Event{Type: EventCallMessageRequestFailure, RID: -1, CID: d.CID, DID: d.DID, TID: -1, Request: tx.Request})
		}
	case global.BYE:
		if d := tx.dialog; d != nil && ua.calls[d.CID] == d {
			ua.removeCall(d)
			ua.emit(newEvent(EventCallReleased, d.CID, d.DID, -1))
		}
	}
}

func (ua *UserAgent) serverInviteTimeout(tx *Transaction) {
	delete(ua.server, tx.TID)
	if tx.IsACKed {
		return
	}
	system.LogWarning(system.LTSIPStack, fmt.Sprintf("No ACK received: %s", tx))
	d := tx.dialog
	if d == nil || ua.calls[d.CID] != d {
		return
	}
	if system.IsPositive(ua.lastResponse(tx)) {
		if err := ua.sendBye(d); err != nil {
			system.LogError(system.LTSIPStack, err.Error())
		}
		return
	}
	if tx.Method == global.INVITE {
		ua.releaseCall(d, nil)
	}
}
