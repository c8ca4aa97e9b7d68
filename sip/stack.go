package sip

import (
	"fmt"
	"net"

	"braces.dev/errtrace"

	"sipalert/global"
	"sipalert/guid"
	"sipalert/system"
)

func (ua *UserAgent) handleMessage(sipmsg *SipMessage, src *net.UDPAddr) {
	ua.mu.Lock()
	defer ua.mu.Unlock()
	if ua.closed {
		return
	}
	if sipmsg.IsRequest() {
		ua.handleRequest(sipmsg, src)
		return
	}
	ua.handleResponse(sipmsg)
}

// ==================================================================
// Requests

func (ua *UserAgent) handleRequest(req *SipMessage, src *net.UDPAddr) {
	for _, tx := range ua.server {
		if tx.matches(req) {
			if tx.sent != nil {
				ua.write(tx.sent, tx.dest)
			}
			return
		}
	}

	switch req.GetMethod() {
	case global.INVITE:
		ua.onInvite(req, src)
	case global.ReINVITE:
		ua.onReinvite(req, src)
	case global.ACK:
		ua.onAck(req)
	case global.CANCEL:
		ua.onCancel(req, src)
	case global.BYE:
		ua.onBye(req, src)
	case global.INFO:
		ua.onInfo(req, src)
	case global.OPTIONS:
		tx := ua.addServer(req, src)
		ua.sendResponse(tx, ua.buildResponse(tx, 200))
	default:
		tx := ua.addServer(req, src)
		ua.sendResponse(tx, ua.buildResponse(tx, 405))
	}
}

func (ua *UserAgent) onInvite(req *SipMessage, src *net.UDPAddr) {
	tx := ua.addServer(req, src)
	if req.RCURI == "" {
		resp := ua.buildResponse(tx, 400)
		resp.Headers.SetHeader(global.Warning, `399 sipalert "Missing Contact"`)
		ua.sendResponse(tx, resp)
		return
	}
	d := &Dialog{
		CID:          ua.newID(),
		DID:          ua.newID(),
		CallID:       req.CallID,
		LocalTag:     guid.NewTag(),
		RemoteTag:    req.FromTag,
		RemoteHeader: req.FromHeader,
		RemoteTarget: req.RCURI,
		RouteSet:     req.RecordRoutes,
		invite:       tx,
	}
	d.LocalHeader = fmt.Sprintf("%s;tag=%s", req.ToHeader, d.LocalTag)
	tx.dialog = d
	ua.calls[d.CID] = d
	ua.sendResponse(tx, ua.buildResponse(tx, 100))

	system.LogInfo(system.LTSIPStack, fmt.Sprintf("Incoming INVITE from [%s] - %s", req.FromHeader, d))
	ua.emit(&Event{Type: EventCallInvite, RID: -1, CID: d.CID, DID: d.DID, TID: tx.TID, Request: req})
}

func (ua *UserAgent) onReinvite(req *SipMessage, src *net.UDPAddr) {
	tx := ua.addServer(req, src)
	d := ua.dialogFor(req)
	if d == nil {
		ua.sendResponse(tx, ua.buildResponse(tx, 481))
		return
	}
	tx.dialog = d
	if req.RCURI != "" {
		d.RemoteTarget = req.RCURI
	}
	ua.emit(&Event{Type: EventCallReinvite, RID: -1, CID: d.CID, DID: d.DID, TID: tx.TID, Request: req})
}

// onAck matches the INVITE server transaction by Call-ID and CSeq. The ACK
// of a 2xx has a branch of its own.
func (ua *UserAgent) onAck(req *SipMessage) {
	for _, tx := range ua.server {
		if !tx.isInvite() || tx.CallID != req.CallID || tx.CSeq != req.CSeqNum {
			continue
		}
		if tx.IsACKed {
			return
		}
		tx.IsACKed = true
		tx.stopTimers()
		delete(ua.server, tx.TID)
		d := tx.dialog
		if d == nil || ua.calls[d.CID] != d {
			return
		}
		if system.IsPositive(ua.lastResponse(tx)) {
			ua.emit(&Event{Type: EventCallAck, RID: -1, CID: d.CID, DID: d.DID, TID: tx.TID, Request: req})
			return
		}
		if tx.Method == global.INVITE {
			ua.releaseCall(d, nil)
		}
		return
	}
	system.LogDebug(system.LTSIPStack, fmt.Sprintf("Stray ACK for Call-ID [%s]", req.CallID))
}

func (ua *UserAgent) onCancel(req *SipMessage, src *net.UDPAddr) {
	tx := ua.addServer(req, src)
	var inv *Transaction
	for _, stx := range ua.server {
		if stx.Method == global.INVITE && stx.ViaBranch == req.ViaBranch && stx.CallID == req.CallID {
			inv = stx
			break
		}
	}
	if inv == nil {
		ua.sendResponse(tx, ua.buildResponse(tx, 481))
		return
	}
	ua.sendResponse(tx, ua.buildResponse(tx, 200))
	if inv.IsFinalized {
		return
	}
	ua.sendResponse(inv, ua.buildResponse(inv, 487))
	if d := inv.dialog; d != nil {
		ua.emit(&Event{Type: EventCallCancelled, RID: -1, CID: d.CID, DID: d.DID, TID: inv.TID, Request: req})
	}
}

func (ua *UserAgent) onBye(req *SipMessage, src *net.UDPAddr) {
	tx := ua.addServer(req, src)
	d := ua.dialogFor(req)
	if d == nil {
		ua.sendResponse(tx, ua.buildResponse(tx, 481))
		return
	}
	tx.dialog = d
	ua.sendResponse(tx, ua.buildResponse(tx, 200))
	d.Confirmed = false
	ua.removeCall(d)
	ua.emit(&Event{Type: EventCallClosed, RID: -1, CID: d.CID, DID: d.DID, TID: tx.TID, Request: req})
	ua.emit(newEvent(EventCallReleased, d.CID, d.DID, -1))
}

func (ua *UserAgent) onInfo(req *SipMessage, src *net.UDPAddr) {
	tx := ua.addServer(req, src)
	d := ua.dialogFor(req)
	if d == nil {
		ua.sendResponse(tx, ua.buildResponse(tx, 481))
		return
	}
	tx.dialog = d
	ua.emit(&Event{Type: EventCallMessageNew, RID: -1, CID: d.CID, DID: d.DID, TID: tx.TID, Request: req})
}

// ==================================================================
// Responses

func (ua *UserAgent) handleResponse(resp *SipMessage) {
	sc := resp.GetStatusCode()
	tx, ok := ua.client[resp.ViaBranch+" "+resp.CSeqMethod.String()]
	if !ok {
		system.LogDebug(system.LTSIPStack, fmt.Sprintf("Stray %d response for branch [%s]", sc, resp.ViaBranch))
		return
	}
	if tx.IsFinalized {
		// retransmitted final answer
		if system.IsFinal(sc) && tx.isInvite() {
			if d := tx.dialog; system.IsPositive(sc) && d != nil && d.ack != nil {
				ua.write(d.ack, d.ackDest)
			} else if system.IsNegative(sc) {
				ua.write(tx.sent, tx.dest)
			}
		}
		return
	}
	tx.addResponse(sc)
	if sc < 200 {
		if tx.isInvite() {
			tx.stopTimers()
		}
	} else {
		tx.stopTimers()
		tx.startTimeout(ua, timerB(), func(tx *Transaction) { delete(ua.client, tx.key()) })
	}

	switch tx.Method {
	case global.REGISTER:
		ua.onRegisterResponse(tx, resp)
	case global.INVITE, global.ReINVITE:
		ua.onInviteResponse(tx, resp)
	case global.BYE:
		if d := tx.dialog; system.IsFinal(sc) && d != nil && ua.calls[d.CID] == d {
			ua.releaseCall(d, resp)
		}
	case global.INFO:
		d := tx.dialog
		if sc < 200 || d == nil {
			return
		}
		et := EventCallMessageAnswered
		if !system.IsPositive(sc) {
			et = EventCallMessageRequestFailure
		}
		ua.emit(&Event{Type: et, RID: -1, CID: d.CID, DID: d.DID, TID: -1, Request: tx.Request, Response: resp})
	default:
		system.LogDebug(system.LTSIPStack, fmt.Sprintf("%d response to %s", sc, tx))
	}
}

func (ua *UserAgent) onRegisterResponse(tx *Transaction, resp *SipMessage) {
	sc := resp.GetStatusCode()
	if sc < 200 {
		return
	}
	ev := newEvent(EventRegistrationFailure, -1, -1, -1)
	ev.RID = ua.reg.rid
	ev.Request = tx.Request
	ev.Response = resp
	if system.IsPositive(sc) {
		ev.Type = EventRegistrationSuccess
		system.LogInfo(system.LTRegistration, fmt.Sprintf("%s registered, expires %d", ua.identity, resp.Expires()))
		ua.emit(ev)
		return
	}
	ua.emit(ev)
	if (sc != 401 && sc != 407) || tx.authTried {
		return
	}
	if err := ua.auth.Challenge(resp); err != nil {
		system.LogWarning(system.LTRegistration, err.Error())
		return
	}
	if err := ua.sendRegister(true); err != nil {
		system.LogError(system.LTRegistration, err.Error())
	}
}

func (ua *UserAgent) onInviteResponse(tx *Transaction, resp *SipMessage) {
	sc := resp.GetStatusCode()
	d := tx.dialog
	if d == nil || ua.calls[d.CID] != d {
		if sc >= 300 {
			ua.ackFailure(tx, resp)
		}
		return
	}
	if sc > 100 && sc < 300 {
		d.learnRemote(resp)
		if d.DID < 0 && d.RemoteTag != "" {
			d.DID = ua.newID()
		}
	}
	ev := &Event{RID: -1, CID: d.CID, DID: d.DID, TID: -1, Request: tx.Request, Response: resp}

	switch {
	case sc < 200:
		ev.Type = EventCallProceeding
		if sc == 180 || sc == 183 {
			ev.Type = EventCallRinging
		}
		ua.emit(ev)
		if d.cancelPending {
			ua.sendCancel(d)
		}
	case system.IsPositive(sc):
		d.Confirmed = true
		if d.cancelPending {
			d.cancelPending = false
			if err := ua.sendAck(d); err != nil {
				system.LogError(system.LTSIPStack, err.Error())
			}
			if err := ua.sendBye(d); err != nil {
				system.LogError(system.LTSIPStack, err.Error())
			}
			return
		}
		ev.Type = EventCallAnswered
		ua.emit(ev)
	default:
		ua.ackFailure(tx, resp)
		ev.Type = failureEvent(sc)
		ua.emit(ev)
		if (sc == 401 || sc == 407) && !tx.authTried && !d.cancelPending {
			if err := ua.auth.Challenge(resp); err == nil {
				if err = ua.retryInvite(d, tx); err == nil {
					return
				}
				system.LogError(system.LTSIPStack, err.Error())
			}
		}
		ua.releaseCall(d, resp)
	}
}

func failureEvent(sc int) EventType {
	switch {
	case system.IsNegativeClient(sc):
		return EventCallRequestFailure
	case system.IsNegativeServer(sc):
		return EventCallServerFailure
	case system.IsNegativeGlobal(sc):
		return EventCallGlobalFailure
	}
	return EventCallRedirected
}

// retryInvite resends the INVITE of d with credentials for the last
// challenge.
func (ua *UserAgent) retryInvite(d *Dialog, old *Transaction) error {
	d.RemoteTag = ""
	d.RemoteHeader = old.Request.Headers.ValueHeader(global.To)
	d.RouteSet = nil
	sipmsg, tx := d.newRequest(ua, global.INVITE)
	for _, h := range []global.HeaderEnum{global.Supported, global.Alert_Info, global.Subject} {
		if v := old.Request.Headers.ValueHeader(h); v != "" {
			sipmsg.Headers.SetHeader(h, v)
		}
	}
	sipmsg.Body = old.Request.Body
	if err := ua.auth.Authorize(sipmsg); err != nil {
		return errtrace.Wrap(err)
	}
	tx.authTried = true
	d.invite = tx
	ua.sendClient(tx, old.dest)
	return nil
}
