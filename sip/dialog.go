package sip

import (
	"fmt"
	"net"
	"slices"

	"sipalert/global"
)

// Dialog tracks one call leg from the first INVITE on. CID is assigned when
// the call is created, DID once both tags are known.
type Dialog struct {
	CID int
	DID int

	CallID    string
	LocalTag  string
	RemoteTag string

	LocalHeader  string // From of our requests, with tag
	RemoteHeader string // To of our requests, with tag once known
	RemoteTarget string
	RouteSet     []string
	LocalCSeq    uint32

	Outbound  bool
	Confirmed bool

	invite        *Transaction
	ack           []byte
	ackDest       *net.UDPAddr
	cancelPending bool
}

func (d *Dialog) String() string {
	return fmt.Sprintf("cid=%d did=%d call-id=%s", d.CID, d.DID, d.CallID)
}

// matches reports whether msg belongs to this dialog.
func (d *Dialog) matches(msg *SipMessage) bool {
	if d.CallID != msg.CallID {
		return false
	}
	if msg.IsRequest() {
		return msg.ToTag == d.LocalTag && (d.RemoteTag == "" || msg.FromTag == d.RemoteTag)
	}
	return msg.FromTag == d.LocalTag
}

func (d *Dialog) nextCSeq() uint32 {
	d.LocalCSeq++
	return d.LocalCSeq
}

// learnRemote takes the remote tag, target and route set from a message
// that establishes or refreshes the dialog.
func (d *Dialog) learnRemote(msg *SipMessage) {
	if msg.IsResponse() {
		if d.RemoteTag == "" && msg.ToTag != "" {
			d.RemoteTag = msg.ToTag
			d.RemoteHeader = msg.ToHeader
		}
		if len(msg.RecordRoutes) > 0 && !d.Confirmed {
			d.RouteSet = slices.Clone(msg.RecordRoutes)
			slices.Reverse(d.RouteSet)
		}
	}
	if msg.RCURI != "" {
		d.RemoteTarget = msg.RCURI
	}
}

// requestURI returns the target of in-dialog requests.
func (d *Dialog) requestURI() string {
	return d.RemoteTarget
}

// nextHop returns the URI the in-dialog request is sent to.
func (d *Dialog) nextHop() string {
	if len(d.RouteSet) > 0 {
		var mtch []string
		if global.RMatch(d.RouteSet[0], global.URIFull, &mtch) {
			return mtch[1]
		}
	}
	return d.RemoteTarget
}

// newRequest builds an in-dialog request with a fresh CSeq, except for
// ACK and CANCEL which reuse the INVITE's.
func (d *Dialog) newRequest(ua *UserAgent, method global.Method) (*SipMessage, *Transaction) {
	var tx *Transaction
	ruri := d.requestURI()
	switch method {
	case global.ACK:
		tx = newClientTransaction(method, d.invite.CSeq)
	case global.CANCEL:
		tx = newClientTransaction(method, d.invite.CSeq)
		tx.ViaBranch = d.invite.ViaBranch
		ruri = d.invite.Request.StartLine.RUri
	default:
		tx = newClientTransaction(method, d.nextCSeq())
	}
	tx.dialog = d
	tx.CallID = d.CallID

	sipmsg := NewRequestMessage(method, ruri)
	hdrs := sipmsg.Headers
	hdrs.AddHeader(global.Via, fmt.Sprintf("%s;branch=%s;rport", ua.viaWithoutBranch(), tx.ViaBranch))
	if method == global.CANCEL {
		hdrs.SetHeader(global.To, d.invite.Request.Headers.ValueHeader(global.To))
	} else {
		hdrs.AddHeaderValues(global.Route, d.RouteSet)
		hdrs.SetHeader(global.To, d.RemoteHeader)
	}
	hdrs.SetHeader(global.From, d.LocalHeader)
	hdrs.SetHeader(global.Call_ID, d.CallID)
	hdrs.SetHeader(global.CSeq, fmt.Sprintf("%d %s", tx.CSeq, method))
	hdrs.SetHeader(global.Max_Forwards, fmt.Sprint(global.MaxForwards))
	if method != global.CANCEL && method != global.ACK {
		hdrs.SetHeader(global.Contact, ua.contact())
	}
	tx.Request = sipmsg
	return sipmsg, tx
}
