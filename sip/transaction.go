package sip

import (
	"fmt"
	"net"
	"time"

	"sipalert/global"
	"sipalert/guid"
	"sipalert/system"
)

// Retransmission timers. Variables so tests can shorten them.
var (
	timerT1 = time.Duration(global.T1Timer) * time.Millisecond
	timerT2 = time.Duration(global.T2Timer) * time.Millisecond
)

func timerB() time.Duration { return time.Duration(global.TimerBFactor) * timerT1 }

type Transaction struct {
	TID       int
	Direction global.Direction
	Method    global.Method
	CSeq      uint32
	ViaBranch string
	CallID    string

	Request      *SipMessage // sent (client) or received (server) request
	LastResponse *SipMessage // server: last response sent
	Responses    []int

	IsACKed     bool
	IsFinalized bool
	authTried   bool

	dialog *Dialog
	dest   *net.UDPAddr
	sent   []byte

	retx      *time.Timer
	retxGen   int
	timeout   *time.Timer
	interval  time.Duration
	ReTXCount int
}

func (tx *Transaction) String() string {
	return fmt.Sprintf("%s %s tid=%d cseq=%d branch=%s", tx.Direction, tx.Method, tx.TID, tx.CSeq, tx.ViaBranch)
}

func newClientTransaction(method global.Method, cseq uint32) *Transaction {
	return &Transaction{
		TID:       -1,
		Direction: global.OUTBOUND,
		Method:    method,
		CSeq:      cseq,
		ViaBranch: guid.NewViaBranch(),
	}
}

func newServerTransaction(tid int, req *SipMessage) *Transaction {
	return &Transaction{
		TID:       tid,
		Direction: global.INBOUND,
		Method:    req.GetMethod(),
		CSeq:      req.CSeqNum,
		ViaBranch: req.ViaBranch,
		CallID:    req.CallID,
		Request:   req,
	}
}

// ==================================================================

// key identifies a client transaction. CANCEL shares the INVITE branch.
func (tx *Transaction) key() string {
	return tx.ViaBranch + " " + tx.Method.String()
}

func (tx *Transaction) isInvite() bool {
	return tx.Method.RequiresACK()
}

func (tx *Transaction) any1xx() bool {
	for _, r := range tx.Responses {
		if system.IsProvisional(r) {
			return true
		}
	}
	return false
}

func (tx *Transaction) addResponse(sc int) {
	tx.Responses = append(tx.Responses, sc)
	tx.IsFinalized = tx.IsFinalized || system.IsFinal(sc)
}

// matches reports whether an incoming request is a retransmission handled
// by this server transaction.
func (tx *Transaction) matches(req *SipMessage) bool {
	return tx.Direction == global.INBOUND && tx.ViaBranch == req.ViaBranch &&
		tx.CallID == req.CallID && tx.Method.String() == req.GetMethod().String()
}

// ================================================================================
// Timers. Callers hold the user agent lock.

// startRetransmission resends sent at T1, doubling each time. capped limits
// the interval to T2.
func (tx *Transaction) startRetransmission(ua *UserAgent, capped bool) {
	tx.stopRetransmission()
	gen := tx.retxGen
	tx.ReTXCount = 0
	tx.interval = timerT1
	var fire func()
	fire = func() {
		ua.mu.Lock()
		defer ua.mu.Unlock()
		if ua.closed || tx.retxGen != gen {
			return
		}
		ua.write(tx.sent, tx.dest)
		tx.ReTXCount++
		tx.interval *= 2 //doubling retransmission interval
		if capped && tx.interval > timerT2 {
			tx.interval = timerT2
		}
		tx.retx = time.AfterFunc(tx.interval, fire)
	}
	tx.retx = time.AfterFunc(tx.interval, fire)
}

func (tx *Transaction) stopRetransmission() {
	tx.retxGen++
	if tx.retx != nil {
		tx.retx.Stop()
		tx.retx = nil
	}
}

// startTimeout runs expire once after d unless stopped first.
func (tx *Transaction) startTimeout(ua *UserAgent, d time.Duration, expire func(*Transaction)) {
	tx.stopTimeout()
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		ua.mu.Lock()
		defer ua.mu.Unlock()
		if ua.closed || tx.timeout != t {
			return
		}
		tx.timeout = nil
		tx.stopRetransmission()
		expire(tx)
	})
	tx.timeout = t
}

func (tx *Transaction) stopTimeout() {
	if tx.timeout != nil {
		tx.timeout.Stop()
		tx.timeout = nil
	}
}

func (tx *Transaction) stopTimers() {
	tx.stopRetransmission()
	tx.stopTimeout()
}
