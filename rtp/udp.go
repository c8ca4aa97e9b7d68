package rtp

import (
	"fmt"
	"net"
	"sync"
	"time"

	"braces.dev/errtrace"
	pionrtp "github.com/pion/rtp"

	"sipalert/global"
	"sipalert/system"
)

// UDPTransport sends RTP packets from a fixed local port and blocks each
// Send until the packet is due by its timestamp.
type UDPTransport struct {
	mu        sync.Mutex
	conn      *net.UDPConn
	pt        uint8
	clockRate int
	ssrc      uint32
	seq       uint16
	baseTS    uint32
	start     time.Time
	sent      bool

	now   func() time.Time
	sleep func(time.Duration)
}

// UDPDialer creates UDP transports bound to LocalPort on LocalIP.
type UDPDialer struct {
	LocalIP   net.IP
	LocalPort int
}

func (d UDPDialer) Dial(host string, port int, pt uint8, profile *Profile) (Transport, error) {
	c, ok := profile.Codec(pt)
	if !ok {
		return nil, global.NewError(global.ErrInvalidArgs, "payload type %d not in profile %s", pt, profile.Name())
	}
	raddr, err := system.ResolveUDP(host, port)
	if err != nil {
		return nil, global.NewError(global.ErrTransport, err)
	}
	laddr := &net.UDPAddr{IP: d.LocalIP, Port: d.LocalPort}
	conn, err := net.DialUDP("udp4", laddr, raddr)
	if err != nil {
		return nil, global.NewError(global.ErrTransport, err)
	}
	return newUDPTransport(conn, pt, c.ClockRate), nil
}

func newUDPTransport(conn *net.UDPConn, pt uint8, clockRate int) *UDPTransport {
	return &UDPTransport{
		conn:      conn,
		pt:        pt,
		clockRate: clockRate,
		// #nosec G115: values fit the header fields
		ssrc:   system.RandomNum(2000, 9000000),
		seq:    uint16(system.RandomNum(1000, 2000)),
		baseTS: system.RandomNum(0, 1<<31),
		start:  time.Now(),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

func (t *UDPTransport) CurrentTimestamp() uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clock(t.now())
}

func (t *UDPTransport) clock(at time.Time) uint32 {
	elapsed := at.Sub(t.start)
	return t.baseTS + uint32(elapsed.Milliseconds()*int64(t.clockRate)/1000)
}

func (t *UDPTransport) due(ts uint32) time.Time {
	ticks := int32(ts - t.baseTS)
	return t.start.Add(time.Duration(ticks) * time.Second / time.Duration(t.clockRate))
}

func (t *UDPTransport) Send(payload []byte, ts uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if wait := t.due(ts).Sub(t.now()); wait > 0 {
		t.sleep(wait)
	}

	pkt := pionrtp.Packet{
		Header: pionrtp.Header{
			Version:        2,
			Marker:         !t.sent,
			PayloadType:    t.pt,
			SequenceNumber: t.seq,
			Timestamp:      ts,
			SSRC:           t.ssrc,
		},
		Payload: payload,
	}
	data, err := pkt.Marshal()
	if err != nil {
		return errtrace.Wrap(err)
	}
	if _, err := t.conn.Write(data); err != nil {
		return global.NewError(global.ErrTransport, err)
	}
	t.seq++
	t.sent = true
	return nil
}

func (t *UDPTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.conn.Close(); err != nil {
		return global.NewError(global.ErrTransport, fmt.Errorf("close %v: %w", t.conn.LocalAddr(), err))
	}
	return nil
}
