package sip

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"sipalert/global"
	"sipalert/system"
)

// datagramPool holds read buffers sized for one UDP datagram.
var datagramPool = sync.Pool{
	New: func() any {
		b := make([]byte, global.BufferSize)
		return &b
	},
}

func (ua *UserAgent) startListener() {
	ua.wg.Add(1)
	go ua.udpLoop()
}

// udpLoop reads datagrams until the socket is closed.
func (ua *UserAgent) udpLoop() {
	defer ua.wg.Done()
	for {
		buf := datagramPool.Get().(*[]byte)
		n, addr, err := ua.conn.ReadFromUDP(*buf)
		if err != nil {
			datagramPool.Put(buf)
			if errors.Is(err, net.ErrClosed) {
				return
			}
			system.LogError(system.LTSIPStack, fmt.Sprintf("UDP read failed: %v", err))
			continue
		}
		pdu := bytes.Clone((*buf)[:n])
		datagramPool.Put(buf)
		ua.processPacket(pdu, addr)
	}
}

func (ua *UserAgent) processPacket(pdu []byte, src *net.UDPAddr) {
	defer func() {
		if r := recover(); r != nil {
			system.LogCallStack(r)
		}
	}()
	for len(pdu) > 0 {
		msg, rest, err := ParseMessage(pdu)
		if err != nil {
			system.LogHandler(slog.LevelWarn, system.LTBadSIPMessage, fmt.Sprintf("Bad PDU - %v", err),
				slog.String("source", src.String()), slog.String("pdu", string(pdu)))
			return
		}
		if msg == nil {
			return
		}
		ua.handleMessage(msg, src)
		pdu = rest
	}
}
