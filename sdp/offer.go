package sdp

import (
	"fmt"

	libsdp "github.com/Moatassem/sdp"

	"sipalert/global"
	"sipalert/rtp"
)

const (
	// DynamicPCMA is the payload type offered for PCMA/16000.
	DynamicPCMA uint8 = 96

	username    = "sipalert"
	sessionName = "call"
)

// Local describes the media endpoint of this agent.
type Local struct {
	IP       string
	Port     int
	Wideband bool
}

func (l Local) session(formats []*libsdp.Format, mode string) *libsdp.Session {
	conn := &libsdp.Connection{Network: networkInternet, Type: addressIPv4, Address: l.IP}
	return &libsdp.Session{
		Origin: &libsdp.Origin{
			Username: username,
			Network:  networkInternet,
			Type:     addressIPv4,
			Address:  l.IP,
		},
		Name:       sessionName,
		Connection: conn,
		Timing:     &libsdp.Timing{},
		Media: []*libsdp.Media{{
			Type:   mediaAudio,
			Port:   l.Port,
			Proto:  protoRtpAvp,
			Format: formats,
			Mode:   mode,
		}},
	}
}

// Offer lists PCMA/8000, plus PCMA/16000 when wideband is enabled.
func (l Local) Offer() []byte {
	formats := []*libsdp.Format{{Payload: rtp.PCMA, Name: "PCMA", ClockRate: 8000}}
	if l.Wideband {
		formats = append(formats, &libsdp.Format{Payload: DynamicPCMA, Name: "PCMA", ClockRate: 16000})
	}
	return l.session(formats, "").Bytes()
}

// Answer lists only the codec chosen from the remote offer.
func (l Local) Answer(rm RemoteMedia) ([]byte, error) {
	c, err := rtp.ParseCodec(rm.Codec)
	if err != nil {
		return nil, global.NewError(global.ErrBuildFailure, err)
	}
	if rm.Port <= 0 || l.IP == "" {
		return nil, global.NewError(global.ErrBuildFailure, fmt.Sprintf("no local address for %s", rm))
	}
	formats := []*libsdp.Format{{Payload: rm.PayloadType, Name: c.Name, ClockRate: c.ClockRate}}
	mode := NegotiateMode(libsdp.SendRecv, rm.Mode)
	if mode == libsdp.SendRecv {
		mode = ""
	}
	return l.session(formats, mode).Bytes(), nil
}

// NegotiateMode returns the answer direction for a local and a remote mode.
func NegotiateMode(local, remote string) string {
	if remote == "" {
		remote = libsdp.SendRecv
	}
	switch local {
	case libsdp.SendRecv:
		switch remote {
		case libsdp.RecvOnly:
			return libsdp.SendOnly
		case libsdp.SendOnly:
			return libsdp.RecvOnly
		default:
			return remote
		}
	case libsdp.SendOnly:
		switch remote {
		case libsdp.SendRecv, libsdp.RecvOnly:
			return libsdp.SendOnly
		}
	case libsdp.RecvOnly:
		switch remote {
		case libsdp.SendRecv, libsdp.SendOnly:
			return libsdp.RecvOnly
		}
	}
	return libsdp.Inactive
}
