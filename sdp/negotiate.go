package sdp

import (
	"bytes"
	"fmt"
	"strings"

	libsdp "github.com/Moatassem/sdp"

	"sipalert/global"
	"sipalert/rtp"
	"sipalert/system"
)

const (
	ContentType = "application/sdp"

	networkInternet = "IN"
	addressIPv4     = "IP4"
	mediaAudio      = "audio"
	protoRtpAvp     = "RTP/AVP"
)

// RemoteMedia is the result of one negotiation. It is replaced, never
// merged, on every offer or answer.
type RemoteMedia struct {
	Host            string
	Port            int
	PayloadType     uint8
	Codec           string
	SamplesPerFrame int
	Mode            string
}

func (rm RemoteMedia) String() string {
	return fmt.Sprintf("%s:%d pt %d %s (%d samples)", rm.Host, rm.Port, rm.PayloadType, rm.Codec, rm.SamplesPerFrame)
}

// Negotiate picks the remote address and an A-law codec from body.
// prefs lists "<name>/<rate>" labels in preference order, compared
// case-sensitively. When none of them is mapped, payload type 8 is assumed.
func Negotiate(body []byte, prefs []string) (RemoteMedia, error) {
	ses, err := libsdp.Parse(dropMalformedRtpmaps(body))
	if err != nil {
		return RemoteMedia{}, global.NewError(global.ErrNoCompatibleCodec, err)
	}

	media := firstAudio(ses)
	if media == nil {
		return RemoteMedia{}, global.NewError(global.ErrNoCompatibleCodec, "no audio %s media", protoRtpAvp)
	}

	host := effectiveAddress(ses, media)
	if host == "" {
		return RemoteMedia{}, global.NewError(global.ErrNoUsableAddress, "no %s %s connection", networkInternet, addressIPv4)
	}

	rm := RemoteMedia{Host: host, Port: media.Port, Mode: media.Mode}
	if rm.Mode == "" {
		rm.Mode = ses.Mode
	}
	if f, label := chooseFormat(media, prefs); f != nil {
		rm.PayloadType = f.Payload
		rm.Codec = label
		rm.SamplesPerFrame = f.ClockRate / (1000 / global.PacketizationTime)
	} else {
		system.LogWarning(system.LTSDPStack, fmt.Sprintf("No rtpmap matches %v - falling back to payload %d PCMA/8000", prefs, rtp.PCMA))
		rm.PayloadType = rtp.PCMA
		rm.Codec = "PCMA/8000"
		rm.SamplesPerFrame = global.PayloadSize
	}
	return rm, nil
}

func firstAudio(ses *libsdp.Session) *libsdp.Media {
	for _, m := range ses.Media {
		if m.Type == mediaAudio && m.Proto == protoRtpAvp && m.Port > 0 {
			return m
		}
	}
	return nil
}

// effectiveAddress scans the media connections in order and uses the
// session connection only when the media has none.
func effectiveAddress(ses *libsdp.Session, media *libsdp.Media) string {
	if len(media.Connection) == 0 {
		return usableAddress(ses.Connection)
	}
	for _, c := range media.Connection {
		if addr := usableAddress(c); addr != "" {
			return addr
		}
	}
	return ""
}

func usableAddress(c *libsdp.Connection) string {
	if c == nil {
		return ""
	}
	if c.Network != networkInternet {
		system.LogDebug(system.LTSDPStack, fmt.Sprintf("Skipping connection with network type [%s]", c.Network))
		return ""
	}
	if c.Type != addressIPv4 {
		return ""
	}
	addr, _, _ := strings.Cut(c.Address, "/")
	return addr
}

func chooseFormat(media *libsdp.Media, prefs []string) (*libsdp.Format, string) {
	for _, pref := range prefs {
		for _, f := range media.Format {
			if f.Name == "" || f.ClockRate <= 0 {
				continue
			}
			if f.ClockRate/(1000/global.PacketizationTime) > global.FrameSamples {
				continue
			}
			label := fmt.Sprintf("%s/%d", f.Name, f.ClockRate)
			if label == pref {
				return f, label
			}
		}
	}
	return nil, ""
}

// dropMalformedRtpmaps removes a=rtpmap lines the parser would reject.
func dropMalformedRtpmaps(body []byte) []byte {
	re := global.DicFieldRegEx[global.SDPRtpMapLine]
	var out bytes.Buffer
	out.Grow(len(body))
	for line := range bytes.Lines(body) {
		trimmed := bytes.TrimRight(line, "\r\n")
		if len(trimmed) > 9 && strings.EqualFold(string(trimmed[:9]), "a=rtpmap:") && !re.Match(trimmed) {
			system.LogWarning(system.LTSDPStack, fmt.Sprintf("Dropping malformed attribute [%s]", trimmed))
			continue
		}
		out.Write(line)
	}
	return out.Bytes()
}
