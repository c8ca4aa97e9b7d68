package sdp

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sipalert/global"
)

func TestLocalOffer(t *testing.T) {
	cases := []struct {
		name     string
		wideband bool
		mline    string
		prefs    []string
		want     RemoteMedia
	}{
		{
			name:  "narrowband",
			mline: "m=audio 5070 RTP/AVP 8\r\n",
			prefs: []string{"PCMA/16000", "PCMA/8000"},
			want:  RemoteMedia{Host: "192.0.2.1", Port: 5070, PayloadType: 8, Codec: "PCMA/8000", SamplesPerFrame: 160},
		},
		{
			name:     "wideband",
			wideband: true,
			mline:    "m=audio 5070 RTP/AVP 8 96\r\n",
			prefs:    []string{"PCMA/16000", "PCMA/8000"},
			want:     RemoteMedia{Host: "192.0.2.1", Port: 5070, PayloadType: 96, Codec: "PCMA/16000", SamplesPerFrame: 320},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			offer := Local{IP: "192.0.2.1", Port: global.RTPPort, Wideband: c.wideband}.Offer()
			if !strings.Contains(string(offer), c.mline) {
				t.Errorf("Offer() = %q, want line %q", offer, c.mline)
			}
			if !strings.Contains(string(offer), "o=sipalert 0 0 IN IP4 192.0.2.1") {
				t.Errorf("Offer() = %q, want sipalert origin", offer)
			}
			got, err := Negotiate(offer, c.prefs)
			if err != nil {
				t.Fatalf("Negotiate(Offer()) error = %v, want nil", err)
			}
			if diff := cmp.Diff(got, c.want); diff != "" {
				t.Errorf("Negotiate(Offer()) mismatch (-got +want):\n%s", diff)
			}
		})
	}
}

func TestLocalAnswer(t *testing.T) {
	l := Local{IP: "192.0.2.1", Port: global.RTPPort, Wideband: true}
	rm := RemoteMedia{Host: "10.0.0.2", Port: 4000, PayloadType: 97, Codec: "PCMA/16000", SamplesPerFrame: 320, Mode: "sendonly"}
	ans, err := l.Answer(rm)
	if err != nil {
		t.Fatalf("Answer() error = %v, want nil", err)
	}
	for _, want := range []string{"m=audio 5070 RTP/AVP 97\r\n", "a=rtpmap:97 PCMA/16000", "a=recvonly"} {
		if !strings.Contains(string(ans), want) {
			t.Errorf("Answer() = %q, want %q", ans, want)
		}
	}

	if _, err := l.Answer(RemoteMedia{Codec: "bogus"}); !errors.Is(err, global.ErrBuildFailure) {
		t.Errorf("Answer(bogus) error = %v, want %v", err, global.ErrBuildFailure)
	}
}

func TestNegotiateMode(t *testing.T) {
	cases := []struct{ local, remote, want string }{
		{"sendrecv", "", "sendrecv"},
		{"sendrecv", "sendonly", "recvonly"},
		{"sendrecv", "recvonly", "sendonly"},
		{"sendrecv", "inactive", "inactive"},
		{"sendonly", "sendrecv", "sendonly"},
		{"recvonly", "recvonly", "inactive"},
	}
	for _, c := range cases {
		if got := NegotiateMode(c.local, c.remote); got != c.want {
			t.Errorf("NegotiateMode(%q, %q) = %q, want %q", c.local, c.remote, got, c.want)
		}
	}
}
