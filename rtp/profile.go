package rtp

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
)

const (
	PCMU uint8 = 0
	PCMA uint8 = 8
	G722 uint8 = 9

	DynamicPayloadStart uint8 = 96
)

type Codec struct {
	Name      string
	ClockRate int
}

func (c Codec) String() string {
	return fmt.Sprintf("%s/%d", c.Name, c.ClockRate)
}

// ParseCodec reads a "<name>/<rate>" label.
func ParseCodec(label string) (Codec, error) {
	name, rate, ok := strings.Cut(label, "/")
	if !ok || name == "" {
		return Codec{}, fmt.Errorf("invalid codec label %q", label)
	}
	if r, _, ok := strings.Cut(rate, "/"); ok {
		rate = r
	}
	cr, err := strconv.Atoi(rate)
	if err != nil || cr <= 0 {
		return Codec{}, fmt.Errorf("invalid clock rate in codec label %q", label)
	}
	return Codec{Name: strings.ToUpper(name), ClockRate: cr}, nil
}

// Profile maps payload types to codecs.
type Profile struct {
	name   string
	codecs map[uint8]Codec
}

// AVP is the static audio profile.
var AVP = &Profile{
	name: "av",
	codecs: map[uint8]Codec{
		PCMU: {Name: "PCMU", ClockRate: 8000},
		PCMA: {Name: "PCMA", ClockRate: 8000},
		G722: {Name: "G722", ClockRate: 8000},
	},
}

func (p *Profile) Name() string { return p.name }

func (p *Profile) Codec(pt uint8) (Codec, bool) {
	c, ok := p.codecs[pt]
	return c, ok
}

func (p *Profile) Clone(name string) *Profile {
	return &Profile{name: name, codecs: maps.Clone(p.codecs)}
}

func (p *Profile) Bind(pt uint8, c Codec) {
	p.codecs[pt] = c
}

// ProfileFor returns AVP for static payload types and a clone of it
// with pt bound to c for dynamic ones.
func ProfileFor(pt uint8, c Codec) *Profile {
	if pt < DynamicPayloadStart {
		return AVP
	}
	p := AVP.Clone("av-dyn")
	p.Bind(pt, c)
	return p
}
