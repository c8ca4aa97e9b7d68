package system

import (
	"math/rand/v2"
	"strings"
)

// HeaderValueKey holds the bare value in the map returned by SplitHeaderParams.
const HeaderValueKey = "!headerValue"

// SplitHeaderParams splits `value;name=param;flag` into the bare value, keyed
// by HeaderValueKey, and its parameters keyed by lower case name. Quotes
// around parameter values are dropped.
func SplitHeaderParams(header string) map[string]string {
	if header == "" {
		return nil
	}
	value, rest, _ := strings.Cut(header, ";")
	out := map[string]string{HeaderValueKey: strings.TrimSpace(value)}
	for rest != "" {
		var p string
		p, rest, _ = strings.Cut(rest, ";")
		name, val, _ := strings.Cut(p, "=")
		if name = ASCIIToLower(strings.TrimSpace(name)); name != "" {
			out[name] = strings.Trim(strings.TrimSpace(val), `"`)
		}
	}
	return out
}

// RandomNum returns a number in [lo, hi].
func RandomNum(lo, hi uint32) uint32 {
	// #nosec G404: RTP identifiers need no crypto
	return lo + rand.Uint32N(hi-lo+1)
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Atoi parses a decimal string, yielding zero on any non-digit. A leading
// minus is honoured for signed T only.
func Atoi[T integer](s string) T {
	var n, zero T
	digits := s
	neg := strings.HasPrefix(s, "-") && zero-1 < zero
	if neg {
		digits = s[1:]
	}
	if digits == "" {
		return zero
	}
	for i := range len(digits) {
		c := digits[i]
		if c < '0' || c > '9' {
			return zero
		}
		n = n*10 + T(c-'0')
	}
	if neg {
		return -n
	}
	return n
}

func mapASCII(s string, from, to byte, first func(i int) bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := range len(s) {
		c := s[i]
		if c >= from && c <= from+25 && first(i) {
			c = c - from + to
		}
		b.WriteByte(c)
	}
	return b.String()
}

func always(int) bool { return true }

func ASCIIToLower(s string) string { return mapASCII(s, 'A', 'a', always) }
func ASCIIToUpper(s string) string { return mapASCII(s, 'a', 'A', always) }

// ASCIIPascal upper cases the first letter of every dash separated word.
func ASCIIPascal(s string) string {
	return mapASCII(s, 'a', 'A', func(i int) bool { return i == 0 || s[i-1] == '-' })
}
