// Package dtmf knows the telephone keypad and the application/dtmf-relay
// body carried in SIP INFO.
package dtmf

import (
	"fmt"
	"strings"
)

var keypad = [][]byte{
	{'1', '2', '3', 'A'},
	{'4', '5', '6', 'B'},
	{'7', '8', '9', 'C'},
	{'*', '0', '#', 'D'},
}

// Frequencies returns the row and column tones of digit in Hz.
func Frequencies(digit byte) (low, high float64, ok bool) {
	rows := []float64{697, 770, 852, 941}
	cols := []float64{1209, 1336, 1477, 1633}
	d := normalize(digit)
	for r, row := range keypad {
		for c, k := range row {
			if k == d {
				return rows[r], cols[c], true
			}
		}
	}
	return 0, 0, false
}

// Valid reports whether digit is on the 16-key pad. Letters may be lower case.
func Valid(digit byte) bool {
	_, _, ok := Frequencies(digit)
	return ok
}

func normalize(digit byte) byte {
	if digit >= 'a' && digit <= 'd' {
		return digit - 'a' + 'A'
	}
	return digit
}

// RelayBody builds the INFO body signalling digit for durationMs.
func RelayBody(digit byte, durationMs int) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Signal=%c\r\n", normalize(digit))
	fmt.Fprintf(&sb, "Duration=%d\r\n", durationMs)
	return []byte(sb.String())
}
