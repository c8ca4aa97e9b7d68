package dtmf

import "testing"

func TestFrequencies(t *testing.T) {
	tests := []struct {
		digit     byte
		low, high float64
		ok        bool
	}{
		{'1', 697, 1209, true},
		{'5', 770, 1336, true},
		{'#', 941, 1477, true},
		{'d', 941, 1633, true},
		{'0', 941, 1336, true},
		{'E', 0, 0, false},
		{' ', 0, 0, false},
	}
	for _, tt := range tests {
		low, high, ok := Frequencies(tt.digit)
		if low != tt.low || high != tt.high || ok != tt.ok {
			t.Errorf("Frequencies(%q) = %v, %v, %v, want %v, %v, %v", tt.digit, low, high, ok, tt.low, tt.high, tt.ok)
		}
		if got := Valid(tt.digit); got != tt.ok {
			t.Errorf("Valid(%q) = %v, want %v", tt.digit, got, tt.ok)
		}
	}
}

func TestRelayBody(t *testing.T) {
	if got, want := string(RelayBody('b', 250)), "Signal=B\r\nDuration=250\r\n"; got != want {
		t.Errorf("RelayBody() = %q, want %q", got, want)
	}
}
