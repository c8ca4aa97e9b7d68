package sip

import (
	"testing"

	"sipalert/global"
)

var benchChallenge = challengeResponse(407, testChallenge)

func BenchmarkParseMessage(b *testing.B) {
	pdu := crlf(inviteLines...)
	b.ReportAllocs()
	for b.Loop() {
		if _, _, err := ParseMessage(pdu); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAuthorize(b *testing.B) {
	a := authenticator{login: "alert", password: "secret"}
	if err := a.Challenge(benchChallenge); err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for b.Loop() {
		req := NewRequestMessage(global.INVITE, "sip:bob@example.com")
		if err := a.Authorize(req); err != nil {
			b.Fatal(err)
		}
	}
}
