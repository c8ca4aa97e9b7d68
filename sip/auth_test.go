package sip

import (
	"errors"
	"testing"

	"github.com/icholy/digest"

	"sipalert/global"
)

var testChallenge = digest.Challenge{
	Realm:     "example.com",
	Nonce:     "5f1b2c3d",
	Algorithm: "MD5",
}

// verifyCredentials checks hdr the way a registrar would.
func verifyCredentials(t *testing.T, chal digest.Challenge, hdr, method, password string) *digest.Credentials {
	t.Helper()
	cred, err := digest.ParseCredentials(hdr)
	if err != nil {
		t.Fatalf("ParseCredentials(%q) error = %v", hdr, err)
	}
	want, err := digest.Digest(&chal, digest.Options{
		Method:   method,
		URI:      cred.URI,
		Username: cred.Username,
		Password: password,
	})
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	if cred.Response != want.Response {
		t.Errorf("credential response = %s, want %s", cred.Response, want.Response)
	}
	return cred
}

func challengeResponse(sc int, chal digest.Challenge) *SipMessage {
	resp := NewResponseMessage(sc, "")
	hdr := global.WWW_Authenticate
	if sc == 407 {
		hdr = global.Proxy_Authenticate
	}
	resp.Headers.SetHeader(hdr, chal.String())
	return resp
}

func TestAuthenticatorAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		sc      int
		wantHdr global.HeaderEnum
	}{
		{"registrar", 401, global.Authorization},
		{"proxy", 407, global.Proxy_Authorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := authenticator{login: "alert", password: "secret"}
			if err := a.Challenge(challengeResponse(tt.sc, testChallenge)); err != nil {
				t.Fatalf("Challenge() error = %v, want nil", err)
			}
			req := NewRequestMessage(global.REGISTER, "sip:example.com")
			if err := a.Authorize(req); err != nil {
				t.Fatalf("Authorize() error = %v, want nil", err)
			}
			hdr := req.Headers.ValueHeader(tt.wantHdr)
			if hdr == "" {
				t.Fatalf("%s header missing", tt.wantHdr)
			}
			cred := verifyCredentials(t, testChallenge, hdr, "REGISTER", "secret")
			if cred.Username != "alert" || cred.URI != "sip:example.com" {
				t.Errorf("credentials = %s@%s, want alert@sip:example.com", cred.Username, cred.URI)
			}
		})
	}
}

func TestAuthenticatorWithoutChallenge(t *testing.T) {
	a := authenticator{login: "alert", password: "secret"}
	req := NewRequestMessage(global.INVITE, "sip:bob@example.com")
	if err := a.Authorize(req); err != nil {
		t.Fatalf("Authorize() error = %v, want nil", err)
	}
	if req.Headers.HeaderExists(global.Authorization.String()) {
		t.Errorf("Authorization added without a challenge")
	}
}

func TestAuthenticatorErrors(t *testing.T) {
	a := authenticator{}
	if err := a.Challenge(NewResponseMessage(403, "")); !errors.Is(err, global.ErrInvalidArgs) {
		t.Errorf("Challenge(403) error = %v, want %v", err, global.ErrInvalidArgs)
	}
	if err := a.Challenge(NewResponseMessage(401, "")); !errors.Is(err, global.ErrBadMessage) {
		t.Errorf("Challenge(401 without header) error = %v, want %v", err, global.ErrBadMessage)
	}
	if err := a.Challenge(challengeResponse(401, testChallenge)); err != nil {
		t.Fatalf("Challenge() error = %v, want nil", err)
	}
	err := a.Authorize(NewRequestMessage(global.REGISTER, "sip:example.com"))
	if !errors.Is(err, global.ErrNoRights) {
		t.Errorf("Authorize() without login error = %v, want %v", err, global.ErrNoRights)
	}
}
