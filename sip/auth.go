package sip

import (
	"braces.dev/errtrace"
	"github.com/icholy/digest"

	"sipalert/global"
)

// authenticator answers 401/407 challenges with the configured credentials.
// The last challenge is kept so later requests of the same realm can be sent
// pre-authorised.
type authenticator struct {
	login    string
	password string

	challenge *digest.Challenge
	proxy     bool
	count     int
}

// challengeHeaders returns the challenge and credential header names for a
// 401 or 407 status.
func challengeHeaders(sc int) (global.HeaderEnum, global.HeaderEnum, bool) {
	switch sc {
	case 401:
		return global.WWW_Authenticate, global.Authorization, true
	case 407:
		return global.Proxy_Authenticate, global.Proxy_Authorization, true
	}
	return 0, 0, false
}

// Challenge records the challenge carried by resp.
func (a *authenticator) Challenge(resp *SipMessage) error {
	chlhdr, _, ok := challengeHeaders(resp.GetStatusCode())
	if !ok {
		return global.NewError(global.ErrInvalidArgs, "status %d carries no challenge", resp.GetStatusCode())
	}
	value := resp.Headers.ValueHeader(chlhdr)
	if value == "" {
		return global.NewError(global.ErrBadMessage, "no %s header in %d response", chlhdr, resp.GetStatusCode())
	}
	chal, err := digest.ParseChallenge(value)
	if err != nil {
		return global.NewError(global.ErrBadMessage, err)
	}
	a.challenge = chal
	a.proxy = resp.GetStatusCode() == 407
	a.count = 0
	return nil
}

// Authorize adds credentials for the last challenge to req, if any.
func (a *authenticator) Authorize(req *SipMessage) error {
	if a.challenge == nil {
		return nil
	}
	if a.login == "" {
		return global.NewError(global.ErrNoRights, "server required auth, but no login was provided")
	}
	a.count++
	cred, err := digest.Digest(a.challenge, digest.Options{
		Method:   req.GetMethod().String(),
		URI:      req.StartLine.RUri,
		Count:    a.count,
		Username: a.login,
		Password: a.password,
	})
	if err != nil {
		return errtrace.Wrap(global.NewError(global.ErrBuildFailure, err))
	}
	hdr := global.Authorization
	if a.proxy {
		hdr = global.Proxy_Authorization
	}
	req.Headers.SetHeader(hdr, cred.String())
	return nil
}

func (a *authenticator) Reset() {
	a.challenge = nil
	a.count = 0
}
