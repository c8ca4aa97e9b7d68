package session

import (
	"errors"
	"fmt"
	"time"

	"braces.dev/errtrace"

	"sipalert/dtmf"
	"sipalert/global"
	"sipalert/system"
)

// StartMedia opens RTP towards the negotiated remote media.
func (s *Session) StartMedia() error {
	rm := s.remote
	if rm.Host == "" || rm.Port <= 0 {
		return global.NewError(global.ErrNoUsableAddress, "no remote media for cid %d", s.cid)
	}
	return errtrace.Wrap(s.rtp.Start(rm.Host, rm.Port, rm.PayloadType, rm.Codec))
}

// Play queues path for immediate playback.
func (s *Session) Play(path string) error {
	return errtrace.Wrap(s.PlayAfterDelay(0, path))
}

// PlayAfterDelay queues path after delayMs of silence. Starting playback
// resumes the RTP clock so that idle time is skipped.
func (s *Session) PlayAfterDelay(delayMs int, path string) error {
	if err := s.queue.Enqueue(delayMs, path); err != nil {
		return errtrace.Wrap(err)
	}
	if s.playing {
		return nil
	}
	s.playing = true
	if err := s.rtp.Resume(); err != nil && !errors.Is(err, global.ErrNotStarted) {
		return errtrace.Wrap(err)
	}
	s.publish()
	return nil
}

// AudioTick sends one 20 ms frame while playing. The last frame of a clip
// carries only the samples read; an empty read sends nothing. Only a failure
// to create the A-law sink is returned.
func (s *Session) AudioTick() error {
	if !s.playing {
		return nil
	}
	if s.queue.Empty() {
		s.playing = false
		system.LogDebug(system.LTPlayback, "Playback queue drained")
		s.publish()
		return nil
	}
	n := s.queue.ReadFrame(s.frame)
	if n == 0 {
		return nil
	}

	spf := s.remote.SamplesPerFrame
	if spf == 0 {
		spf = global.PayloadSize
	}
	m, err := s.enc.EncodeFrame(s.frame[:n], spf, s.payload)
	if err != nil {
		if errors.Is(err, global.ErrSinkInitFailed) {
			return errtrace.Wrap(err)
		}
		system.LogError(system.LTMediaStack, err.Error())
		return nil
	}
	if !s.rtp.Started() {
		return nil
	}
	if err := s.rtp.Send(s.payload[:m], m); err != nil {
		system.LogWarning(system.LTRTPStack, fmt.Sprintf("RTP send failed: %v", err))
	}
	return nil
}

// SendDTMF relays digit in an INFO request.
func (s *Session) SendDTMF(digit byte) error {
	if !dtmf.Valid(digit) {
		return global.NewError(global.ErrInvalidArgs, "not a DTMF digit [%c]", digit)
	}
	if !s.active {
		return global.NewError(global.ErrUnknownCall, "no active call for DTMF [%c]", digit)
	}
	body := dtmf.RelayBody(digit, global.DTMFDuration)
	if err := s.sig.SendInfo(s.did, global.DTMFRelay.ContentType(), body); err != nil {
		return errtrace.Wrap(err)
	}
	system.LogInfo(system.LTDTMF, fmt.Sprintf("Sent DTMF [%c]", digit))
	return nil
}

// SendDTMFAfter relays digit once delay has passed, if the call is still up.
func (s *Session) SendDTMFAfter(delay time.Duration, digit byte) {
	cid := s.cid
	s.After(delay, func() {
		if s.cid != cid || !s.active {
			return
		}
		if err := s.SendDTMF(digit); err != nil {
			system.LogWarning(system.LTDTMF, err.Error())
		}
	})
}
