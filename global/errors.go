package global

//go:generate errtrace -w .

import (
	"errors"
	"fmt"
)

// Error is a string type that implements the error interface.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrConfig Error = "configuration error"

	ErrRegistrationTimeout Error = "registration timeout"
	ErrNoRights            Error = "registration refused"
	ErrRegistrationFailure Error = "registration failure"

	ErrTooManyCalls Error = "too many calls"
	ErrBuildFailure Error = "failed to build message"
	ErrUnknownCall  Error = "unknown call"

	ErrNoUsableAddress   Error = "no usable address"
	ErrNoCompatibleCodec Error = "no compatible codec"

	ErrQueueFull      Error = "playback queue full"
	ErrOpenFailed     Error = "failed to open audio source"
	ErrFormatMismatch Error = "audio format mismatch"

	ErrSinkInitFailed Error = "failed to initialise audio sink"
	ErrNotStarted     Error = "rtp session not started"

	ErrBadMessage  Error = "bad sip message"
	ErrTransport   Error = "transport error"
	ErrShutdown    Error = "shutting down"
	ErrInvalidArgs Error = "invalid argument"
)

// NewError creates or wraps an error with a sentinel error.
//   - no args: returns sentinel
//   - error arg: wraps with sentinel (unless already wrapped)
//   - string arg: formats as message with sentinel
//   - string + args: formats with Sprintf then wraps with sentinel
func NewError(sentinel error, args ...any) error {
	if len(args) == 0 {
		return sentinel //errtrace:skip
	}
	switch v := args[0].(type) {
	case error:
		if errors.Is(v, sentinel) {
			return v //errtrace:skip
		}
		return fmt.Errorf("%w: %w", sentinel, v) //errtrace:skip
	case string:
		if len(args) == 1 {
			return fmt.Errorf("%w: %s", sentinel, v) //errtrace:skip
		}
		return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(v, args[1:]...)) //errtrace:skip
	default:
		return sentinel //errtrace:skip
	}
}
