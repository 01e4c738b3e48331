package event

import (
	"errors"
)

var ErrNoEventData = errors.New("no event data provided")

// UpstreamError marks a failure reported by the remote calendar API.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err originates from the remote calendar API.
func IsUpstream(err error) bool {
	var upstreamErr *UpstreamError
	return errors.As(err, &upstreamErr)
}
