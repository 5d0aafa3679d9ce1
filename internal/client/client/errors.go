package client

import "errors"

var (
	ErrUnavailable = errors.New("server unavailable")
	// ErrRejected marks an event the server will never accept; resending it
	// is pointless.
	ErrRejected = errors.New("event rejected")
)
