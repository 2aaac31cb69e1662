package client

import "errors"

// Client errors.
var (
	// ErrUnknownStream is returned when subscribing to an invalid
	// stream identifier.
	ErrUnknownStream = errors.New("unknown stream")

	// ErrSessionClosed is returned by operations on a closed device
	// session.
	ErrSessionClosed = errors.New("device session closed")

	// ErrSessionActive is returned by Connect while another device
	// session is still open on the same client.
	ErrSessionActive = errors.New("a device session is already open")
)
