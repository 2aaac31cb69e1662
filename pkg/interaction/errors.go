package interaction

import (
	"errors"
	"fmt"

	"github.com/e4-protocol/e4-go/pkg/wire"
)

// Interaction errors.
var (
	// ErrRequestTimeout is returned when the server does not reply
	// within the configured timeout.
	ErrRequestTimeout = errors.New("request timed out")
)

// CommandError is returned when the server refuses a command.
// The reason text comes verbatim from the server's ERR reply.
type CommandError struct {
	Command wire.Command
	Reason  string
}

// Error returns the error message.
func (e *CommandError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("command %s refused by server", e.Command.Verb())
	}
	return fmt.Sprintf("command %s refused by server: %s", e.Command.Verb(), e.Reason)
}

// ProtocolError is returned when the server's reply does not match the
// command awaiting it.
type ProtocolError struct {
	Command wire.Command
	Detail  string
}

// Error returns the error message.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error for %s: %s", e.Command.Verb(), e.Detail)
}
