package interaction

import (
	"context"
	"sync"
	"time"

	"github.com/e4-protocol/e4-go/pkg/transport"
	"github.com/e4-protocol/e4-go/pkg/wire"
)

// DefaultRequestTimeout is the default bound on waiting for a reply.
// The server runs on localhost, so replies normally arrive within
// milliseconds.
const DefaultRequestTimeout = 5 * time.Second

// Correlator matches command replies to their commands.
//
// Because the wire protocol has no message identifiers, only one
// command may be in flight at a time. SendCommand serializes callers:
// a concurrent caller blocks until the previous command's reply has
// been consumed.
type Correlator struct {
	sender  transport.LineSender
	timeout time.Duration

	// Serializes full command/reply cycles across callers.
	sendMu sync.Mutex

	mu      sync.Mutex
	pending chan wire.Message
	closed  bool
}

// NewCorrelator creates a correlator that sends commands via sender.
func NewCorrelator(sender transport.LineSender) *Correlator {
	return &Correlator{
		sender:  sender,
		timeout: DefaultRequestTimeout,
	}
}

// SetTimeout sets the per-request reply timeout. Zero disables it.
func (c *Correlator) SetTimeout(timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = timeout
}

// SendCommand sends a command and waits for its reply.
// It blocks until the reply arrives, the timeout elapses, the context
// is cancelled, or the correlator is closed.
func (c *Correlator) SendCommand(ctx context.Context, cmd wire.Command, args ...string) (wire.Message, error) {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, transport.ErrConnectionClosed
	}
	pending := make(chan wire.Message, 1)
	c.pending = pending
	timeout := c.timeout
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		if c.pending == pending {
			c.pending = nil
		}
		c.mu.Unlock()
	}()

	line, err := wire.EncodeCommand(cmd, args...)
	if err != nil {
		return nil, err
	}
	if err := c.sender.WriteLine(line); err != nil {
		return nil, err
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case msg, ok := <-pending:
		if !ok {
			return nil, transport.ErrConnectionClosed
		}
		return msg, nil
	case <-timeoutCh:
		return nil, ErrRequestTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Resolve delivers a reply to the command awaiting it.
// It is called by the connection's read loop for every status or query
// reply. Resolve reports whether a command was waiting; an unsolicited
// reply returns false and is dropped by the caller.
func (c *Correlator) Resolve(msg wire.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return false
	}
	c.pending <- msg
	c.pending = nil
	return true
}

// Close fails the in-flight command, if any, and rejects all future
// commands with the connection-closed error. It is safe to call
// multiple times.
func (c *Correlator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	if c.pending != nil {
		close(c.pending)
		c.pending = nil
	}
}

// Execute sends a command and interprets its status reply.
// A server ERR reply is returned as a *CommandError.
func (c *Correlator) Execute(ctx context.Context, cmd wire.Command, args ...string) error {
	msg, err := c.SendCommand(ctx, cmd, args...)
	if err != nil {
		return err
	}

	switch reply := msg.(type) {
	case wire.StatusReply:
		if reply.Command != cmd {
			return &ProtocolError{Command: cmd, Detail: "reply for " + reply.Command.Verb()}
		}
		if !reply.OK {
			return &CommandError{Command: cmd, Reason: reply.Reason}
		}
		return nil
	case wire.QueryReply:
		return &ProtocolError{Command: cmd, Detail: "unexpected query reply"}
	default:
		return &ProtocolError{Command: cmd, Detail: "unexpected reply type"}
	}
}

// Query sends a query command and returns its reply payload.
func (c *Correlator) Query(ctx context.Context, cmd wire.Command, args ...string) (string, error) {
	msg, err := c.SendCommand(ctx, cmd, args...)
	if err != nil {
		return "", err
	}

	switch reply := msg.(type) {
	case wire.QueryReply:
		if reply.Command != cmd {
			return "", &ProtocolError{Command: cmd, Detail: "reply for " + reply.Command.Verb()}
		}
		return reply.Data, nil
	case wire.StatusReply:
		if reply.Command == cmd && !reply.OK {
			return "", &CommandError{Command: cmd, Reason: reply.Reason}
		}
		return "", &ProtocolError{Command: cmd, Detail: "unexpected status reply"}
	default:
		return "", &ProtocolError{Command: cmd, Detail: "unexpected reply type"}
	}
}
