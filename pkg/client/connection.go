package client

import (
	"context"
	"sync"

	"github.com/e4-protocol/e4-go/pkg/log"
	"github.com/e4-protocol/e4-go/pkg/subscription"
	"github.com/e4-protocol/e4-go/pkg/wire"
)

// DeviceConnection is a scoped session with one wearable device.
//
// Subscriptions created through it are invalidated when it closes.
// All methods are safe for concurrent use, but must not be called from
// inside a Consumer callback: Subscribe, Unsubscribe and Close can
// issue a server command, and its reply can only be read by the
// dispatch goroutine the callback runs on, so the call stalls until
// the request timeout. Hand such work to another goroutine instead.
type DeviceConnection struct {
	client *Client
	uid    string

	mu     sync.Mutex
	tokens map[subscription.Token]wire.StreamID
	closed bool

	closeOnce sync.Once
}

// UID returns the device identifier this session is bound to.
func (d *DeviceConnection) UID() string {
	return d.uid
}

// Subscribe registers a consumer for a stream. The first consumer of a
// stream turns the stream on at the server; further consumers share the
// flow. IBI and HR share one server-side switch: subscribing to either
// enables both at the server, but each consumer still receives only
// its own stream's samples.
func (d *DeviceConnection) Subscribe(ctx context.Context, stream wire.StreamID, consumer subscription.Consumer) (subscription.Token, error) {
	if !stream.IsValid() {
		return "", ErrUnknownStream
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return "", ErrSessionClosed
	}

	if d.groupConsumerCount(stream) == 0 {
		if err := d.client.correlator.Execute(ctx, wire.CmdDeviceSubscribe, stream.SubscribeToken(), wire.OnOff(true)); err != nil {
			return "", err
		}
	}

	token := d.client.registry.Add(stream, consumer)
	d.tokens[token] = stream
	return token, nil
}

// Unsubscribe removes the consumer identified by token. When the last
// consumer of a stream's server-side switch goes away, the stream is
// turned off at the server. Unknown or already-removed tokens are a
// no-op.
func (d *DeviceConnection) Unsubscribe(ctx context.Context, token subscription.Token) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	stream, ok := d.tokens[token]
	if !ok {
		return nil
	}
	delete(d.tokens, token)
	d.client.registry.Remove(token)

	if d.groupConsumerCount(stream) == 0 {
		return d.client.correlator.Execute(ctx, wire.CmdDeviceSubscribe, stream.SubscribeToken(), wire.OnOff(false))
	}
	return nil
}

// Close tears the session down: every live subscription is removed and
// turned off at the server, and the device is disconnected. Server
// commands are best-effort; their failures are logged, not returned,
// since the goal is resource release. Close is idempotent.
func (d *DeviceConnection) Close() error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true

		groups := make(map[string]bool)
		for token, stream := range d.tokens {
			d.client.registry.Remove(token)
			groups[stream.SubscribeToken()] = true
		}
		d.tokens = make(map[subscription.Token]wire.StreamID)
		d.mu.Unlock()

		ctx := context.Background()
		for group := range groups {
			if err := d.client.correlator.Execute(ctx, wire.CmdDeviceSubscribe, group, wire.OnOff(false)); err != nil {
				d.client.logError("unsubscribe during teardown failed: "+err.Error(), group)
			}
		}
		if err := d.client.correlator.Execute(ctx, wire.CmdDeviceDisconnect); err != nil {
			d.client.logError("disconnect during teardown failed: "+err.Error(), d.uid)
		}

		d.client.clearSession(d)
		d.client.logState(log.StateEntitySession, "OPEN", "CLOSED", d.uid)
	})
	return nil
}

// groupConsumerCount counts registered consumers across all streams
// sharing this stream's server-side subscribe token.
// Callers hold d.mu.
func (d *DeviceConnection) groupConsumerCount(stream wire.StreamID) int {
	var n int
	for _, s := range wire.StreamsSharingToken(stream) {
		n += d.client.registry.Count(s)
	}
	return n
}
