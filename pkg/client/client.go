package client

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/e4-protocol/e4-go/pkg/interaction"
	"github.com/e4-protocol/e4-go/pkg/log"
	"github.com/e4-protocol/e4-go/pkg/subscription"
	"github.com/e4-protocol/e4-go/pkg/transport"
	"github.com/e4-protocol/e4-go/pkg/wire"
)

// Config configures a Client.
type Config struct {
	// Dial configures connection establishment (retry, timeouts).
	Dial transport.DialConfig

	// RequestTimeout bounds each command/reply cycle
	// (default: interaction.DefaultRequestTimeout). Negative disables.
	RequestTimeout time.Duration

	// Logger receives protocol events at all layers. Nil disables.
	Logger log.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		Dial: transport.DefaultDialConfig(),
	}
}

// Client is a connection to the E4 streaming server.
//
// All methods are safe for concurrent use. Commands are answered by
// the server one at a time, so concurrent command issuers queue.
type Client struct {
	conn       transport.LineConnection
	correlator *interaction.Correlator
	registry   *subscription.Registry

	logger log.Logger
	connID string

	closeOnce sync.Once
	readDone  chan struct{}

	mu      sync.Mutex
	session *DeviceConnection
}

// Dial connects to the streaming server and starts the read loop.
func Dial(ctx context.Context, address string) (*Client, error) {
	return DialWithConfig(ctx, address, DefaultConfig())
}

// DialWithConfig connects with custom configuration.
func DialWithConfig(ctx context.Context, address string, cfg Config) (*Client, error) {
	cfg.Dial.Logger = cfg.Logger
	conn, err := transport.DialWithConfig(ctx, address, cfg.Dial)
	if err != nil {
		return nil, err
	}
	return newClient(conn, conn.ConnectionID(), cfg), nil
}

// NewClient wraps an established line connection and starts the read
// loop. Intended for tests and custom transports; production callers
// use Dial.
func NewClient(conn transport.LineConnection) *Client {
	return NewClientWithConfig(conn, DefaultConfig())
}

// NewClientWithConfig wraps an established line connection with custom
// configuration.
func NewClientWithConfig(conn transport.LineConnection, cfg Config) *Client {
	return newClient(conn, "", cfg)
}

func newClient(conn transport.LineConnection, connID string, cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NoopLogger{}
	}

	c := &Client{
		conn:       conn,
		correlator: interaction.NewCorrelator(conn),
		registry:   subscription.NewRegistry(),
		logger:     logger,
		connID:     connID,
		readDone:   make(chan struct{}),
	}
	if cfg.RequestTimeout != 0 {
		timeout := cfg.RequestTimeout
		if timeout < 0 {
			timeout = 0
		}
		c.correlator.SetTimeout(timeout)
	}

	go c.readLoop()
	return c
}

// ListConnectedDevices returns the devices currently paired with the
// server over USB/BTLE.
func (c *Client) ListConnectedDevices(ctx context.Context) ([]wire.Device, error) {
	return c.queryDevices(ctx, wire.CmdDeviceList)
}

// DiscoverDevices scans for E4 devices in BTLE range.
func (c *Client) DiscoverDevices(ctx context.Context) ([]wire.Device, error) {
	return c.queryDevices(ctx, wire.CmdDeviceDiscoverList)
}

func (c *Client) queryDevices(ctx context.Context, cmd wire.Command) ([]wire.Device, error) {
	data, err := c.correlator.Query(ctx, cmd)
	if err != nil {
		return nil, err
	}
	devices, err := wire.ParseDeviceList(data)
	if err != nil {
		return nil, &interaction.ProtocolError{Command: cmd, Detail: err.Error()}
	}
	return devices, nil
}

// ConnectBTLE asks the server to establish a BTLE link with a device.
// The timeout is in seconds, as defined by the server; values below
// zero send the server's "no timeout" sentinel (-1).
func (c *Client) ConnectBTLE(ctx context.Context, uid string, timeoutSeconds int) error {
	if timeoutSeconds < 0 {
		timeoutSeconds = -1
	}
	return c.correlator.Execute(ctx, wire.CmdDeviceConnectBTLE, uid, strconv.Itoa(timeoutSeconds))
}

// DisconnectBTLE asks the server to drop a device's BTLE link.
func (c *Client) DisconnectBTLE(ctx context.Context, uid string) error {
	return c.correlator.Execute(ctx, wire.CmdDeviceDisconnectBTLE, uid)
}

// Pause suspends (on=true) or resumes (on=false) the sample flow for
// the open device session. The server always acknowledges pause.
func (c *Client) Pause(ctx context.Context, on bool) error {
	return c.correlator.Execute(ctx, wire.CmdPause, wire.OnOff(on))
}

// WriteRawLine sends a raw protocol line, bypassing the codec and the
// correlator. Any reply the server sends is handled by the read loop
// like every other line; a reply to a command the correlator is not
// waiting for is dropped. Intended for diagnostics.
func (c *Client) WriteRawLine(line string) error {
	return c.conn.WriteLine(line)
}

// Connect opens a device session. The server supports one device
// session per connection; Connect fails with ErrSessionActive while a
// previous session is still open. The session slot is claimed before
// the command goes out, so racing Connect calls cannot both succeed;
// a refused command releases the slot.
func (c *Client) Connect(ctx context.Context, uid string) (*DeviceConnection, error) {
	session := &DeviceConnection{
		client: c,
		uid:    uid,
		tokens: make(map[subscription.Token]wire.StreamID),
	}

	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		return nil, ErrSessionActive
	}
	c.session = session
	c.mu.Unlock()

	if err := c.correlator.Execute(ctx, wire.CmdDeviceConnect, uid); err != nil {
		c.clearSession(session)
		return nil, err
	}

	c.logState(log.StateEntitySession, "", "OPEN", uid)
	return session, nil
}

// Close tears down the client: any open device session is closed
// (best-effort), the connection is closed, and the read loop is
// waited for. Blocked commands fail with
// transport.ErrConnectionClosed. Close is idempotent.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		session := c.session
		c.mu.Unlock()
		if session != nil {
			session.Close()
		}

		err = c.conn.Close()
		<-c.readDone
	})
	return err
}

// readLoop is the demultiplexing loop: the sole reader of the
// connection. It runs until transport EOF, a transport error, or
// Close, then fails all pending commands and clears the registry.
func (c *Client) readLoop() {
	defer close(c.readDone)

	for {
		line, err := c.conn.ReadLine()
		if err != nil {
			break
		}

		msg := wire.Decode(line)
		c.logMessage(msg)

		switch m := msg.(type) {
		case wire.StatusReply, wire.QueryReply:
			if !c.correlator.Resolve(msg) {
				c.logError("unsolicited reply dropped", line)
			}
		case wire.Sample:
			c.registry.Dispatch(m)
		case wire.Unknown:
			// Unknown lines are noise, not faults.
		}
	}

	c.correlator.Close()
	c.registry.Clear()
}

func (c *Client) logMessage(msg wire.Message) {
	ev := log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		RemoteAddr:   c.conn.RemoteAddr(),
	}

	switch m := msg.(type) {
	case wire.StatusReply:
		ok := m.OK
		ev.Message = &log.MessageEvent{
			Type:    log.MessageTypeStatusReply,
			Command: m.Command.Verb(),
			Stream:  m.StreamToken,
			OK:      &ok,
			Reason:  m.Reason,
		}
	case wire.QueryReply:
		ev.Message = &log.MessageEvent{
			Type:    log.MessageTypeQueryReply,
			Command: m.Command.Verb(),
		}
	case wire.Sample:
		ts := m.Timestamp
		n := len(m.Values)
		ev.Message = &log.MessageEvent{
			Type:       log.MessageTypeSample,
			Stream:     m.Stream.String(),
			SampleTime: &ts,
			ValueCount: &n,
		}
	case wire.Unknown:
		ev.Message = &log.MessageEvent{Type: log.MessageTypeUnknown}
	}

	c.logger.Log(ev)
}

func (c *Client) logState(entity log.StateEntity, oldState, newState, deviceUID string) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    log.DirectionOut,
		Layer:        log.LayerSession,
		Category:     log.CategoryState,
		RemoteAddr:   c.conn.RemoteAddr(),
		DeviceUID:    deviceUID,
		StateChange: &log.StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
		},
	})
}

func (c *Client) logError(msg, context string) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryError,
		RemoteAddr:   c.conn.RemoteAddr(),
		Error: &log.ErrorEventData{
			Layer:   log.LayerWire,
			Message: msg,
			Context: context,
		},
	})
}

// clearSession detaches a closed device session from the client.
func (c *Client) clearSession(session *DeviceConnection) {
	c.mu.Lock()
	if c.session == session {
		c.session = nil
	}
	c.mu.Unlock()
}
