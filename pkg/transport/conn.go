package transport

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/e4-protocol/e4-go/pkg/log"
)

// Transport errors.
var (
	// ErrConnectionClosed is returned by operations on a closed connection.
	ErrConnectionClosed = errors.New("connection closed")
)

// Conn is a line-oriented connection to the streaming server.
//
// Writes are serialized so that concurrent callers never interleave
// partial lines. Reads are expected from a single goroutine (the
// client's demultiplexing loop).
type Conn struct {
	rwc    io.ReadWriteCloser
	reader *bufio.Reader

	writeMu   sync.Mutex
	closeOnce sync.Once
	closeCh   chan struct{}

	logger     log.Logger
	connID     string
	remoteAddr string
}

// NewConn wraps an established stream in a line connection.
// If rwc is a net.Conn, its remote address is recorded for logging.
func NewConn(rwc io.ReadWriteCloser) *Conn {
	c := &Conn{
		rwc:     rwc,
		reader:  bufio.NewReader(rwc),
		closeCh: make(chan struct{}),
		logger:  log.NoopLogger{},
	}
	if nc, ok := rwc.(net.Conn); ok {
		c.remoteAddr = nc.RemoteAddr().String()
	}
	return c
}

// SetLogger installs a protocol event logger for this connection.
// The connection ID appears in every logged event. Pass nil to disable.
func (c *Conn) SetLogger(logger log.Logger, connID string) {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	c.logger = logger
	c.connID = connID
}

// ConnectionID returns the identifier set via SetLogger, if any.
func (c *Conn) ConnectionID() string {
	return c.connID
}

// RemoteAddr returns the remote address of the underlying connection,
// or an empty string if unknown.
func (c *Conn) RemoteAddr() string {
	return c.remoteAddr
}

// WriteLine writes one protocol line to the server.
// The CRLF terminator is appended if not already present.
func (c *Conn) WriteLine(line string) error {
	select {
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
	}

	if !strings.HasSuffix(line, "\r\n") {
		line += "\r\n"
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := io.WriteString(c.rwc, line); err != nil {
		if c.isClosed() {
			return ErrConnectionClosed
		}
		return err
	}

	c.logLine(log.DirectionOut, strings.TrimSuffix(line, "\r\n"))
	return nil
}

// ReadLine reads one protocol line from the server, without the
// trailing CRLF. It blocks until a full line is available, the peer
// closes the stream, or Close is called.
func (c *Conn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		if c.isClosed() {
			return "", ErrConnectionClosed
		}
		return "", err
	}

	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	c.logLine(log.DirectionIn, line)
	return line, nil
}

// Close closes the connection. Any blocked ReadLine returns
// ErrConnectionClosed. It is safe to call Close multiple times.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		err = c.rwc.Close()

		c.logger.Log(log.Event{
			Timestamp:    time.Now(),
			ConnectionID: c.connID,
			Direction:    log.DirectionOut,
			Layer:        log.LayerTransport,
			Category:     log.CategoryState,
			RemoteAddr:   c.remoteAddr,
			StateChange: &log.StateChangeEvent{
				Entity:   log.StateEntityConnection,
				OldState: "CONNECTED",
				NewState: "DISCONNECTED",
			},
		})
	})
	return err
}

// isClosed reports whether Close has been called.
func (c *Conn) isClosed() bool {
	select {
	case <-c.closeCh:
		return true
	default:
		return false
	}
}

func (c *Conn) logLine(dir log.Direction, line string) {
	c.logger.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    dir,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		RemoteAddr:   c.remoteAddr,
		Line:         log.NewLineEvent(line),
	})
}
