package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/e4-protocol/e4-go/pkg/log"
)

// Dial defaults.
const (
	// DefaultAddress is the streaming server's default listen address.
	DefaultAddress = "127.0.0.1:28000"

	// DefaultConnectTimeout bounds a single connection attempt.
	DefaultConnectTimeout = 5 * time.Second

	// DefaultMaxAttempts is the number of connection attempts before
	// giving up. The server refuses connections briefly after start-up,
	// so a fresh client needs a few tries.
	DefaultMaxAttempts = 20
)

// DialConfig configures connection establishment.
type DialConfig struct {
	// ConnectTimeout bounds each individual attempt (default: 5s).
	ConnectTimeout time.Duration

	// MaxAttempts is the total number of attempts (default: 20).
	MaxAttempts int

	// Backoff configures the delay between attempts.
	Backoff BackoffConfig

	// Logger receives protocol events for the new connection.
	Logger log.Logger
}

// DefaultDialConfig returns the default dial configuration.
func DefaultDialConfig() DialConfig {
	return DialConfig{
		ConnectTimeout: DefaultConnectTimeout,
		MaxAttempts:    DefaultMaxAttempts,
	}
}

// Dial connects to the streaming server with default settings.
func Dial(ctx context.Context, address string) (*Conn, error) {
	return DialWithConfig(ctx, address, DefaultDialConfig())
}

// DialWithConfig connects to the streaming server, retrying failed
// attempts with exponential backoff until MaxAttempts is exhausted or
// the context is cancelled.
func DialWithConfig(ctx context.Context, address string, cfg DialConfig) (*Conn, error) {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}

	backoff := NewBackoffWithConfig(cfg.Backoff)
	dialer := &net.Dialer{Timeout: cfg.ConnectTimeout}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff.Next()):
			}
		}

		netConn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		conn := NewConn(netConn)
		conn.SetLogger(cfg.Logger, uuid.NewString())
		return conn, nil
	}

	return nil, fmt.Errorf("dial %s failed after %d attempts: %w", address, cfg.MaxAttempts, lastErr)
}
