package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/e4-protocol/e4-go/pkg/wire"
)

// Config is the e4-monitor YAML configuration.
type Config struct {
	// Address of the streaming server.
	Address string `yaml:"address"`

	// DeviceUID selects the device to stream from. Empty means the
	// first allowed device in the server's device list.
	DeviceUID string `yaml:"device_uid"`

	// Streams to subscribe to, by name or token (acc, bvp, gsr, tmp,
	// ibi, hr, bat, tag).
	Streams []string `yaml:"streams"`

	// ProtocolLog is an optional path for the CBOR protocol event log.
	ProtocolLog string `yaml:"protocol_log"`

	// RequestTimeout bounds each command/reply cycle.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Address: "127.0.0.1:28000",
		Streams: []string{"gsr", "tmp", "tag"},
	}
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for problems a typo would cause.
func (c *Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address must not be empty")
	}
	if len(c.Streams) == 0 {
		return fmt.Errorf("at least one stream must be configured")
	}
	for _, name := range c.Streams {
		if _, ok := wire.ParseStreamName(name); !ok {
			return fmt.Errorf("unknown stream %q", name)
		}
	}
	return nil
}

// StreamIDs resolves the configured stream names.
func (c *Config) StreamIDs() []wire.StreamID {
	ids := make([]wire.StreamID, 0, len(c.Streams))
	for _, name := range c.Streams {
		if id, ok := wire.ParseStreamName(name); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
