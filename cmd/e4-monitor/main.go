// Command e4-monitor connects to an E4 streaming server, subscribes to
// a configured set of streams, and prints each sample until
// interrupted.
//
// Usage:
//
//	e4-monitor [flags]
//
// Flags:
//
//	-config string   YAML configuration file path
//	-addr string     Server address (overrides config)
//	-device string   Device UID (overrides config)
//
// Example configuration:
//
//	address: 127.0.0.1:28000
//	device_uid: A123B4
//	streams: [gsr, tmp, tag]
//	protocol_log: /tmp/e4-protocol.cborlog
//	request_timeout: 5s
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/e4-protocol/e4-go/pkg/client"
	e4log "github.com/e4-protocol/e4-go/pkg/log"
	"github.com/e4-protocol/e4-go/pkg/subscription"
	"github.com/e4-protocol/e4-go/pkg/wire"
)

func main() {
	configPath := flag.String("config", "", "YAML configuration file path")
	addr := flag.String("addr", "", "server address (overrides config)")
	device := flag.String("device", "", "device UID (overrides config)")
	flag.Parse()

	cfg := DefaultConfig()
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Config error: %v", err)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Address = *addr
	}
	if *device != "" {
		cfg.DeviceUID = *device
	}

	if err := run(cfg); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(cfg *Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clientCfg := client.DefaultConfig()
	if cfg.RequestTimeout != 0 {
		clientCfg.RequestTimeout = cfg.RequestTimeout
	}
	if cfg.ProtocolLog != "" {
		fl, err := e4log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			return fmt.Errorf("failed to open protocol log: %w", err)
		}
		defer fl.Close()
		clientCfg.Logger = fl
	}

	c, err := client.DialWithConfig(ctx, cfg.Address, clientCfg)
	if err != nil {
		return err
	}
	defer c.Close()
	log.Printf("Connected to %s", cfg.Address)

	uid, err := pickDevice(ctx, c, cfg.DeviceUID)
	if err != nil {
		return err
	}

	session, err := c.Connect(ctx, uid)
	if err != nil {
		return fmt.Errorf("failed to open session with %s: %w", uid, err)
	}
	defer session.Close()
	log.Printf("Session open with device %s", uid)

	for _, stream := range cfg.StreamIDs() {
		if _, err := session.Subscribe(ctx, stream, subscription.ConsumerFunc(printSample)); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", stream, err)
		}
		log.Printf("Subscribed to %s", stream)
	}

	<-ctx.Done()
	log.Printf("Shutting down")
	return nil
}

// pickDevice resolves the configured UID, or falls back to the first
// allowed device the server reports.
func pickDevice(ctx context.Context, c *client.Client, uid string) (string, error) {
	devices, err := c.ListConnectedDevices(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list devices: %w", err)
	}
	if len(devices) == 0 {
		return "", fmt.Errorf("no devices connected to the server")
	}

	if uid != "" {
		for _, d := range devices {
			if d.UID == uid {
				return uid, nil
			}
		}
		return "", fmt.Errorf("device %s not found in server device list", uid)
	}

	for _, d := range devices {
		if d.Allowed {
			return d.UID, nil
		}
	}
	return "", fmt.Errorf("no allowed device available")
}

func printSample(s wire.Sample) {
	fmt.Fprintf(os.Stdout, "%s\t%.3f\t%v\n", s.Stream, s.Timestamp, s.Values)
}
