// Command e4-shell is an interactive shell for exploring an E4
// streaming server.
//
// Usage:
//
//	e4-shell [flags]
//
// Flags:
//
//	-addr string       Server address (default "127.0.0.1:28000")
//	-protocol-log string  Write protocol events to a CBOR log file
//
// Commands:
//
//	list                     - List devices connected to the server
//	discover                 - List devices visible over BTLE
//	btle-connect <uid> [timeout]  - Connect a device over BTLE
//	btle-disconnect <uid>    - Disconnect a device from BTLE
//	connect <uid>            - Open a session with a device
//	disconnect               - Close the device session
//	subscribe <stream>       - Subscribe to a stream (acc, bvp, gsr, tmp, ibi, hr, bat, tag)
//	unsubscribe <stream>     - Unsubscribe from a stream
//	pause <on|off>           - Pause or resume the sample flow
//	raw <line>               - Send a raw protocol line
//	quit                     - Exit
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/e4-protocol/e4-go/pkg/client"
	e4log "github.com/e4-protocol/e4-go/pkg/log"
	"github.com/e4-protocol/e4-go/pkg/subscription"
	"github.com/e4-protocol/e4-go/pkg/wire"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:28000", "server address")
	protocolLog := flag.String("protocol-log", "", "write protocol events to a CBOR log file")
	flag.Parse()

	cfg := client.DefaultConfig()
	if *protocolLog != "" {
		fl, err := e4log.NewFileLogger(*protocolLog)
		if err != nil {
			log.Fatalf("Failed to open protocol log: %v", err)
		}
		defer fl.Close()
		cfg.Logger = fl
	}

	ctx := context.Background()
	c, err := client.DialWithConfig(ctx, *addr, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", *addr, err)
	}
	defer c.Close()

	sh, err := newShell(c)
	if err != nil {
		log.Fatalf("Failed to start shell: %v", err)
	}
	fmt.Printf("Connected to %s\n", *addr)
	sh.run(ctx)
}

// shell holds the interactive state: the client, the open device
// session, and the subscription token per stream.
type shell struct {
	client  *client.Client
	rl      *readline.Instance
	session *client.DeviceConnection
	tokens  map[wire.StreamID]subscription.Token
}

func newShell(c *client.Client) (*shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "e4> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &shell{
		client: c,
		rl:     rl,
		tokens: make(map[wire.StreamID]subscription.Token),
	}, nil
}

func (s *shell) run(ctx context.Context) {
	defer s.rl.Close()

	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "list", "ls":
			s.cmdList(ctx)

		case "discover":
			s.cmdDiscover(ctx)

		case "btle-connect":
			s.cmdBTLEConnect(ctx, args)

		case "btle-disconnect":
			s.cmdBTLEDisconnect(ctx, args)

		case "connect":
			s.cmdConnect(ctx, args)

		case "disconnect":
			s.cmdDisconnect()

		case "subscribe", "sub":
			s.cmdSubscribe(ctx, args)

		case "unsubscribe", "unsub":
			s.cmdUnsubscribe(ctx, args)

		case "pause":
			s.cmdPause(ctx, args)

		case "raw":
			s.cmdRaw(input)

		case "quit", "exit", "q":
			if s.session != nil {
				s.session.Close()
			}
			fmt.Fprintln(s.rl.Stdout(), "Bye.")
			return

		default:
			fmt.Fprintf(s.rl.Stderr(), "Unknown command %q (try 'help')\n", cmd)
		}
	}
}

func (s *shell) printHelp() {
	fmt.Fprint(s.rl.Stdout(), `Commands:
  list                          List devices connected to the server
  discover                      List devices visible over BTLE
  btle-connect <uid> [timeout]  Connect a device over BTLE
  btle-disconnect <uid>         Disconnect a device from BTLE
  connect <uid>                 Open a session with a device
  disconnect                    Close the device session
  subscribe <stream>            Subscribe (acc bvp gsr tmp ibi hr bat tag)
  unsubscribe <stream>          Unsubscribe
  pause <on|off>                Pause or resume the sample flow
  raw <line>                    Send a raw protocol line
  quit                          Exit
`)
}

func (s *shell) cmdList(ctx context.Context) {
	devices, err := s.client.ListConnectedDevices(ctx)
	if err != nil {
		fmt.Fprintf(s.rl.Stderr(), "Error: %v\n", err)
		return
	}
	s.printDevices(devices)
}

func (s *shell) cmdDiscover(ctx context.Context) {
	devices, err := s.client.DiscoverDevices(ctx)
	if err != nil {
		fmt.Fprintf(s.rl.Stderr(), "Error: %v\n", err)
		return
	}
	s.printDevices(devices)
}

func (s *shell) printDevices(devices []wire.Device) {
	if len(devices) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "No devices.")
		return
	}
	for _, d := range devices {
		fmt.Fprintf(s.rl.Stdout(), "  %s\n", d)
	}
}

func (s *shell) cmdBTLEConnect(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stderr(), "Usage: btle-connect <uid> [timeout-seconds]")
		return
	}
	timeout := -1
	if len(args) > 1 {
		t, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(s.rl.Stderr(), "Bad timeout %q\n", args[1])
			return
		}
		timeout = t
	}
	if err := s.client.ConnectBTLE(ctx, args[0], timeout); err != nil {
		fmt.Fprintf(s.rl.Stderr(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Device %s connected over BTLE.\n", args[0])
}

func (s *shell) cmdBTLEDisconnect(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stderr(), "Usage: btle-disconnect <uid>")
		return
	}
	if err := s.client.DisconnectBTLE(ctx, args[0]); err != nil {
		fmt.Fprintf(s.rl.Stderr(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Device %s disconnected from BTLE.\n", args[0])
}

func (s *shell) cmdConnect(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stderr(), "Usage: connect <uid>")
		return
	}
	if s.session != nil {
		fmt.Fprintln(s.rl.Stderr(), "A session is already open; 'disconnect' first.")
		return
	}
	session, err := s.client.Connect(ctx, args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stderr(), "Error: %v\n", err)
		return
	}
	s.session = session
	fmt.Fprintf(s.rl.Stdout(), "Session open with %s.\n", args[0])
}

func (s *shell) cmdDisconnect() {
	if s.session == nil {
		fmt.Fprintln(s.rl.Stderr(), "No session open.")
		return
	}
	s.session.Close()
	s.session = nil
	s.tokens = make(map[wire.StreamID]subscription.Token)
	fmt.Fprintln(s.rl.Stdout(), "Session closed.")
}

func (s *shell) cmdSubscribe(ctx context.Context, args []string) {
	if s.session == nil {
		fmt.Fprintln(s.rl.Stderr(), "No session open; 'connect <uid>' first.")
		return
	}
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stderr(), "Usage: subscribe <stream>")
		return
	}
	stream, ok := wire.ParseStreamName(args[0])
	if !ok {
		fmt.Fprintf(s.rl.Stderr(), "Unknown stream %q\n", args[0])
		return
	}
	if _, exists := s.tokens[stream]; exists {
		fmt.Fprintf(s.rl.Stderr(), "Already subscribed to %s.\n", stream)
		return
	}

	out := s.rl.Stdout()
	token, err := s.session.Subscribe(ctx, stream, subscription.ConsumerFunc(func(sample wire.Sample) {
		fmt.Fprintf(out, "%s %.3f %v\n", sample.Stream, sample.Timestamp, sample.Values)
	}))
	if err != nil {
		fmt.Fprintf(s.rl.Stderr(), "Error: %v\n", err)
		return
	}
	s.tokens[stream] = token
	fmt.Fprintf(out, "Subscribed to %s.\n", stream)
}

func (s *shell) cmdUnsubscribe(ctx context.Context, args []string) {
	if s.session == nil {
		fmt.Fprintln(s.rl.Stderr(), "No session open.")
		return
	}
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stderr(), "Usage: unsubscribe <stream>")
		return
	}
	stream, ok := wire.ParseStreamName(args[0])
	if !ok {
		fmt.Fprintf(s.rl.Stderr(), "Unknown stream %q\n", args[0])
		return
	}
	token, exists := s.tokens[stream]
	if !exists {
		fmt.Fprintf(s.rl.Stderr(), "Not subscribed to %s.\n", stream)
		return
	}
	if err := s.session.Unsubscribe(ctx, token); err != nil {
		fmt.Fprintf(s.rl.Stderr(), "Error: %v\n", err)
		return
	}
	delete(s.tokens, stream)
	fmt.Fprintf(s.rl.Stdout(), "Unsubscribed from %s.\n", stream)
}

func (s *shell) cmdPause(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.rl.Stderr(), "Usage: pause <on|off>")
		return
	}
	var on bool
	switch strings.ToLower(args[0]) {
	case "on":
		on = true
	case "off":
		on = false
	default:
		fmt.Fprintln(s.rl.Stderr(), "Usage: pause <on|off>")
		return
	}
	if err := s.client.Pause(ctx, on); err != nil {
		fmt.Fprintf(s.rl.Stderr(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "Pause %s.\n", wire.OnOff(on))
}

// cmdRaw sends everything after "raw " verbatim. Replies arrive via
// the read loop; if the line is a command the correlator is not
// waiting for, the reply is dropped, so this is mainly useful for
// probing unknown verbs.
func (s *shell) cmdRaw(input string) {
	line := strings.TrimSpace(strings.TrimPrefix(input, "raw"))
	if line == "" {
		fmt.Fprintln(s.rl.Stderr(), "Usage: raw <line>")
		return
	}
	if err := s.client.WriteRawLine(line); err != nil {
		fmt.Fprintf(s.rl.Stderr(), "Error: %v\n", err)
	}
}
