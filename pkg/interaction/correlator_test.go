package interaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/e4-protocol/e4-go/pkg/transport"
	"github.com/e4-protocol/e4-go/pkg/wire"
)

// fakeSender records written lines and can invoke a callback for each,
// letting tests inject the server's reply.
type fakeSender struct {
	mu     sync.Mutex
	lines  []string
	onLine func(line string)
	err    error
}

func (s *fakeSender) WriteLine(line string) error {
	s.mu.Lock()
	s.lines = append(s.lines, line)
	cb := s.onLine
	err := s.err
	s.mu.Unlock()

	if err != nil {
		return err
	}
	if cb != nil {
		cb(line)
	}
	return nil
}

func (s *fakeSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func TestExecuteOK(t *testing.T) {
	sender := &fakeSender{}
	c := NewCorrelator(sender)
	sender.onLine = func(string) {
		c.Resolve(wire.StatusReply{Command: wire.CmdDeviceConnect, OK: true})
	}

	if err := c.Execute(context.Background(), wire.CmdDeviceConnect, "A123"); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	sent := sender.sent()
	if len(sent) != 1 || sent[0] != "device_connect A123\r\n" {
		t.Errorf("sent = %q", sent)
	}
}

func TestExecuteServerRefusal(t *testing.T) {
	sender := &fakeSender{}
	c := NewCorrelator(sender)
	sender.onLine = func(string) {
		c.Resolve(wire.StatusReply{
			Command: wire.CmdDeviceConnectBTLE,
			OK:      false,
			Reason:  "The device is not available",
		})
	}

	err := c.Execute(context.Background(), wire.CmdDeviceConnectBTLE, "A123", "30")

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Execute error = %v, want *CommandError", err)
	}
	if cmdErr.Command != wire.CmdDeviceConnectBTLE {
		t.Errorf("Command = %v, want device_connect_btle", cmdErr.Command)
	}
	if cmdErr.Reason != "The device is not available" {
		t.Errorf("Reason = %q", cmdErr.Reason)
	}
}

func TestExecuteSubscribeReply(t *testing.T) {
	sender := &fakeSender{}
	c := NewCorrelator(sender)
	sender.onLine = func(string) {
		c.Resolve(wire.StatusReply{
			Command:     wire.CmdDeviceSubscribe,
			StreamToken: "gsr",
			OK:          true,
		})
	}

	if err := c.Execute(context.Background(), wire.CmdDeviceSubscribe, "gsr", "ON"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestQueryReturnsPayload(t *testing.T) {
	sender := &fakeSender{}
	c := NewCorrelator(sender)
	sender.onLine = func(string) {
		c.Resolve(wire.QueryReply{
			Command: wire.CmdDeviceList,
			Data:    "1 | A123 Empatica_E4",
		})
	}

	data, err := c.Query(context.Background(), wire.CmdDeviceList)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if data != "1 | A123 Empatica_E4" {
		t.Errorf("data = %q", data)
	}
}

func TestReplyCommandMismatch(t *testing.T) {
	sender := &fakeSender{}
	c := NewCorrelator(sender)
	sender.onLine = func(string) {
		c.Resolve(wire.StatusReply{Command: wire.CmdPause, OK: true})
	}

	err := c.Execute(context.Background(), wire.CmdDeviceConnect, "A123")

	var protoErr *ProtocolError
	if !errors.As(err, &protoErr) {
		t.Fatalf("Execute error = %v, want *ProtocolError", err)
	}
	if protoErr.Command != wire.CmdDeviceConnect {
		t.Errorf("Command = %v, want device_connect", protoErr.Command)
	}
}

func TestQueryRejectsStatusReply(t *testing.T) {
	sender := &fakeSender{}
	c := NewCorrelator(sender)
	sender.onLine = func(string) {
		c.Resolve(wire.StatusReply{Command: wire.CmdDeviceList, OK: false, Reason: "not allowed"})
	}

	_, err := c.Query(context.Background(), wire.CmdDeviceList)

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("Query error = %v, want *CommandError", err)
	}
}

func TestCloseUnblocksWaiter(t *testing.T) {
	sender := &fakeSender{}
	c := NewCorrelator(sender)

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Execute(context.Background(), wire.CmdDeviceList)
	}()

	// Wait for the command to hit the wire.
	deadline := time.Now().Add(time.Second)
	for len(sender.sent()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("command never sent")
		}
		time.Sleep(time.Millisecond)
	}

	c.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, transport.ErrConnectionClosed) {
			t.Errorf("Execute error = %v, want ErrConnectionClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Execute did not unblock after Close")
	}

	// Subsequent commands fail immediately.
	if err := c.Execute(context.Background(), wire.CmdDeviceList); !errors.Is(err, transport.ErrConnectionClosed) {
		t.Errorf("Execute after Close = %v, want ErrConnectionClosed", err)
	}
	// Close is idempotent.
	c.Close()
}

func TestRequestTimeout(t *testing.T) {
	sender := &fakeSender{}
	c := NewCorrelator(sender)
	c.SetTimeout(10 * time.Millisecond)

	err := c.Execute(context.Background(), wire.CmdDeviceList)
	if !errors.Is(err, ErrRequestTimeout) {
		t.Errorf("Execute error = %v, want ErrRequestTimeout", err)
	}
}

func TestContextCancellation(t *testing.T) {
	sender := &fakeSender{}
	c := NewCorrelator(sender)
	c.SetTimeout(0)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Execute(ctx, wire.CmdDeviceList)
	}()

	deadline := time.Now().Add(time.Second)
	for len(sender.sent()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("command never sent")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Execute error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Execute did not unblock after cancel")
	}
}

func TestUnsolicitedReplyDropped(t *testing.T) {
	c := NewCorrelator(&fakeSender{})

	if c.Resolve(wire.StatusReply{Command: wire.CmdPause, OK: true}) {
		t.Error("Resolve accepted a reply with no command in flight")
	}
}

func TestCallersSerialized(t *testing.T) {
	var inFlight int
	var maxInFlight int
	var mu sync.Mutex

	sender := &fakeSender{}
	c := NewCorrelator(sender)
	sender.onLine = func(string) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		// Simulate server latency before replying.
		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		c.Resolve(wire.StatusReply{Command: wire.CmdPause, OK: true})
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Execute(context.Background(), wire.CmdPause, "ON"); err != nil {
				t.Errorf("Execute: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxInFlight != 1 {
		t.Errorf("max in-flight commands = %d, want 1", maxInFlight)
	}
	if got := len(sender.sent()); got != 8 {
		t.Errorf("sent %d commands, want 8", got)
	}
}
