package transport

import (
	"bufio"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/e4-protocol/e4-go/pkg/log"
)

// pipeConn returns a Conn wrapping one end of an in-memory pipe and
// the raw peer end for the test to drive.
func pipeConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	conn := NewConn(client)
	t.Cleanup(func() {
		conn.Close()
		server.Close()
	})
	return conn, server
}

func TestWriteLineAppendsCRLF(t *testing.T) {
	conn, server := pipeConn(t)

	lines := make(chan string, 1)
	go func() {
		r := bufio.NewReader(server)
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		lines <- line
	}()

	if err := conn.WriteLine("device_list"); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}

	select {
	case got := <-lines:
		if got != "device_list\r\n" {
			t.Errorf("wrote %q, want %q", got, "device_list\r\n")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for line")
	}
}

func TestWriteLineKeepsExistingCRLF(t *testing.T) {
	conn, server := pipeConn(t)

	lines := make(chan string, 1)
	go func() {
		r := bufio.NewReader(server)
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		lines <- line
	}()

	if err := conn.WriteLine("pause ON\r\n"); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}

	select {
	case got := <-lines:
		if got != "pause ON\r\n" {
			t.Errorf("wrote %q, want %q", got, "pause ON\r\n")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for line")
	}
}

func TestReadLineStripsTerminator(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"crlf", "R device_list 1 | A123 Empatica_E4\r\n", "R device_list 1 | A123 Empatica_E4"},
		{"bare lf", "E4_Gsr 12.5 0.45\n", "E4_Gsr 12.5 0.45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, server := pipeConn(t)

			go func() {
				server.Write([]byte(tt.raw))
			}()

			got, err := conn.ReadLine()
			if err != nil {
				t.Fatalf("ReadLine: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadLine = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadLineUnblockedByClose(t *testing.T) {
	conn, _ := pipeConn(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := conn.ReadLine()
		errCh <- err
	}()

	// Give the reader time to block.
	time.Sleep(10 * time.Millisecond)

	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrConnectionClosed) {
			t.Errorf("ReadLine error = %v, want ErrConnectionClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("ReadLine did not unblock after Close")
	}
}

func TestWriteLineAfterClose(t *testing.T) {
	conn, _ := pipeConn(t)

	if err := conn.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := conn.WriteLine("device_list"); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("WriteLine error = %v, want ErrConnectionClosed", err)
	}
	// Close must be idempotent.
	if err := conn.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(event log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureLogger) snapshot() []log.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]log.Event(nil), c.events...)
}

func TestConnLogsTraffic(t *testing.T) {
	conn, server := pipeConn(t)

	logger := &captureLogger{}
	conn.SetLogger(logger, "conn-test")

	go func() {
		r := bufio.NewReader(server)
		r.ReadString('\n')
		server.Write([]byte("R pause ON\r\n"))
	}()

	if err := conn.WriteLine("pause ON"); err != nil {
		t.Fatalf("WriteLine: %v", err)
	}
	if _, err := conn.ReadLine(); err != nil {
		t.Fatalf("ReadLine: %v", err)
	}
	conn.Close()

	events := logger.snapshot()
	if len(events) != 3 {
		t.Fatalf("logged %d events, want 3", len(events))
	}

	out := events[0]
	if out.Direction != log.DirectionOut || out.Line == nil || out.Line.Text != "pause ON" {
		t.Errorf("unexpected outbound event: %+v", out)
	}
	in := events[1]
	if in.Direction != log.DirectionIn || in.Line == nil || in.Line.Text != "R pause ON" {
		t.Errorf("unexpected inbound event: %+v", in)
	}
	state := events[2]
	if state.Category != log.CategoryState || state.StateChange == nil {
		t.Errorf("unexpected close event: %+v", state)
	}
	for _, ev := range events {
		if ev.ConnectionID != "conn-test" {
			t.Errorf("event missing connection ID: %+v", ev)
		}
	}
}
