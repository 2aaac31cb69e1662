package commands

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/e4-protocol/e4-go/pkg/log"
)

// writeTestLog creates a small log file with a known mix of events and
// returns its path.
func writeTestLog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.cborlog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	defer logger.Close()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ok := true
	st := 12.5
	vc := 1

	logger.Log(log.Event{
		Timestamp:    base,
		ConnectionID: "conn-aaaa-bbbb",
		Direction:    log.DirectionOut,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		Line:         log.NewLineEvent("device_subscribe gsr ON"),
	})
	logger.Log(log.Event{
		Timestamp:    base.Add(time.Second),
		ConnectionID: "conn-aaaa-bbbb",
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		Message: &log.MessageEvent{
			Type:    log.MessageTypeStatusReply,
			Command: "device_subscribe",
			Stream:  "gsr",
			OK:      &ok,
		},
	})
	logger.Log(log.Event{
		Timestamp:    base.Add(2 * time.Second),
		ConnectionID: "conn-aaaa-bbbb",
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryMessage,
		DeviceUID:    "A123B4",
		Message: &log.MessageEvent{
			Type:       log.MessageTypeSample,
			Stream:     "GSR",
			SampleTime: &st,
			ValueCount: &vc,
		},
	})
	logger.Log(log.Event{
		Timestamp:    base.Add(3 * time.Second),
		ConnectionID: "conn-aaaa-bbbb",
		Direction:    log.DirectionIn,
		Layer:        log.LayerWire,
		Category:     log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerWire,
			Message: "unsolicited reply dropped",
			Context: "R pause ON",
		},
	})

	return path
}

func TestRunView(t *testing.T) {
	path := writeTestLog(t)

	var out bytes.Buffer
	if err := RunView(path, ViewFilter{}, &out); err != nil {
		t.Fatalf("RunView: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"conn-aaa",
		"device_subscribe gsr ON",
		"Stream: GSR",
		"SampleTime: 12.500000",
		"unsolicited reply dropped",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("view output missing %q\n%s", want, text)
		}
	}
}

func TestRunViewFiltered(t *testing.T) {
	path := writeTestLog(t)

	layer := log.LayerTransport
	var out bytes.Buffer
	if err := RunView(path, ViewFilter{Layer: &layer}, &out); err != nil {
		t.Fatalf("RunView: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "device_subscribe gsr ON") {
		t.Errorf("transport line missing from filtered view:\n%s", text)
	}
	if strings.Contains(text, "SampleTime") {
		t.Errorf("wire event leaked into transport-only view:\n%s", text)
	}
}

func TestRunExportJSONL(t *testing.T) {
	path := writeTestLog(t)
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport: %v", err)
	}

	data := readFile(t, out)
	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 4 {
		t.Errorf("exported %d JSONL lines, want 4", len(lines))
	}
}

func TestRunExportCSV(t *testing.T) {
	path := writeTestLog(t)
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport: %v", err)
	}

	data := readFile(t, out)
	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 5 { // header + 4 events
		t.Errorf("exported %d CSV lines, want 5", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,connection_id") {
		t.Errorf("unexpected CSV header: %s", lines[0])
	}
}

func TestRunExportUnknownFormat(t *testing.T) {
	path := writeTestLog(t)
	if err := RunExport(path, "xml", ""); err == nil {
		t.Error("RunExport accepted unknown format")
	}
}

func TestRunFilter(t *testing.T) {
	path := writeTestLog(t)
	out := filepath.Join(t.TempDir(), "filtered.cborlog")

	opts := FilterOptions{
		Output:   out,
		Category: "error",
	}
	if err := RunFilter(path, opts); err != nil {
		t.Fatalf("RunFilter: %v", err)
	}

	reader, err := log.NewReader(out)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer reader.Close()

	var count int
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if event.Category != log.CategoryError {
			t.Errorf("non-error event in filtered output: %+v", event)
		}
		count++
	}
	if count != 1 {
		t.Errorf("filtered %d events, want 1", count)
	}
}

func TestRunStats(t *testing.T) {
	path := writeTestLog(t)

	var out bytes.Buffer
	if err := RunStats(path, &out); err != nil {
		t.Fatalf("RunStats: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Total Events: 4",
		"TRANSPORT:",
		"WIRE:",
		"GSR:",
		"Connections: 1",
		"Errors: 1",
		"Device: A123B4",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("stats output missing %q\n%s", want, text)
		}
	}
}

func TestParseFlags(t *testing.T) {
	if _, err := ParseLayerFlag("bogus"); err == nil {
		t.Error("ParseLayerFlag accepted bogus layer")
	}
	if _, err := ParseDirectionFlag("sideways"); err == nil {
		t.Error("ParseDirectionFlag accepted bogus direction")
	}
	if _, err := ParseCategoryFlag("snapshot"); err == nil {
		t.Error("ParseCategoryFlag accepted bogus category")
	}

	l, err := ParseLayerFlag("Session")
	if err != nil || l != log.LayerSession {
		t.Errorf("ParseLayerFlag(Session) = %v, %v", l, err)
	}
	d, err := ParseDirectionFlag("OUT")
	if err != nil || d != log.DirectionOut {
		t.Errorf("ParseDirectionFlag(OUT) = %v, %v", d, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}
