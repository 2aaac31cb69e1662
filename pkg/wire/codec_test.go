package wire

import (
	"math"
	"testing"
)

func TestDecodeStatusReplies(t *testing.T) {
	tests := []struct {
		name string
		line string
		want StatusReply
	}{
		{
			name: "connect ok",
			line: "R device_connect OK",
			want: StatusReply{Command: CmdDeviceConnect, OK: true},
		},
		{
			name: "disconnect ok",
			line: "R device_disconnect OK",
			want: StatusReply{Command: CmdDeviceDisconnect, OK: true},
		},
		{
			name: "btle error with reason",
			line: "R device_connect_btle ERR could not connect device over BTLE",
			want: StatusReply{
				Command: CmdDeviceConnectBTLE,
				Reason:  "could not connect device over BTLE",
			},
		},
		{
			name: "subscribe echoes stream token",
			line: "R device_subscribe acc OK",
			want: StatusReply{Command: CmdDeviceSubscribe, StreamToken: "acc", OK: true},
		},
		{
			name: "subscribe error keeps reason",
			line: "R device_subscribe gsr ERR device not connected",
			want: StatusReply{
				Command:     CmdDeviceSubscribe,
				StreamToken: "gsr",
				Reason:      "device not connected",
			},
		},
		{
			name: "trailing crlf stripped",
			line: "R device_connect OK\r\n",
			want: StatusReply{Command: CmdDeviceConnect, OK: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, ok := Decode(tt.line).(StatusReply)
			if !ok {
				t.Fatalf("Decode(%q) = %T, want StatusReply", tt.line, Decode(tt.line))
			}
			if reply != tt.want {
				t.Errorf("Decode(%q) = %+v, want %+v", tt.line, reply, tt.want)
			}
		})
	}
}

func TestDecodePauseAlwaysSucceeds(t *testing.T) {
	// The server echoes ON/OFF for pause instead of OK/ERR.
	for _, line := range []string{"R pause ON", "R pause OFF"} {
		reply, ok := Decode(line).(StatusReply)
		if !ok {
			t.Fatalf("Decode(%q): want StatusReply", line)
		}
		if reply.Command != CmdPause || !reply.OK {
			t.Errorf("Decode(%q) = %+v, want successful pause reply", line, reply)
		}
	}
}

func TestDecodeQueryReplies(t *testing.T) {
	line := "R device_list 2 | A123 E4_2.1 allowed | B456 E4_2.1 not_allowed"
	reply, ok := Decode(line).(QueryReply)
	if !ok {
		t.Fatalf("Decode(%q): want QueryReply", line)
	}
	if reply.Command != CmdDeviceList {
		t.Errorf("Command = %v, want device_list", reply.Command)
	}
	if reply.Data != "2 | A123 E4_2.1 allowed | B456 E4_2.1 not_allowed" {
		t.Errorf("Data = %q", reply.Data)
	}

	if _, ok := Decode("R device_discover_list 0").(QueryReply); !ok {
		t.Error("device_discover_list reply should decode as QueryReply")
	}
}

func TestDecodeSamples(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		stream StreamID
		ts     float64
		values []float64
	}{
		{"gsr", "E4_Gsr 123345627891.123 3.129", StreamGSR, 123345627891.123, []float64{3.129}},
		{"acc three axis", "E4_Acc 12.25 51.0 -2.0 19.0", StreamACC, 12.25, []float64{51, -2, 19}},
		{"tag no values", "E4_Tag 12.5", StreamTag, 12.5, nil},
		{"battery", "E4_Battery 17.0 0.87", StreamBattery, 17.0, []float64{0.87}},
		{"hr", "E4_Hr 100.5 71.2", StreamHR, 100.5, []float64{71.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sample, ok := Decode(tt.line).(Sample)
			if !ok {
				t.Fatalf("Decode(%q) = %T, want Sample", tt.line, Decode(tt.line))
			}
			if sample.Stream != tt.stream {
				t.Errorf("Stream = %v, want %v", sample.Stream, tt.stream)
			}
			if sample.Timestamp != tt.ts {
				t.Errorf("Timestamp = %v, want %v", sample.Timestamp, tt.ts)
			}
			if len(sample.Values) != len(tt.values) {
				t.Fatalf("Values = %v, want %v", sample.Values, tt.values)
			}
			for i, v := range tt.values {
				if math.Abs(sample.Values[i]-v) > 1e-9 {
					t.Errorf("Values[%d] = %v, want %v", i, sample.Values[i], v)
				}
			}
		})
	}
}

func TestDecodeMalformedLinesAreUnknown(t *testing.T) {
	// Decoding must be total: none of these may panic or error, they
	// all classify as Unknown.
	lines := []string{
		"",
		"\r\n",
		"R",
		"R bogus_verb OK",
		"R device_connect MAYBE",
		"garbage line from nowhere",
		"E4_Nope 12.5 1.0",
		"E4_Gsr",
		"E4_Gsr notatimestamp 3.1",
		"E4_Gsr 12.5 3.1 banana",
		"E4_Acc 12.5 1.0 NaN-ish junk",
		"| | |",
		"OK",
	}

	for _, line := range lines {
		msg := Decode(line)
		if _, ok := msg.(Unknown); !ok {
			t.Errorf("Decode(%q) = %T, want Unknown", line, msg)
		}
	}
}

func TestDecodeUnknownKeepsLine(t *testing.T) {
	msg := Decode("strange noise\r\n")
	unknown, ok := msg.(Unknown)
	if !ok {
		t.Fatalf("Decode = %T, want Unknown", msg)
	}
	if unknown.Line != "strange noise" {
		t.Errorf("Line = %q, want stripped original", unknown.Line)
	}
}
