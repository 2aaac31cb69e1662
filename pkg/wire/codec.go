package wire

import (
	"strconv"
	"strings"
)

// replyMarker prefixes every command reply from the server.
const replyMarker = "R"

// Decode classifies a single incoming line. It is pure and total: any
// line that does not parse as a command reply or a data sample comes
// back as Unknown, never as an error. Trailing CR/LF is stripped
// before classification.
func Decode(line string) Message {
	line = strings.TrimRight(line, "\r\n")

	head, rest := cutToken(line)
	switch {
	case head == replyMarker:
		return decodeReply(line, rest)
	case strings.HasPrefix(head, "E4_"):
		return decodeSample(line, head, rest)
	default:
		return Unknown{Line: line}
	}
}

// decodeReply parses the portion after the "R" marker.
func decodeReply(line, rest string) Message {
	verb, rest := cutToken(rest)
	cmd, ok := CommandFromVerb(verb)
	if !ok {
		return Unknown{Line: line}
	}

	if cmd.IsQuery() {
		// Query replies carry a payload instead of OK/ERR.
		return QueryReply{Command: cmd, Data: rest}
	}

	reply := StatusReply{Command: cmd}

	switch cmd {
	case CmdDeviceSubscribe:
		// Subscription replies echo the stream token before the
		// status: "R device_subscribe acc OK".
		reply.StreamToken, rest = cutToken(rest)
	case CmdPause:
		// Pause echoes ON or OFF instead of a status. The server
		// never reports an error for it.
		reply.OK = true
		return reply
	}

	status, rest := cutToken(rest)
	switch status {
	case "OK":
		reply.OK = true
	case "ERR":
		reply.Reason = rest
	default:
		return Unknown{Line: line}
	}
	return reply
}

// decodeSample parses a data line: "<E4_Prefix> <timestamp> <values...>".
func decodeSample(line, prefix, rest string) Message {
	stream, ok := StreamFromPrefix(prefix)
	if !ok {
		return Unknown{Line: line}
	}

	tsToken, rest := cutToken(rest)
	ts, err := strconv.ParseFloat(tsToken, 64)
	if err != nil {
		return Unknown{Line: line}
	}

	var values []float64
	for rest != "" {
		var tok string
		tok, rest = cutToken(rest)
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Unknown{Line: line}
		}
		values = append(values, v)
	}

	return Sample{Stream: stream, Timestamp: ts, Values: values}
}

// cutToken splits off the first space-separated token, trimming any
// extra spaces before the remainder.
func cutToken(s string) (token, rest string) {
	token, rest, _ = strings.Cut(s, " ")
	return token, strings.TrimLeft(rest, " ")
}
