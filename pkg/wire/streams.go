package wire

// StreamID identifies one of the physical signal streams the E4
// streaming server can deliver. The set is fixed by the server.
type StreamID uint8

const (
	// StreamACC is the 3-axis accelerometer stream (32 Hz).
	StreamACC StreamID = iota

	// StreamBVP is the blood volume pulse stream (64 Hz).
	StreamBVP

	// StreamGSR is the galvanic skin response stream (4 Hz).
	StreamGSR

	// StreamTemp is the skin temperature stream (4 Hz).
	StreamTemp

	// StreamIBI is the interbeat interval stream (event-driven).
	StreamIBI

	// StreamHR is the derived heart rate stream (event-driven).
	StreamHR

	// StreamBattery is the battery level stream.
	StreamBattery

	// StreamTag is the tag button press stream (event-driven).
	StreamTag
)

// streamDef ties a stream to its command token (the abbreviation used
// in device_subscribe) and the prefix the server uses on data lines.
type streamDef struct {
	id     StreamID
	token  string
	prefix string
}

// IBI and HR share the subscribe token: the server cannot deliver one
// without the other.
var streamDefs = []streamDef{
	{StreamACC, "acc", "E4_Acc"},
	{StreamBVP, "bvp", "E4_Bvp"},
	{StreamGSR, "gsr", "E4_Gsr"},
	{StreamTemp, "tmp", "E4_Temp"},
	{StreamIBI, "ibi", "E4_Ibi"},
	{StreamHR, "ibi", "E4_Hr"},
	{StreamBattery, "bat", "E4_Battery"},
	{StreamTag, "tag", "E4_Tag"},
}

var (
	prefixToStream = make(map[string]StreamID, len(streamDefs))
	idToDef        = make(map[StreamID]streamDef, len(streamDefs))
)

func init() {
	for _, def := range streamDefs {
		prefixToStream[def.prefix] = def.id
		idToDef[def.id] = def
	}
}

// String returns the stream name.
func (s StreamID) String() string {
	switch s {
	case StreamACC:
		return "ACC"
	case StreamBVP:
		return "BVP"
	case StreamGSR:
		return "GSR"
	case StreamTemp:
		return "TEMP"
	case StreamIBI:
		return "IBI"
	case StreamHR:
		return "HR"
	case StreamBattery:
		return "BAT"
	case StreamTag:
		return "TAG"
	default:
		return "UNKNOWN"
	}
}

// SubscribeToken returns the abbreviation used as the device_subscribe
// argument for this stream.
func (s StreamID) SubscribeToken() string {
	return idToDef[s].token
}

// Prefix returns the prefix the server puts on data lines for this
// stream.
func (s StreamID) Prefix() string {
	return idToDef[s].prefix
}

// IsValid reports whether s is one of the defined streams.
func (s StreamID) IsValid() bool {
	_, ok := idToDef[s]
	return ok
}

// AllStreams returns every defined stream in declaration order.
func AllStreams() []StreamID {
	ids := make([]StreamID, 0, len(streamDefs))
	for _, def := range streamDefs {
		ids = append(ids, def.id)
	}
	return ids
}

// StreamFromPrefix resolves a data line prefix (e.g. "E4_Gsr") to its
// stream.
func StreamFromPrefix(prefix string) (StreamID, bool) {
	id, ok := prefixToStream[prefix]
	return id, ok
}

// StreamsSharingToken returns every stream that subscribes with the
// same token as s. For most streams this is just s itself; for IBI and
// HR it is both, since the server turns them on and off together.
func StreamsSharingToken(s StreamID) []StreamID {
	token := s.SubscribeToken()
	var ids []StreamID
	for _, def := range streamDefs {
		if def.token == token {
			ids = append(ids, def.id)
		}
	}
	return ids
}

// ParseStreamName resolves a human-entered stream name to a StreamID.
// It accepts the canonical names (ACC, BVP, ...) as well as the
// subscribe tokens and data prefixes, case-insensitively for names and
// tokens.
func ParseStreamName(name string) (StreamID, bool) {
	for _, def := range streamDefs {
		if equalFold(name, def.id.String()) || equalFold(name, def.token) || name == def.prefix {
			return def.id, true
		}
	}
	return 0, false
}

// equalFold is an ASCII-only case-insensitive comparison; stream names
// and tokens are plain ASCII.
func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
