package log

import (
	"time"
)

// MaxLogLineSize is the maximum raw line length included in log
// events. Longer lines are truncated to bound event size.
const MaxLogLineSize = 4096

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the server address (IP:port).
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// DeviceUID is the wearable's identifier (set once a device
	// session is open).
	DeviceUID string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Line        *LineEvent        `cbor:"8,keyasint,omitempty"`  // Transport layer
	Message     *MessageEvent     `cbor:"9,keyasint,omitempty"`  // Wire layer (decoded)
	StateChange *StateChangeEvent `cbor:"10,keyasint,omitempty"` // Session state
	Error       *ErrorEventData   `cbor:"11,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the raw line layer.
	LayerTransport Layer = 0
	// LayerWire is the message classification layer (decoded lines).
	LayerWire Layer = 1
	// LayerSession is the client/session layer.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a protocol message (command, reply or sample).
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LineEvent captures one raw protocol line at the transport layer.
type LineEvent struct {
	// Size is the full line length in bytes, before truncation.
	Size int `cbor:"1,keyasint"`

	// Text is the line content (may be truncated).
	Text string `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Text was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// NewLineEvent builds a LineEvent, truncating oversized lines.
func NewLineEvent(line string) *LineEvent {
	ev := &LineEvent{Size: len(line), Text: line}
	if len(line) > MaxLogLineSize {
		ev.Text = line[:MaxLogLineSize]
		ev.Truncated = true
	}
	return ev
}

// MessageEvent captures a classified protocol message at the wire layer.
type MessageEvent struct {
	// Type distinguishes commands, replies, samples and noise.
	Type MessageType `cbor:"1,keyasint"`

	// Command verb, for commands and their replies.
	Command string `cbor:"2,keyasint,omitempty"`

	// Stream name, for samples and subscribe replies.
	Stream string `cbor:"3,keyasint,omitempty"`

	// For status replies: whether the server accepted the command.
	OK *bool `cbor:"4,keyasint,omitempty"`

	// For failed status replies: the server's reason.
	Reason string `cbor:"5,keyasint,omitempty"`

	// For samples: the device timestamp in seconds.
	SampleTime *float64 `cbor:"6,keyasint,omitempty"`

	// For samples: the number of payload values.
	ValueCount *int `cbor:"7,keyasint,omitempty"`
}

// MessageType distinguishes the kinds of wire messages.
type MessageType uint8

const (
	// MessageTypeCommand indicates an outgoing command line.
	MessageTypeCommand MessageType = 0
	// MessageTypeStatusReply indicates an OK/ERR command reply.
	MessageTypeStatusReply MessageType = 1
	// MessageTypeQueryReply indicates a query reply with a payload.
	MessageTypeQueryReply MessageType = 2
	// MessageTypeSample indicates a streaming data sample.
	MessageTypeSample MessageType = 3
	// MessageTypeUnknown indicates an unclassifiable line.
	MessageTypeUnknown MessageType = 4
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeCommand:
		return "COMMAND"
	case MessageTypeStatusReply:
		return "STATUS_REPLY"
	case MessageTypeQueryReply:
		return "QUERY_REPLY"
	case MessageTypeSample:
		return "SAMPLE"
	case MessageTypeUnknown:
		return "UNKNOWN"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures connection and session lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntitySession indicates a device session state change.
	StateEntitySession StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntitySession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
