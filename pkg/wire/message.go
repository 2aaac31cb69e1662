package wire

// Message is a decoded incoming line. Concrete types are StatusReply,
// QueryReply, Sample and Unknown.
type Message interface {
	message()
}

// StatusReply is the server's OK/ERR answer to a non-query command.
type StatusReply struct {
	// Command the reply answers.
	Command Command

	// StreamToken is the stream abbreviation echoed back by
	// device_subscribe replies ("R device_subscribe acc OK").
	// Empty for other commands.
	StreamToken string

	// OK reports whether the server accepted the command.
	OK bool

	// Reason carries the server's error text when OK is false.
	Reason string
}

// QueryReply is the server's answer to a query command
// (device_list, device_discover_list). Data is the raw payload after
// the verb; use ParseDeviceList to interpret it.
type QueryReply struct {
	Command Command
	Data    string
}

// Sample is one timestamped data point from a subscribed stream.
type Sample struct {
	// Stream the sample belongs to.
	Stream StreamID

	// Timestamp in floating-point seconds since the Unix epoch.
	Timestamp float64

	// Values holds the sample payload. Arity depends on the stream:
	// three values for ACC, one for most others, none for TAG.
	Values []float64
}

// Unknown wraps any line that could not be classified. The receive
// loop ignores these; they are kept only for protocol logging.
type Unknown struct {
	Line string
}

func (StatusReply) message() {}
func (QueryReply) message()  {}
func (Sample) message()      {}
func (Unknown) message()     {}
