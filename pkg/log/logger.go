package log

// Logger is the sink for protocol events. Every layer that emits
// events takes an optional Logger; a nil logger means no logging.
type Logger interface {
	// Log records one event. Callers may invoke Log from several
	// goroutines at once, and they do so on hot paths: implementations
	// must be safe for concurrent use and return quickly.
	Log(event Event)
}

// NoopLogger is the zero-cost sink used when logging is disabled.
type NoopLogger struct{}

// Log drops the event.
func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}
