package transport

// LineConnection is a bidirectional line-oriented connection.
// Implemented by Conn.
type LineConnection interface {
	// WriteLine writes one protocol line, appending CRLF if missing.
	WriteLine(line string) error

	// ReadLine reads one protocol line without its CRLF terminator.
	ReadLine() (string, error)

	// RemoteAddr returns the remote address, if known.
	RemoteAddr() string

	// Close closes the connection.
	Close() error
}

// LineSender is the write side of a line connection.
type LineSender interface {
	// WriteLine writes one protocol line, appending CRLF if missing.
	WriteLine(line string) error
}

// Compile-time interface satisfaction checks.
var (
	_ LineConnection = (*Conn)(nil)
	_ LineSender     = (*Conn)(nil)
)
