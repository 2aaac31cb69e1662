// Package interaction implements the command/reply cycle of the E4
// streaming protocol.
//
// The protocol carries no message identifiers: a reply correlates with
// a command purely by arrival order, and the server answers commands
// one at a time. The Correlator therefore serializes callers — at most
// one command is on the wire at any moment, and concurrent callers
// queue until the reply for the previous command has arrived.
//
// Replies are fed in by the connection's read loop via Resolve; data
// samples never pass through this package.
package interaction
