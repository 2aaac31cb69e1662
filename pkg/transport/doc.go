// Package transport provides the TCP line transport for the E4 streaming
// protocol.
//
// The transport layer handles:
//   - Plain TCP connections to the streaming server
//   - CRLF line framing in both directions
//   - Connection establishment with retry and backoff
//   - Connection teardown and closed-connection error mapping
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   Commands / Replies / Samples │
//	├────────────────────────────────┤
//	│       ASCII CRLF Framing       │
//	├────────────────────────────────┤
//	│              TCP               │
//	└────────────────────────────────┘
//
// The streaming server listens on localhost (default port 28000) and
// speaks plaintext ASCII, one message per line. The transport does not
// interpret line contents; classification happens in the wire package.
//
// # Connection Retry
//
// The server intermittently refuses connections right after start-up,
// so Dial retries with exponential backoff:
//   - Initial delay: 10 milliseconds
//   - Maximum delay: 1 second
//   - Default attempts: 20
package transport
