// Package log provides structured protocol event logging for the E4
// streaming client.
//
// Every layer of the client can emit events: raw lines at the
// transport layer, decoded messages at the wire layer, and lifecycle
// changes at the session layer. Applications choose a sink by
// implementing Logger or by using one of the provided sinks:
//
//   - NoopLogger discards everything (the default)
//   - SlogAdapter forwards events to a log/slog logger
//   - FileLogger persists events to a CBOR stream on disk
//   - MultiLogger fans out to several sinks at once
//
// Events written by FileLogger can be loaded back with Reader, which
// supports filtering by connection, direction, layer, category and
// time range.
package log
