package subscription

import (
	"sync"

	"github.com/google/uuid"

	"github.com/e4-protocol/e4-go/pkg/wire"
)

// Token identifies one registered consumer. Tokens are opaque and
// unique for the lifetime of the registry.
type Token string

// entry pairs a consumer with its stream, preserving insertion order.
type entry struct {
	token    Token
	stream   wire.StreamID
	consumer Consumer
}

// Registry maps streams to their registered consumers and dispatches
// incoming samples to them.
//
// Dispatch snapshots the consumer list under a read lock and invokes
// consumers outside it, so consumers may call Add or Remove without
// deadlocking. A consumer removed concurrently with dispatch may still
// receive the sample already in flight.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
	byToken map[Token]int // index into entries
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byToken: make(map[Token]int),
	}
}

// Add registers a consumer for a stream and returns its token.
func (r *Registry) Add(stream wire.StreamID, consumer Consumer) Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	token := Token(uuid.NewString())
	r.byToken[token] = len(r.entries)
	r.entries = append(r.entries, entry{token: token, stream: stream, consumer: consumer})
	return token
}

// Remove deregisters the consumer identified by token.
// Removing an unknown or already-removed token is a no-op.
func (r *Registry) Remove(token Token) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byToken[token]
	if !ok {
		return
	}
	delete(r.byToken, token)

	r.entries = append(r.entries[:idx], r.entries[idx+1:]...)
	for i := idx; i < len(r.entries); i++ {
		r.byToken[r.entries[i].token] = i
	}
}

// StreamOf returns the stream the token is registered for.
func (r *Registry) StreamOf(token Token) (wire.StreamID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byToken[token]
	if !ok {
		return 0, false
	}
	return r.entries[idx].stream, true
}

// Count returns the number of consumers registered for a stream.
func (r *Registry) Count(stream wire.StreamID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int
	for _, e := range r.entries {
		if e.stream == stream {
			n++
		}
	}
	return n
}

// Streams returns the streams that currently have at least one
// registered consumer.
func (r *Registry) Streams() []wire.StreamID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[wire.StreamID]bool)
	var streams []wire.StreamID
	for _, e := range r.entries {
		if !seen[e.stream] {
			seen[e.stream] = true
			streams = append(streams, e.stream)
		}
	}
	return streams
}

// Dispatch delivers a sample to every consumer registered for its
// stream, in registration order. It returns the number of consumers
// that received the sample.
func (r *Registry) Dispatch(sample wire.Sample) int {
	r.mu.RLock()
	var consumers []Consumer
	for _, e := range r.entries {
		if e.stream == sample.Stream {
			consumers = append(consumers, e.consumer)
		}
	}
	r.mu.RUnlock()

	for _, c := range consumers {
		c.Consume(sample)
	}
	return len(consumers)
}

// Clear removes all consumers and returns the tokens that were
// registered.
func (r *Registry) Clear() []Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	tokens := make([]Token, 0, len(r.entries))
	for _, e := range r.entries {
		tokens = append(tokens, e.token)
	}
	r.entries = nil
	r.byToken = make(map[Token]int)
	return tokens
}
