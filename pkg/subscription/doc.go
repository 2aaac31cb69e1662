// Package subscription manages the delivery of data samples to the
// application's stream consumers.
//
// The client registers consumers per stream. The connection's read
// loop hands every decoded sample to the Registry, which dispatches it
// to all consumers registered for that stream. Consumers registered
// for other streams never see it.
//
// Two consumption styles are supported: a callback (ConsumerFunc)
// invoked from the dispatch goroutine, and a buffered channel (Queue)
// for applications that prefer to range over samples in their own
// goroutine.
package subscription
