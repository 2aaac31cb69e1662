// Package client implements the high-level E4 streaming client.
//
// A Client owns one TCP connection to the streaming server, one
// background read loop, one command correlator and one subscription
// registry. The read loop is the only reader of the connection: it
// classifies every incoming line and either completes the command in
// flight or routes a data sample to the registered consumers.
//
// Typical use:
//
//	c, err := client.Dial(ctx, "127.0.0.1:28000")
//	if err != nil { ... }
//	defer c.Close()
//
//	devices, err := c.ListConnectedDevices(ctx)
//	if err != nil { ... }
//
//	dev, err := c.Connect(ctx, devices[0].UID)
//	if err != nil { ... }
//	defer dev.Close()
//
//	q := subscription.NewQueue()
//	tok, err := dev.Subscribe(ctx, wire.StreamGSR, q)
//	if err != nil { ... }
//	defer dev.Unsubscribe(context.Background(), tok)
//
//	for sample := range q.Samples() {
//		fmt.Println(sample.Timestamp, sample.Values)
//	}
//
// A dropped connection is terminal: every blocked and future operation
// fails with transport.ErrConnectionClosed. There is no automatic
// reconnection.
package client
