// Package client talks to a storage host over a message channel.
//
// Requests are fire-and-forget messages; replies arrive asynchronously on
// the same channel. Each request is tracked as a conversation keyed by its
// id until a matching reply settles it or its timeout expires, whichever
// comes first. Replies are validated against the request before the caller
// sees them: a reply for another key, or an echoed value that differs from
// the one written, is reported as an error.
//
// Wiring a client to an in-memory host window:
//
//	w := channel.NewWindow("https://app.example")
//	c, _ := client.New(client.Config{
//		TargetOrigin: "https://store.example",
//		Host:         w.Connect(hostWindow),
//	})
//	w.OnMessage(c.HandleMessage)
//	w.Start(ctx)
//
//	if err := c.SetValue(ctx, "profile", map[string]any{"name": "x"}); err != nil {
//		// errors.Is(err, protocol.ErrSetExisting) ...
//	}
package client
