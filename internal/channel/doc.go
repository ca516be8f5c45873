// Package channel provides the fire-and-forget message channel between a
// SharedStore host and its clients.
//
// The channel mirrors cross-window messaging: a sender posts a message to a
// Port together with the origin it expects the receiver to have. Delivery is
// asynchronous, carries the sender's origin, and gives the receiver a Source
// port for replying. There is no built-in request/reply relation; callers
// correlate messages themselves.
//
// Two transports are provided:
//
//   - Window: in-process windows with a buffered inbox and a single dispatch
//     goroutine each, so handlers of one window never run concurrently.
//   - HTTPPort: the client end of the HTTP bridge served by the host's
//     httpserver package. Replies returned in the HTTP response are fed to a
//     local Window as inbound events.
package channel
