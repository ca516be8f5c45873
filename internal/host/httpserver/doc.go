// Package httpserver exposes the host over HTTP.
//
// A client without a shared in-memory channel posts an envelope to
// POST /message with its origin in the Origin header; the reply envelope is
// the response body. The endpoint always answers 200 with an envelope: gate
// rejections and protocol errors are replies, not HTTP errors.
//
// Routes:
//
//   - POST /message: one request envelope in, one reply envelope out
//   - GET /health: liveness and the number of indexed keys
//   - GET /metrics: Prometheus exposition
//
// Middleware order: Recover -> RequestID -> Audit -> CORS -> handler.
package httpserver
