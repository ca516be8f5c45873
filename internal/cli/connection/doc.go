// Package connection dials a sharedstore host for sharedstore-cli: a local
// window stands in for the embedding page, and an HTTP port carries its
// messages to the host's bridge.
package connection
