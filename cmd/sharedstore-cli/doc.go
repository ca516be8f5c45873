// Package main provides the entry point for sharedstore-cli.
//
// sharedstore-cli is a client of a sharedstore host reached over its HTTP
// bridge. It reads, writes and lists keys and runs the selftest console:
//
//	sharedstore-cli --host-url http://127.0.0.1:5090 keys
//	sharedstore-cli set profile '{"theme":"dark"}'
//	sharedstore-cli -o yaml get profile
//	sharedstore-cli selftest
package main
