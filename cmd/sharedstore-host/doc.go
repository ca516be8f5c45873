// Package main provides the entry point for sharedstore-host.
//
// sharedstore-host keeps the shared key/value store and answers protocol
// messages posted to its HTTP bridge by allowed origins.
//
// Usage:
//
//	sharedstore-host -config /etc/sharedstore/host.yaml
//	SHAREDSTORE_HOST__ALLOWED_ORIGINS=https://app.example sharedstore-host -debug
//
// When a config file is given it is watched; changes to the allowed origins,
// the rate limit and the log level apply without a restart.
package main
