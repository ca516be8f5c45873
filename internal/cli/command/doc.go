// Package command defines the sharedstore-cli commands with urfave/cli/v2.
//
//   - root.go: the application, global flags and host dialing
//   - store.go: ping and the storage commands
//   - selftest.go: the end-to-end test console run against a live host
package command
