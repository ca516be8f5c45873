// Package buildinfo reports the version of the sharedstore binaries.
//
// Values come from ldflags when set:
//
//	go build -ldflags "-X github.com/yndnr/sharedstore-go/internal/infra/buildinfo.Version=v1.0.0"
//
// and otherwise from the module and VCS data the Go toolchain embeds.
package buildinfo
