// Package storage provides the durable string store owned by a SharedStore
// host.
//
// The host's storage engine treats the store as a black box mapping keys to
// serialized values, in the manner of a browser's local storage:
//
//   - MemoryStore: process-local map, used in tests and ephemeral hosts
//   - BadgerStore: persistent store on top of Badger v3
//   - SealedStore: decorator encrypting values at rest (ChaCha20-Poly1305)
//
// The store does not know about the key index or reserved keys; those are
// enforced by the engine package.
package storage
