// Package protocol defines the envelope exchanged between a SharedStore host
// and its clients.
//
// Every message on the channel is an Envelope:
//
//	{"id": "<correlation id>", "type": "<message type>", "payload": <payload>}
//
// Requests use the types "ping" and "storage". Replies use "ping",
// "storage_content", "storage_error", "storage_delete", "storage_keys" and
// "error". The payload is a sealed variant: each message type decodes into
// exactly one concrete Go type (Ping, StorageRequest, StorageContent,
// StorageDelete, StorageKeys, *ErrorDetail or RawPayload), so handlers can
// switch on the payload type instead of probing loosely typed maps.
//
// Error replies carry an ErrorDetail with a numeric code. Positive codes are
// reported by the host, negative codes are detected by the client while
// validating a reply.
package protocol
