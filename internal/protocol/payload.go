package protocol

import "encoding/json"

// Payload is the body of an envelope. The set of implementations is closed.
type Payload interface {
	isPayload()
}

// Ping is the payload of ping requests and replies.
type Ping string

// Standard ping payloads.
const (
	PingRequest Ping = "ping"
	PingReply   Ping = "pong"
)

// StorageRequest is the payload of a "storage" message.
type StorageRequest struct {
	Cmd   Command
	Key   string
	Value Value

	hasCmd bool
}

// HasCommand reports whether the request carried a "cmd" field.
func (r StorageRequest) HasCommand() bool {
	return r.hasCmd || r.Cmd != ""
}

type storageRequestJSON struct {
	Cmd   *Command `json:"cmd,omitempty"`
	Key   string   `json:"key,omitempty"`
	Value Value    `json:"value,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r StorageRequest) MarshalJSON() ([]byte, error) {
	out := storageRequestJSON{Key: r.Key, Value: r.Value}
	if r.HasCommand() {
		cmd := r.Cmd
		out.Cmd = &cmd
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *StorageRequest) UnmarshalJSON(data []byte) error {
	var in storageRequestJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = StorageRequest{Key: in.Key, Value: in.Value}
	if in.Cmd != nil {
		r.Cmd = *in.Cmd
		r.hasCmd = true
	}
	return nil
}

// StorageContent carries the value stored under Key. Value is null when the
// key is unknown to the host.
type StorageContent struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// StorageDelete reports the outcome of a delete.
type StorageDelete struct {
	Key     string       `json:"key"`
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// StorageKeys carries the host's key index.
type StorageKeys struct {
	Keys []string `json:"keys"`
}

// RawPayload holds the undecoded payload of an envelope whose type is not
// part of the protocol, or whose payload does not have the expected shape.
type RawPayload json.RawMessage

// MarshalJSON implements json.Marshaler.
func (p RawPayload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

func (Ping) isPayload()           {}
func (StorageRequest) isPayload() {}
func (StorageContent) isPayload() {}
func (StorageDelete) isPayload()  {}
func (StorageKeys) isPayload()    {}
func (*ErrorDetail) isPayload()   {}
func (RawPayload) isPayload()     {}
