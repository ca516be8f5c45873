package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedEnvelope is returned by Decode when the data is not an object
// carrying both "type" and "payload".
var ErrMalformedEnvelope = errors.New("protocol: malformed envelope")

type wireEnvelope struct {
	ID      json.RawMessage `json:"id"`
	Type    *MessageType    `json:"type,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Encode serializes env to its wire form.
func Encode(env *Envelope) ([]byte, error) {
	if env == nil {
		return nil, errors.New("protocol: encode nil envelope")
	}
	id, err := json.Marshal(env.ID)
	if err != nil {
		return nil, err
	}
	out := wireEnvelope{ID: id, Type: &env.Type}
	if env.Payload != nil {
		payload, err := json.Marshal(env.Payload)
		if err != nil {
			return nil, fmt.Errorf("protocol: encode %s payload: %w", env.Type, err)
		}
		out.Payload = payload
	} else {
		out.Payload = json.RawMessage("null")
	}
	return json.Marshal(out)
}

// Decode parses an envelope.
//
// When data is a JSON object, the returned envelope is never nil, even on
// error, so that the caller can still reply using its ID. A missing "type" or
// "payload" yields ErrMalformedEnvelope. A type outside the protocol decodes
// into RawPayload without error; so does a reply payload whose shape does not
// match its type.
func Decode(data []byte) (*Envelope, error) {
	var in wireEnvelope
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	env := &Envelope{ID: decodeID(in.ID)}
	if in.Type == nil || in.Payload == nil {
		return env, ErrMalformedEnvelope
	}
	env.Type = *in.Type
	env.Payload = decodePayload(env.Type, in.Payload)
	return env, nil
}

// decodeID accepts string ids and keeps the JSON text of any other id.
func decodeID(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return id
	}
	return string(raw)
}

func decodePayload(t MessageType, raw json.RawMessage) Payload {
	switch t {
	case TypePing:
		var p string
		if err := json.Unmarshal(raw, &p); err != nil {
			return RawPayload(raw)
		}
		return Ping(p)

	case TypeStorage:
		// A payload that is not an object behaves like one without "cmd".
		var r StorageRequest
		if err := json.Unmarshal(raw, &r); err != nil {
			return StorageRequest{}
		}
		return r

	case TypeStorageContent:
		var c StorageContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return RawPayload(raw)
		}
		return c

	case TypeStorageDelete:
		var d StorageDelete
		if err := json.Unmarshal(raw, &d); err != nil {
			return RawPayload(raw)
		}
		return d

	case TypeStorageKeys:
		var k StorageKeys
		if err := json.Unmarshal(raw, &k); err != nil {
			return RawPayload(raw)
		}
		return k

	case TypeStorageError, TypeError:
		var e ErrorDetail
		if err := json.Unmarshal(raw, &e); err != nil {
			return RawPayload(raw)
		}
		return &e
	}

	return RawPayload(raw)
}
