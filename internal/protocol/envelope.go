package protocol

// MessageType is the "type" tag of an envelope.
type MessageType string

// Request types.
const (
	TypePing    MessageType = "ping"
	TypeStorage MessageType = "storage"
)

// Reply types. TypePing is also used for the ping reply.
const (
	TypeStorageContent MessageType = "storage_content"
	TypeStorageError   MessageType = "storage_error"
	TypeStorageDelete  MessageType = "storage_delete"
	TypeStorageKeys    MessageType = "storage_keys"
	TypeError          MessageType = "error"
)

// Known reports whether t is one of the message types of the protocol.
func (t MessageType) Known() bool {
	switch t {
	case TypePing, TypeStorage, TypeStorageContent, TypeStorageError,
		TypeStorageDelete, TypeStorageKeys, TypeError:
		return true
	}
	return false
}

// Command is the "cmd" discriminator of a storage request.
type Command string

// Storage commands.
const (
	CmdGet    Command = "get"
	CmdSet    Command = "set"
	CmdUpdate Command = "update"
	CmdDelete Command = "delete"
	CmdKeys   Command = "keys"
)

// Known reports whether c is a storage command the host executes.
func (c Command) Known() bool {
	switch c {
	case CmdGet, CmdSet, CmdUpdate, CmdDelete, CmdKeys:
		return true
	}
	return false
}

// Envelope is the uniform message shape exchanged over the channel.
//
// ID is a correlation token chosen by the client, not a sequence number.
type Envelope struct {
	ID      string
	Type    MessageType
	Payload Payload
}

// NewPing builds a ping request.
func NewPing(id string) *Envelope {
	return &Envelope{ID: id, Type: TypePing, Payload: PingRequest}
}

// NewPong builds the host's answer to a ping.
func NewPong(id string) *Envelope {
	return &Envelope{ID: id, Type: TypePing, Payload: PingReply}
}

// NewStorageRequest builds a storage request for cmd.
// key and value are omitted from the wire when empty.
func NewStorageRequest(id string, cmd Command, key string, value Value) *Envelope {
	return &Envelope{
		ID:      id,
		Type:    TypeStorage,
		Payload: StorageRequest{Cmd: cmd, Key: key, Value: value, hasCmd: true},
	}
}

// NewStorageContent builds a reply carrying the stored value of key.
func NewStorageContent(id, key string, value Value) *Envelope {
	return &Envelope{ID: id, Type: TypeStorageContent, Payload: StorageContent{Key: key, Value: value}}
}

// NewStorageError builds a storage_error reply.
func NewStorageError(id string, detail *ErrorDetail) *Envelope {
	return &Envelope{ID: id, Type: TypeStorageError, Payload: detail}
}

// NewStorageDeleted builds a successful storage_delete reply.
func NewStorageDeleted(id, key string) *Envelope {
	return &Envelope{ID: id, Type: TypeStorageDelete, Payload: StorageDelete{Key: key, Success: true}}
}

// NewStorageDeleteFailed builds a failed storage_delete reply.
func NewStorageDeleteFailed(id, key string, detail *ErrorDetail) *Envelope {
	return &Envelope{ID: id, Type: TypeStorageDelete, Payload: StorageDelete{Key: key, Error: detail}}
}

// NewStorageKeys builds a storage_keys reply. A nil keys slice is sent as [].
func NewStorageKeys(id string, keys []string) *Envelope {
	if keys == nil {
		keys = []string{}
	}
	return &Envelope{ID: id, Type: TypeStorageKeys, Payload: StorageKeys{Keys: keys}}
}

// NewError builds a top-level error reply.
func NewError(id string, detail *ErrorDetail) *Envelope {
	return &Envelope{ID: id, Type: TypeError, Payload: detail}
}
