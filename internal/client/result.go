package client

import (
	"fmt"

	"github.com/yndnr/sharedstore-go/internal/protocol"
)

// ReplyError rejects a ping answered with something other than a ping, when
// the reply carries no error detail.
type ReplyError struct {
	Type    protocol.MessageType
	Payload protocol.Payload
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("unexpected %s reply", e.Type)
}

// pingResult settles a ping: any ping reply resolves it.
func pingResult(reply *protocol.Envelope) Result {
	if reply.Type == protocol.TypePing {
		return Result{}
	}
	if d, ok := reply.Payload.(*protocol.ErrorDetail); ok {
		return Result{Err: d}
	}
	return Result{Err: &ReplyError{Type: reply.Type, Payload: reply.Payload}}
}

// storageResult validates reply against the storage request req.
func storageResult(req protocol.StorageRequest, reply *protocol.Envelope) Result {
	switch req.Cmd {
	case protocol.CmdGet:
		c, ok := contentOf(reply)
		if !ok {
			return reject(protocol.ErrUnexpectedResult)
		}
		if c.Key != req.Key {
			return reject(protocol.ErrKeyMismatch)
		}
		return Result{Value: c.Value}

	case protocol.CmdSet:
		return writeResult(req, reply, protocol.ErrSetVerifyFailed)

	case protocol.CmdUpdate:
		return writeResult(req, reply, protocol.ErrUpdateVerifyFailed)

	case protocol.CmdDelete:
		if reply.Type == protocol.TypeStorageError {
			return hostError(reply)
		}
		d, ok := reply.Payload.(protocol.StorageDelete)
		if reply.Type != protocol.TypeStorageDelete || !ok {
			return reject(protocol.ErrUnexpectedResult)
		}
		if d.Key != req.Key {
			return reject(protocol.ErrKeyMismatch)
		}
		if d.Success {
			return Result{}
		}
		if d.Error == nil {
			return reject(protocol.ErrUnexpectedResult)
		}
		return Result{Err: d.Error}

	case protocol.CmdKeys:
		k, ok := reply.Payload.(protocol.StorageKeys)
		if reply.Type != protocol.TypeStorageKeys || !ok {
			return reject(protocol.ErrUnexpectedResult)
		}
		keys := k.Keys
		if keys == nil {
			keys = []string{}
		}
		return Result{Keys: keys}

	default:
		return reject(protocol.ErrUnknownClientCommand)
	}
}

// writeResult checks that a set or update was echoed with the same key and
// an equal value.
func writeResult(req protocol.StorageRequest, reply *protocol.Envelope, mismatch *protocol.ErrorDetail) Result {
	if reply.Type == protocol.TypeStorageError {
		return hostError(reply)
	}
	c, ok := contentOf(reply)
	if !ok {
		return reject(protocol.ErrUnexpectedResult)
	}
	if c.Key != req.Key {
		return reject(protocol.ErrKeyMismatch)
	}
	if !req.Value.Equal(c.Value) {
		return reject(mismatch)
	}
	return Result{}
}

func contentOf(reply *protocol.Envelope) (protocol.StorageContent, bool) {
	c, ok := reply.Payload.(protocol.StorageContent)
	return c, ok && reply.Type == protocol.TypeStorageContent
}

func hostError(reply *protocol.Envelope) Result {
	if d, ok := reply.Payload.(*protocol.ErrorDetail); ok {
		return Result{Err: d}
	}
	return reject(protocol.ErrUnexpectedResult)
}

func reject(detail *protocol.ErrorDetail) Result {
	return Result{Err: detail}
}
