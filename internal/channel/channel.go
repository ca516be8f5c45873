package channel

import (
	"context"
	"errors"
)

// AnyOrigin as target origin delivers regardless of the receiver's origin.
const AnyOrigin = "*"

// ErrClosed is returned when posting to a closed window.
var ErrClosed = errors.New("channel: window closed")

// Event is one inbound message.
type Event struct {
	// Data is the serialized message.
	Data []byte
	// Origin is the origin of the sender.
	Origin string
	// Source posts back to the sender.
	Source Port
}

// Handler receives inbound events.
type Handler func(Event)

// Port is the sending side of the channel.
type Port interface {
	// PostMessage delivers data if the receiver's origin matches
	// targetOrigin. A mismatch drops the message silently. In-process ports
	// only queue the message; network ports may block for the exchange.
	PostMessage(data []byte, targetOrigin string) error
}

// ContextPort is a Port whose delivery can be abandoned when ctx is done.
type ContextPort interface {
	Port
	PostMessageContext(ctx context.Context, data []byte, targetOrigin string) error
}

// Listener is the receiving side of the channel.
type Listener interface {
	OnMessage(h Handler)
}

// MatchOrigin reports whether a receiver with origin accepts a message
// addressed to targetOrigin.
func MatchOrigin(targetOrigin, origin string) bool {
	return targetOrigin == AnyOrigin || targetOrigin == origin
}
