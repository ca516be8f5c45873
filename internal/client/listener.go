package client

import (
	"github.com/yndnr/sharedstore-go/internal/channel"
	"github.com/yndnr/sharedstore-go/internal/protocol"
)

// HandleMessage routes a reply from the host to its conversation. Register
// it with the listener of the channel the host replies on.
//
// Data that is not an envelope, and replies without a pending conversation
// (late, foreign or duplicate), are dropped. A malformed envelope with a
// known id still settles its conversation, as an unexpected result. A reply
// to a request that is neither ping nor storage is ignored and leaves its
// conversation to the timeout.
func (c *Client) HandleMessage(ev channel.Event) {
	reply, err := protocol.Decode(ev.Data)
	if reply == nil {
		c.logger.Debug("dropping undecodable message", "origin", ev.Origin, "error", err)
		return
	}

	pending, ok := c.conv.Lookup(reply.ID)
	if !ok {
		c.logger.Debug("dropping reply without conversation", "origin", ev.Origin, "id", reply.ID)
		return
	}
	switch pending.Request.Type {
	case protocol.TypePing, protocol.TypeStorage:
	default:
		c.logger.Debug("reply to unhandled request type", "type", string(pending.Request.Type), "id", reply.ID)
		return
	}

	conv, ok := c.conv.Finalize(reply.ID)
	if !ok {
		return
	}
	c.metrics.SetClientPending(c.conv.Pending())

	if conv.Request.Type == protocol.TypePing {
		conv.settle(pingResult(reply))
		return
	}
	req, _ := conv.Request.Payload.(protocol.StorageRequest)
	conv.settle(storageResult(req, reply))
}
