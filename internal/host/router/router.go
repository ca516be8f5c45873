// Package router dispatches inbound host messages.
//
// Every message passes the access gate first, then is routed by envelope
// type: pings are answered directly, storage requests go to the engine.
// Each inbound message produces exactly one reply, addressed to the
// sender's origin.
package router

import (
	"context"
	"errors"
	"log/slog"

	"github.com/yndnr/sharedstore-go/internal/channel"
	"github.com/yndnr/sharedstore-go/internal/host/engine"
	"github.com/yndnr/sharedstore-go/internal/host/gate"
	"github.com/yndnr/sharedstore-go/internal/protocol"
	"github.com/yndnr/sharedstore-go/internal/telemetry/metric"
)

// Router answers host messages.
type Router struct {
	gate    *gate.Gate
	engine  *engine.Engine
	logger  *slog.Logger
	metrics *metric.Registry
}

// New creates a Router.
func New(g *gate.Gate, e *engine.Engine, logger *slog.Logger, metrics *metric.Registry) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		gate:    g,
		engine:  e,
		logger:  logger,
		metrics: metrics,
	}
}

// HandleMessage handles one channel event and posts the reply to its
// source. It is meant to be registered with channel.Listener.OnMessage.
func (r *Router) HandleMessage(ev channel.Event) {
	reply := r.Handle(context.Background(), ev.Origin, ev.Data)

	if ev.Source == nil {
		r.logger.Warn("no reply port for message", "origin", ev.Origin, "id", reply.ID)
		return
	}
	data, err := protocol.Encode(reply)
	if err != nil {
		r.logger.Error("encode reply failed", "id", reply.ID, "error", err)
		return
	}
	if err := ev.Source.PostMessage(data, ev.Origin); err != nil {
		r.logger.Error("post reply failed", "origin", ev.Origin, "id", reply.ID, "error", err)
	}
}

// Handle processes data received from origin and returns the reply.
func (r *Router) Handle(ctx context.Context, origin string, data []byte) *protocol.Envelope {
	env, decodeErr := protocol.Decode(data)
	id := ""
	if env != nil {
		id = env.ID
	}

	if err := r.gate.Admit(origin); err != nil {
		r.metrics.RecordMessage(msgType(env), metric.ResultRejected)
		detail := protocol.ErrOriginNotAllowed
		errors.As(err, &detail)
		return protocol.NewError(id, detail)
	}

	r.logger.DebugContext(ctx, "received message", "origin", origin, "id", id, "payload", string(data))

	if decodeErr != nil {
		r.logger.DebugContext(ctx, "invalid base message", "origin", origin, "error", decodeErr)
		r.metrics.RecordMessage(msgType(env), metric.ResultError)
		return protocol.NewError(id, protocol.ErrMalformed)
	}

	var reply *protocol.Envelope
	switch env.Type {
	case protocol.TypePing:
		reply = r.handlePing(ctx, env)
	case protocol.TypeStorage:
		reply = r.handleStorage(ctx, env)
	default:
		r.logger.DebugContext(ctx, "invalid message type", "type", string(env.Type))
		reply = protocol.NewError(id, protocol.ErrUnknownType)
	}

	result := metric.ResultOK
	if reply.Type == protocol.TypeError || reply.Type == protocol.TypeStorageError {
		result = metric.ResultError
	}
	r.metrics.RecordMessage(msgType(env), result)
	return reply
}

func (r *Router) handlePing(ctx context.Context, env *protocol.Envelope) *protocol.Envelope {
	r.logger.DebugContext(ctx, "processing ping message", "id", env.ID)
	if p, ok := env.Payload.(protocol.Ping); !ok || p != protocol.PingRequest {
		r.logger.WarnContext(ctx, "non-standard ping payload", "id", env.ID)
	}
	return protocol.NewPong(env.ID)
}

func (r *Router) handleStorage(ctx context.Context, env *protocol.Envelope) *protocol.Envelope {
	r.logger.DebugContext(ctx, "processing storage message", "id", env.ID)

	req, ok := env.Payload.(protocol.StorageRequest)
	if !ok || !req.HasCommand() {
		r.logger.DebugContext(ctx, "command is missing", "id", env.ID)
		return protocol.NewError(env.ID, protocol.ErrMissingCommand)
	}
	return r.engine.Execute(ctx, env.ID, req)
}

func msgType(env *protocol.Envelope) string {
	if env == nil || env.Type == "" {
		return "invalid"
	}
	if !env.Type.Known() {
		return "unknown"
	}
	return string(env.Type)
}
