package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yndnr/sharedstore-go/internal/channel"
	"github.com/yndnr/sharedstore-go/internal/protocol"
	"github.com/yndnr/sharedstore-go/internal/telemetry/metric"
)

// DefaultTimeout is how long a request waits for its reply.
const DefaultTimeout = 500 * time.Millisecond

// ErrNoHost is returned by New when no host port is configured.
var ErrNoHost = errors.New("client: no host port configured")

// Config configures a Client.
type Config struct {
	// TargetOrigin addresses outgoing requests. Restrict it to the host's
	// origin; "*" delivers to whatever receives the port's messages.
	// Default: "*"
	TargetOrigin string

	// Host is the port requests are posted to.
	Host channel.Port

	// Timeout is the per-request reply deadline.
	// Default: 500ms
	Timeout time.Duration

	Logger  *slog.Logger
	Metrics *metric.Registry
}

// Client issues storage requests to a host. It is safe for concurrent use;
// concurrent requests are told apart by their ids.
type Client struct {
	target  string
	host    channel.Port
	conv    *Conversations
	logger  *slog.Logger
	metrics *metric.Registry
}

// New creates a Client. Register HandleMessage as the listener of the
// channel replies arrive on before issuing requests.
func New(cfg Config) (*Client, error) {
	if cfg.Host == nil {
		return nil, ErrNoHost
	}
	if cfg.TargetOrigin == "" {
		cfg.TargetOrigin = channel.AnyOrigin
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Client{
		target:  cfg.TargetOrigin,
		host:    cfg.Host,
		conv:    NewConversations(cfg.Timeout),
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
	c.conv.onExpire = func(conv *Conversation) {
		c.logger.Debug("request timed out", "id", conv.Request.ID)
		c.metrics.IncClientTimeout()
		c.metrics.SetClientPending(c.conv.Pending())
	}
	return c, nil
}

// InstanceID returns the identity shared by all request ids of this client.
func (c *Client) InstanceID() string {
	return c.conv.InstanceID()
}

// Pending returns the number of requests awaiting a reply.
func (c *Client) Pending() int {
	return c.conv.Pending()
}

// Ping checks that the host answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.roundTrip(ctx, protocol.NewPing(c.conv.NextID())).Err
}

// GetValue returns the value stored under key. A key the host does not
// know yields a null Value and no error.
func (c *Client) GetValue(ctx context.Context, key string) (protocol.Value, error) {
	r := c.roundTrip(ctx, protocol.NewStorageRequest(c.conv.NextID(), protocol.CmdGet, key, nil))
	return r.Value, r.Err
}

// SetValue creates key with value. It fails with protocol.ErrSetExisting
// when key exists.
func (c *Client) SetValue(ctx context.Context, key string, value any) error {
	return c.write(ctx, protocol.CmdSet, key, value)
}

// UpdateValue replaces the value of an existing key. It fails with
// protocol.ErrUpdateMissing when key does not exist.
func (c *Client) UpdateValue(ctx context.Context, key string, value any) error {
	return c.write(ctx, protocol.CmdUpdate, key, value)
}

// DeleteValue removes key. It fails with protocol.ErrDeleteMissing when key
// does not exist.
func (c *Client) DeleteValue(ctx context.Context, key string) error {
	return c.roundTrip(ctx, protocol.NewStorageRequest(c.conv.NextID(), protocol.CmdDelete, key, nil)).Err
}

// GetKeys returns the keys known to the host, in creation order.
func (c *Client) GetKeys(ctx context.Context) ([]string, error) {
	r := c.roundTrip(ctx, protocol.NewStorageRequest(c.conv.NextID(), protocol.CmdKeys, "", nil))
	return r.Keys, r.Err
}

func (c *Client) write(ctx context.Context, cmd protocol.Command, key string, value any) error {
	v, err := protocol.NewValue(value)
	if err != nil {
		return err
	}
	return c.roundTrip(ctx, protocol.NewStorageRequest(c.conv.NextID(), cmd, key, v)).Err
}

// roundTrip registers req, posts it and waits for its settlement. A post
// failure or a done ctx settles the conversation with that error.
//
// The post runs on its own goroutine so that a port blocking on the network
// cannot hold the caller past the timeout or ctx. It is abandoned once the
// conversation settles.
func (c *Client) roundTrip(ctx context.Context, req *protocol.Envelope) Result {
	data, err := protocol.Encode(req)
	if err != nil {
		return Result{Err: err}
	}

	conv := c.conv.Register(req)
	c.metrics.SetClientPending(c.conv.Pending())

	postCtx, stopPost := context.WithCancel(ctx)
	defer stopPost()
	go c.post(postCtx, req.ID, data)

	var r Result
	select {
	case r = <-conv.Done():
	case <-ctx.Done():
		c.conv.Cancel(req.ID, ctx.Err())
		r = <-conv.Done()
	}

	c.metrics.SetClientPending(c.conv.Pending())
	c.metrics.RecordClientRequest(command(req), outcome(r.Err), time.Since(conv.Started))
	if r.Err != nil {
		c.logger.Debug("request rejected", "id", req.ID, "cmd", command(req), "error", r.Err)
	}
	return r
}

func (c *Client) post(ctx context.Context, id string, data []byte) {
	var err error
	if p, ok := c.host.(channel.ContextPort); ok {
		err = p.PostMessageContext(ctx, data, c.target)
	} else {
		err = c.host.PostMessage(data, c.target)
	}
	// An aborted exchange belongs to a conversation already settled.
	if err != nil && ctx.Err() == nil {
		c.conv.Cancel(id, fmt.Errorf("client: post %s: %w", id, err))
	}
}

func command(req *protocol.Envelope) string {
	if sr, ok := req.Payload.(protocol.StorageRequest); ok {
		return string(sr.Cmd)
	}
	return string(req.Type)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		if code, ok := protocol.Code(err); ok {
			return fmt.Sprint(code)
		}
		return "error"
	}
}
