package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/sharedstore-go/internal/channel"
	"github.com/yndnr/sharedstore-go/internal/client"
	"github.com/yndnr/sharedstore-go/internal/telemetry/metric"
)

// DefaultOrigin is the origin the CLI presents when none is configured.
const DefaultOrigin = "http://localhost"

// Options describes how to reach a host.
type Options struct {
	// HostURL is the base URL of the host's HTTP bridge.
	HostURL string

	// Origin is sent as the sender origin and must be on the host's
	// allow-list.
	Origin string

	// TargetOrigin addresses the host. Empty means the origin of HostURL.
	TargetOrigin string

	// Timeout bounds each request. Zero means client.DefaultTimeout.
	Timeout time.Duration

	Logger  *slog.Logger
	Metrics *metric.Registry
}

// Session is a connected client. Close releases its window.
type Session struct {
	*client.Client
	window *channel.Window
	cancel context.CancelFunc
}

// Dial connects a client to the host at opts.HostURL. No message is sent;
// call Ping to check reachability.
func Dial(opts Options) (*Session, error) {
	if opts.HostURL == "" {
		return nil, errors.New("connection: host URL required")
	}
	if opts.Origin == "" {
		opts.Origin = DefaultOrigin
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	win := channel.NewWindow(opts.Origin, channel.WithLogger(opts.Logger))

	// The client abandons the exchange when its conversation settles; the
	// HTTP timeout only bounds a port used outside a conversation.
	httpTimeout := opts.Timeout
	if httpTimeout <= 0 {
		httpTimeout = client.DefaultTimeout
	}
	port, err := channel.NewHTTPPort(opts.HostURL, win,
		channel.WithHTTPClient(&http.Client{Timeout: 2 * httpTimeout}))
	if err != nil {
		return nil, fmt.Errorf("connection: %w", err)
	}

	target := opts.TargetOrigin
	if target == "" {
		target = port.HostOrigin()
	}

	c, err := client.New(client.Config{
		TargetOrigin: target,
		Host:         port,
		Timeout:      opts.Timeout,
		Logger:       opts.Logger,
		Metrics:      opts.Metrics,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	win.OnMessage(c.HandleMessage)
	win.Start(ctx)

	opts.Logger.Debug("dialed host",
		"host_url", opts.HostURL,
		"origin", opts.Origin,
		"target_origin", target,
		"instance", c.InstanceID())

	return &Session{Client: c, window: win, cancel: cancel}, nil
}

// Close stops the session's window.
func (s *Session) Close() error {
	s.cancel()
	s.window.Close()
	return nil
}
