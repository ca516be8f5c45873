package channel

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MessagePath is the host endpoint accepting posted messages.
const MessagePath = "/message"

// DefaultHTTPTimeout bounds a single HTTP exchange with the host.
const DefaultHTTPTimeout = 10 * time.Second

// HTTPPort posts messages to a host over HTTP.
//
// Each PostMessage is one POST request carrying the sender's origin in the
// Origin header. A reply in the response body is queued on the local window
// as an event from the host origin, so the caller sees it through its
// regular message listener.
type HTTPPort struct {
	baseURL    string
	hostOrigin string
	local      *Window
	client     *http.Client
}

// HTTPPortOption configures an HTTPPort.
type HTTPPortOption func(*HTTPPort)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) HTTPPortOption {
	return func(p *HTTPPort) {
		p.client = c
	}
}

// NewHTTPPort creates a port to the host at hostURL. Replies are delivered
// to local, whose origin is sent as the Origin header.
func NewHTTPPort(hostURL string, local *Window, opts ...HTTPPortOption) (*HTTPPort, error) {
	if !strings.HasPrefix(hostURL, "http://") && !strings.HasPrefix(hostURL, "https://") {
		hostURL = "http://" + hostURL
	}
	u, err := url.Parse(hostURL)
	if err != nil {
		return nil, fmt.Errorf("channel: parse host url: %w", err)
	}
	if local == nil {
		return nil, fmt.Errorf("channel: local window is required")
	}

	p := &HTTPPort{
		baseURL:    strings.TrimSuffix(hostURL, "/"),
		hostOrigin: u.Scheme + "://" + u.Host,
		local:      local,
		client:     &http.Client{Timeout: DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// HostOrigin returns the origin of the host, derived from its URL.
func (p *HTTPPort) HostOrigin() string {
	return p.hostOrigin
}

// PostMessage sends data to the host and blocks until the exchange is over.
func (p *HTTPPort) PostMessage(data []byte, targetOrigin string) error {
	return p.PostMessageContext(context.Background(), data, targetOrigin)
}

// PostMessageContext sends data to the host. Transport failures and non-2xx
// statuses are returned; the reply, if any, arrives on the local window. A
// done ctx aborts the exchange.
func (p *HTTPPort) PostMessageContext(ctx context.Context, data []byte, targetOrigin string) error {
	if !MatchOrigin(targetOrigin, p.hostOrigin) {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+MessagePath, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("channel: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", p.local.Origin())
	req.Header.Set("User-Agent", "sharedstore-client/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("channel: post message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("channel: host answered with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("channel: read reply: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	return p.local.deliver(Event{Data: body, Origin: p.hostOrigin, Source: p})
}
