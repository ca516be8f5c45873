// Package gate decides which senders the host answers.
//
// The decision is a membership test of the sender's origin against a
// configured allow-list, optionally followed by a per-origin token bucket.
// The origin is reported by the channel and is only as trustworthy as the
// channel itself: the gate is meant for cooperating frames, not for hostile
// peers.
package gate

import (
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/yndnr/sharedstore-go/internal/protocol"
	"github.com/yndnr/sharedstore-go/internal/telemetry/metric"
)

// Config configures a Gate.
type Config struct {
	// Allowed lists the origins that may talk to the host.
	Allowed []string

	// RateLimit is the number of messages per second accepted from one
	// origin. Zero disables limiting.
	RateLimit int

	Logger  *slog.Logger
	Metrics *metric.Registry
}

// Gate is the host's access check. It is safe for concurrent use.
type Gate struct {
	mu       sync.RWMutex
	allowed  map[string]struct{}
	limit    int
	limiters map[string]*rate.Limiter

	logger  *slog.Logger
	metrics *metric.Registry
}

// New creates a Gate.
func New(cfg Config) *Gate {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gate{
		logger:  logger,
		metrics: cfg.Metrics,
	}
	g.SetAllowed(cfg.Allowed)
	g.SetRateLimit(cfg.RateLimit)
	return g
}

// Check reports whether origin is on the allow-list.
func (g *Gate) Check(origin string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.allowed[origin]
	return ok
}

// Admit checks origin against the allow-list and the rate limit. It returns
// nil when the message may be processed, protocol.ErrOriginNotAllowed or
// protocol.ErrRateLimited otherwise.
func (g *Gate) Admit(origin string) error {
	if !g.Check(origin) {
		g.logger.Debug("sender not allowed", "origin", origin)
		g.metrics.RecordRejected("origin")
		return protocol.ErrOriginNotAllowed
	}

	if l := g.limiter(origin); l != nil && !l.Allow() {
		g.logger.Warn("sender rate limited", "origin", origin)
		g.metrics.RecordRejected("rate_limit")
		return protocol.ErrRateLimited
	}
	return nil
}

// SetAllowed replaces the allow-list. Limiters of removed origins are
// dropped.
func (g *Gate) SetAllowed(origins []string) {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.allowed = allowed
	for o := range g.limiters {
		if _, ok := allowed[o]; !ok {
			delete(g.limiters, o)
		}
	}
}

// SetRateLimit changes the per-origin rate. Existing buckets are reset.
func (g *Gate) SetRateLimit(perSecond int) {
	if perSecond < 0 {
		perSecond = 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.limit = perSecond
	g.limiters = make(map[string]*rate.Limiter)
}

// Allowed returns the allow-list, sorted.
func (g *Gate) Allowed() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]string, 0, len(g.allowed))
	for o := range g.allowed {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}

// limiter returns the bucket of origin, creating it on first use, or nil
// when limiting is disabled.
func (g *Gate) limiter(origin string) *rate.Limiter {
	g.mu.RLock()
	limit := g.limit
	l, ok := g.limiters[origin]
	g.mu.RUnlock()

	if limit == 0 {
		return nil
	}
	if ok {
		return l
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if l, ok := g.limiters[origin]; ok {
		return l
	}
	l = rate.NewLimiter(rate.Limit(g.limit), g.limit)
	g.limiters[origin] = l
	return l
}
