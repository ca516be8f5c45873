package channel

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// DefaultBufferSize is the inbox capacity of a window.
const DefaultBufferSize = 64

// Window is an in-process message endpoint with an origin.
//
// Inbound events are queued and dispatched in arrival order by a single
// goroutine started with Start, so handlers run to completion one at a time.
type Window struct {
	origin string
	inbox  chan Event
	logger *slog.Logger

	mu       sync.RWMutex
	handlers []Handler

	closed atomic.Bool
	done   chan struct{}
	once   sync.Once
}

// WindowOption configures a Window.
type WindowOption func(*Window)

// WithBufferSize sets the inbox capacity.
func WithBufferSize(n int) WindowOption {
	return func(w *Window) {
		if n > 0 {
			w.inbox = make(chan Event, n)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) WindowOption {
	return func(w *Window) {
		w.logger = logger
	}
}

// NewWindow creates a window with the given origin.
func NewWindow(origin string, opts ...WindowOption) *Window {
	w := &Window{
		origin: origin,
		inbox:  make(chan Event, DefaultBufferSize),
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Origin returns the window's origin.
func (w *Window) Origin() string {
	return w.origin
}

// OnMessage registers a handler for inbound events.
func (w *Window) OnMessage(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Connect returns a port that posts from w to target.
func (w *Window) Connect(target *Window) Port {
	return &link{from: w, to: target}
}

// Start runs the dispatch loop in a goroutine until ctx is done or the
// window is closed.
func (w *Window) Start(ctx context.Context) {
	go w.run(ctx)
}

// Close stops the dispatch loop. Queued events are discarded.
func (w *Window) Close() {
	w.once.Do(func() {
		w.closed.Store(true)
		close(w.done)
	})
}

func (w *Window) run(ctx context.Context) {
	for {
		select {
		case ev := <-w.inbox:
			w.dispatch(ev)
		case <-ctx.Done():
			w.Close()
			return
		case <-w.done:
			return
		}
	}
}

func (w *Window) dispatch(ev Event) {
	w.mu.RLock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// deliver queues ev, blocking while the inbox is full.
func (w *Window) deliver(ev Event) error {
	if w.closed.Load() {
		return ErrClosed
	}
	select {
	case w.inbox <- ev:
		return nil
	case <-w.done:
		return ErrClosed
	}
}

// link is a port from one window to another.
type link struct {
	from *Window
	to   *Window
}

func (l *link) PostMessage(data []byte, targetOrigin string) error {
	if !MatchOrigin(targetOrigin, l.to.origin) {
		l.from.logger.Debug("message dropped, target origin mismatch",
			"target_origin", targetOrigin,
			"receiver_origin", l.to.origin)
		return nil
	}

	// Receivers get their own copy, like a structured clone.
	msg := make([]byte, len(data))
	copy(msg, data)

	return l.to.deliver(Event{
		Data:   msg,
		Origin: l.from.origin,
		Source: &link{from: l.to, to: l.from},
	})
}
