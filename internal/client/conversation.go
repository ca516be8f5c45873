package client

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yndnr/sharedstore-go/internal/protocol"
)

// ErrTimeout is the settlement of a conversation that got no reply in time.
var ErrTimeout = errors.New("request timed out")

// maxCounter bounds the per-instance id counter. Ids repeat after wrapping;
// by then earlier conversations have long settled or expired.
const maxCounter = 1023

// Result is the settlement of a conversation.
type Result struct {
	// Value is the stored value returned by a get.
	Value protocol.Value
	// Keys is the key list returned by keys.
	Keys []string
	// Err is non-nil when the request was rejected.
	Err error
}

// Conversation is one outstanding request.
type Conversation struct {
	Request *protocol.Envelope
	Started time.Time

	done  chan Result
	timer *time.Timer
}

// Done delivers the settlement. It receives exactly one value.
func (c *Conversation) Done() <-chan Result {
	return c.done
}

func (c *Conversation) settle(r Result) {
	c.done <- r
}

// Conversations is the table of outstanding requests of one client
// instance. Exactly one of reply, timeout or cancellation settles each
// conversation; later attempts find nothing and are no-ops.
type Conversations struct {
	mu       sync.Mutex
	instance string
	counter  int
	pending  map[string]*Conversation
	timeout  time.Duration

	// onExpire is called after a conversation timed out.
	onExpire func(*Conversation)
}

// NewConversations creates an empty table whose conversations expire after
// timeout.
func NewConversations(timeout time.Duration) *Conversations {
	return &Conversations{
		instance: uuid.NewString(),
		pending:  make(map[string]*Conversation),
		timeout:  timeout,
	}
}

// InstanceID returns the random identity prefixed to every request id.
func (c *Conversations) InstanceID() string {
	return c.instance
}

// NextID returns a new request id: the instance id, "_", and a counter in
// 1..1023 that wraps to 0.
func (c *Conversations) NextID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counter++
	if c.counter > maxCounter {
		c.counter = 0
	}
	return c.instance + "_" + strconv.Itoa(c.counter)
}

// Register opens a conversation for req and starts its timeout. A pending
// conversation with the same id is replaced and rejected with ErrTimeout.
func (c *Conversations) Register(req *protocol.Envelope) *Conversation {
	conv := &Conversation{
		Request: req,
		Started: time.Now(),
		done:    make(chan Result, 1),
	}

	c.mu.Lock()
	stale := c.pending[req.ID]
	c.pending[req.ID] = conv
	conv.timer = time.AfterFunc(c.timeout, func() { c.expire(conv) })
	c.mu.Unlock()

	if stale != nil {
		stale.timer.Stop()
		stale.settle(Result{Err: ErrTimeout})
	}
	return conv
}

// Finalize removes the conversation with id and stops its timeout. ok is
// false when no such conversation is pending.
func (c *Conversations) Finalize(id string) (conv *Conversation, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conv, ok = c.pending[id]
	if !ok {
		return nil, false
	}
	delete(c.pending, id)
	conv.timer.Stop()
	return conv, true
}

// Lookup returns the pending conversation with id without finalizing it.
func (c *Conversations) Lookup(id string) (*Conversation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv, ok := c.pending[id]
	return conv, ok
}

// Settle finalizes id and delivers r. It reports whether a conversation was
// pending.
func (c *Conversations) Settle(id string, r Result) bool {
	conv, ok := c.Finalize(id)
	if !ok {
		return false
	}
	conv.settle(r)
	return true
}

// Expire rejects id with ErrTimeout if it is still pending.
func (c *Conversations) Expire(id string) {
	c.mu.Lock()
	conv := c.pending[id]
	c.mu.Unlock()

	if conv != nil {
		c.expire(conv)
	}
}

// Cancel rejects id with err if it is still pending.
func (c *Conversations) Cancel(id string, err error) bool {
	return c.Settle(id, Result{Err: err})
}

// Pending returns the number of outstanding conversations.
func (c *Conversations) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// expire settles conv with ErrTimeout unless it was already finalized or
// replaced by a newer conversation with the same id.
func (c *Conversations) expire(conv *Conversation) {
	c.mu.Lock()
	if c.pending[conv.Request.ID] != conv {
		c.mu.Unlock()
		return
	}
	delete(c.pending, conv.Request.ID)
	c.mu.Unlock()

	conv.settle(Result{Err: ErrTimeout})
	if c.onExpire != nil {
		c.onExpire(conv)
	}
}
