package client

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/sharedstore-go/internal/protocol"
)

func TestConversations_NextID(t *testing.T) {
	c := NewConversations(time.Second)

	first := c.NextID()
	if first != c.InstanceID()+"_1" {
		t.Errorf("first id = %q, want %s_1", first, c.InstanceID())
	}

	for i := 2; i <= maxCounter; i++ {
		c.NextID()
	}
	if got := c.NextID(); got != c.InstanceID()+"_0" {
		t.Errorf("id after %d = %q, want wrap to _0", maxCounter, got)
	}
	if got := c.NextID(); got != c.InstanceID()+"_1" {
		t.Errorf("id after wrap = %q, want _1", got)
	}
}

func TestConversations_InstanceIDsDiffer(t *testing.T) {
	a, b := NewConversations(time.Second), NewConversations(time.Second)
	if a.InstanceID() == b.InstanceID() {
		t.Error("two instances share an id")
	}
	if strings.Contains(a.InstanceID(), "_") {
		t.Errorf("instance id %q contains the separator", a.InstanceID())
	}
}

func TestConversations_SettleOnce(t *testing.T) {
	c := NewConversations(time.Hour)
	conv := c.Register(protocol.NewPing("a"))

	if c.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", c.Pending())
	}
	if !c.Settle("a", Result{Keys: []string{"x"}}) {
		t.Fatal("Settle() = false for pending id")
	}
	if c.Settle("a", Result{Err: errors.New("second")}) {
		t.Error("second Settle() should find nothing")
	}
	c.Expire("a")

	r := <-conv.Done()
	if r.Err != nil || len(r.Keys) != 1 {
		t.Errorf("settlement = %+v, want the first result", r)
	}
	select {
	case extra := <-conv.Done():
		t.Errorf("unexpected second settlement %+v", extra)
	default:
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
}

func TestConversations_Timeout(t *testing.T) {
	c := NewConversations(20 * time.Millisecond)
	conv := c.Register(protocol.NewPing("slow"))

	select {
	case r := <-conv.Done():
		if !errors.Is(r.Err, ErrTimeout) {
			t.Errorf("settlement error = %v, want ErrTimeout", r.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("conversation did not expire")
	}

	if c.Settle("slow", Result{}) {
		t.Error("late reply should find no conversation")
	}
	if c.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", c.Pending())
	}
}

func TestConversations_ExpireNow(t *testing.T) {
	c := NewConversations(time.Hour)
	conv := c.Register(protocol.NewPing("a"))

	c.Expire("a")
	if r := <-conv.Done(); !errors.Is(r.Err, ErrTimeout) {
		t.Errorf("Expire() settled with %v", r.Err)
	}
	c.Expire("unknown")
}

func TestConversations_Cancel(t *testing.T) {
	c := NewConversations(time.Hour)
	conv := c.Register(protocol.NewPing("a"))
	errGone := errors.New("gone")

	if !c.Cancel("a", errGone) {
		t.Fatal("Cancel() = false")
	}
	if r := <-conv.Done(); !errors.Is(r.Err, errGone) {
		t.Errorf("Cancel() settled with %v", r.Err)
	}
}

func TestConversations_ReplacedID(t *testing.T) {
	c := NewConversations(time.Hour)
	old := c.Register(protocol.NewPing("dup"))
	fresh := c.Register(protocol.NewPing("dup"))

	if r := <-old.Done(); !errors.Is(r.Err, ErrTimeout) {
		t.Errorf("replaced conversation settled with %v, want ErrTimeout", r.Err)
	}
	if !c.Settle("dup", Result{}) {
		t.Fatal("Settle() should reach the newer conversation")
	}
	if r := <-fresh.Done(); r.Err != nil {
		t.Errorf("fresh settlement = %v", r.Err)
	}
}

func TestConversations_ReplyRacesTimeout(t *testing.T) {
	c := NewConversations(time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		id := fmt.Sprint(i)
		conv := c.Register(protocol.NewPing(id))

		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(time.Millisecond)
			c.Settle(id, Result{})
		}()

		<-conv.Done()
		select {
		case r := <-conv.Done():
			t.Fatalf("conversation %s settled twice, second: %+v", id, r)
		case <-time.After(2 * time.Millisecond):
		}
	}
	wg.Wait()
}
