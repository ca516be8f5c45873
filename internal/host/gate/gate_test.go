package gate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yndnr/sharedstore-go/internal/protocol"
)

func TestGate_Check(t *testing.T) {
	g := New(Config{Allowed: []string{"https://a.example", "https://b.example"}})

	tests := []struct {
		origin string
		want   bool
	}{
		{"https://a.example", true},
		{"https://b.example", true},
		{"https://c.example", false},
		{"https://a.example:443", false},
		{"", false},
		{"*", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			if got := g.Check(tt.origin); got != tt.want {
				t.Errorf("Check(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestGate_EmptyAllowList(t *testing.T) {
	g := New(Config{})

	if err := g.Admit("https://a.example"); !errors.Is(err, protocol.ErrOriginNotAllowed) {
		t.Errorf("Admit() error = %v, want ErrOriginNotAllowed", err)
	}
}

func TestGate_SetAllowed(t *testing.T) {
	g := New(Config{Allowed: []string{"https://a.example"}})

	g.SetAllowed([]string{"https://c.example", "https://b.example"})

	if g.Check("https://a.example") {
		t.Error("removed origin should be rejected")
	}
	if !g.Check("https://b.example") {
		t.Error("added origin should be accepted")
	}
	if diff := cmp.Diff([]string{"https://b.example", "https://c.example"}, g.Allowed()); diff != "" {
		t.Errorf("Allowed() mismatch (-want +got):\n%s", diff)
	}
}

func TestGate_RateLimit(t *testing.T) {
	g := New(Config{
		Allowed:   []string{"https://a.example", "https://b.example"},
		RateLimit: 2,
	})

	for i := 0; i < 2; i++ {
		if err := g.Admit("https://a.example"); err != nil {
			t.Fatalf("Admit() #%d error = %v", i, err)
		}
	}
	if err := g.Admit("https://a.example"); !errors.Is(err, protocol.ErrRateLimited) {
		t.Errorf("Admit() over burst error = %v, want ErrRateLimited", err)
	}

	// Buckets are per origin.
	if err := g.Admit("https://b.example"); err != nil {
		t.Errorf("Admit(b) error = %v", err)
	}

	g.SetRateLimit(0)
	for i := 0; i < 10; i++ {
		if err := g.Admit("https://a.example"); err != nil {
			t.Fatalf("Admit() with limiting disabled error = %v", err)
		}
	}
}

func TestGate_RejectedBeforeLimit(t *testing.T) {
	g := New(Config{Allowed: []string{"https://a.example"}, RateLimit: 1})

	for i := 0; i < 3; i++ {
		if err := g.Admit("https://evil.example"); !errors.Is(err, protocol.ErrOriginNotAllowed) {
			t.Fatalf("Admit() error = %v, want ErrOriginNotAllowed", err)
		}
	}
	if err := g.Admit("https://a.example"); err != nil {
		t.Errorf("allowed origin should still have its full bucket, got %v", err)
	}
}
