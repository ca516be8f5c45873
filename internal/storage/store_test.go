package storage

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

// openStores returns one instance of every Store implementation.
func openStores(t *testing.T) map[string]Store {
	t.Helper()

	badgerCfg := DefaultBadgerConfig()
	badgerCfg.GCInterval = 0
	badgerCfg.SyncWrites = false
	bs, err := NewBadgerStore(t.TempDir(), badgerCfg, slog.Default())
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}

	sealed, err := NewSealedStore(NewMemoryStore(), []byte("secret"))
	if err != nil {
		t.Fatalf("NewSealedStore() error = %v", err)
	}

	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"badger": bs,
		"sealed": sealed,
	}
	t.Cleanup(func() {
		for _, s := range stores {
			s.Close()
		}
	})
	return stores
}

func TestStore_Operations(t *testing.T) {
	ctx := context.Background()

	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, ok, err := s.GetItem(ctx, "missing"); err != nil || ok {
				t.Fatalf("GetItem(missing) = ok %v, err %v; want false, nil", ok, err)
			}

			if err := s.SetItem(ctx, "a", `{"x":1}`); err != nil {
				t.Fatalf("SetItem() error = %v", err)
			}
			got, ok, err := s.GetItem(ctx, "a")
			if err != nil || !ok {
				t.Fatalf("GetItem(a) = ok %v, err %v", ok, err)
			}
			if got != `{"x":1}` {
				t.Errorf("GetItem(a) = %q, want %q", got, `{"x":1}`)
			}

			if err := s.SetItem(ctx, "a", "2"); err != nil {
				t.Fatalf("SetItem() overwrite error = %v", err)
			}
			if got, _, _ := s.GetItem(ctx, "a"); got != "2" {
				t.Errorf("GetItem(a) after overwrite = %q, want %q", got, "2")
			}

			if err := s.RemoveItem(ctx, "a"); err != nil {
				t.Fatalf("RemoveItem() error = %v", err)
			}
			if _, ok, _ := s.GetItem(ctx, "a"); ok {
				t.Error("GetItem(a) after remove should miss")
			}

			if err := s.RemoveItem(ctx, "never-set"); err != nil {
				t.Errorf("RemoveItem(absent) error = %v, want nil", err)
			}
		})
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	s.SetItem(context.Background(), "k", "v")
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
	s.Close()

	if _, _, err := s.GetItem(context.Background(), "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("GetItem() after Close error = %v, want ErrClosed", err)
	}
	if err := s.SetItem(context.Background(), "k", "v"); !errors.Is(err, ErrClosed) {
		t.Errorf("SetItem() after Close error = %v, want ErrClosed", err)
	}
}

func TestBadgerStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := DefaultBadgerConfig()
	cfg.GCInterval = 0

	s, err := NewBadgerStore(dir, cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetItem(ctx, "persist", "yes"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = NewBadgerStore(dir, cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	got, ok, err := s.GetItem(ctx, "persist")
	if err != nil || !ok || got != "yes" {
		t.Errorf("GetItem(persist) = %q, %v, %v; want yes, true, nil", got, ok, err)
	}
}

func TestBadgerStore_Closed(t *testing.T) {
	cfg := DefaultBadgerConfig()
	cfg.InMemory = true
	s, err := NewBadgerStore("", cfg, slog.Default())
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := s.SetItem(context.Background(), "k", "v"); !errors.Is(err, ErrClosed) {
		t.Errorf("SetItem() after Close error = %v, want ErrClosed", err)
	}
}

func TestBadgerStore_RequiresDir(t *testing.T) {
	if _, err := NewBadgerStore("", DefaultBadgerConfig(), nil); err == nil {
		t.Error("NewBadgerStore(\"\") should fail without InMemory")
	}
}

func TestSealedStore(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryStore()

	s, err := NewSealedStore(inner, []byte("k1"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetItem(ctx, "doc", "plaintext"); err != nil {
		t.Fatal(err)
	}

	t.Run("ciphertext at rest", func(t *testing.T) {
		raw, ok, _ := inner.GetItem(ctx, "doc")
		if !ok || raw == "plaintext" {
			t.Errorf("inner value = %q, want sealed", raw)
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		other, _ := NewSealedStore(inner, []byte("k2"))
		if _, _, err := other.GetItem(ctx, "doc"); !errors.Is(err, ErrCorrupted) {
			t.Errorf("GetItem() with wrong key error = %v, want ErrCorrupted", err)
		}
	})

	t.Run("value moved to another key", func(t *testing.T) {
		raw, _, _ := inner.GetItem(ctx, "doc")
		inner.SetItem(ctx, "moved", raw)
		if _, _, err := s.GetItem(ctx, "moved"); !errors.Is(err, ErrCorrupted) {
			t.Errorf("GetItem(moved) error = %v, want ErrCorrupted", err)
		}
	})

	t.Run("not base64", func(t *testing.T) {
		inner.SetItem(ctx, "junk", "%%%")
		if _, _, err := s.GetItem(ctx, "junk"); !errors.Is(err, ErrCorrupted) {
			t.Errorf("GetItem(junk) error = %v, want ErrCorrupted", err)
		}
	})

	t.Run("empty secret", func(t *testing.T) {
		if _, err := NewSealedStore(inner, nil); err == nil {
			t.Error("NewSealedStore(nil) should fail")
		}
	})
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"default memory", Config{}, nil},
		{"memory sealed", Config{Engine: EngineMemory, EncryptionKey: "x"}, nil},
		{"badger", Config{Engine: EngineBadger, Dir: t.TempDir(), Badger: BadgerConfig{SyncWrites: true}}, nil},
		{"unknown", Config{Engine: "etcd"}, ErrUnknownEngine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.cfg, slog.Default())
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Open() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer s.Close()

			if tt.cfg.EncryptionKey != "" {
				if _, ok := s.(*SealedStore); !ok {
					t.Errorf("Open() = %T, want *SealedStore", s)
				}
			}
		})
	}
}
