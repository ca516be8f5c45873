package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Common errors
var (
	ErrClosed        = errors.New("storage: store closed")
	ErrUnknownEngine = errors.New("storage: unknown engine")
)

// Store is a durable key -> string mapping.
//
// Implementations must be safe for concurrent use. Removing an absent key is
// not an error.
type Store interface {
	// GetItem returns the value stored under key. ok is false if the key
	// does not exist.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key.
	RemoveItem(ctx context.Context, key string) error

	// Close releases the store's resources.
	Close() error
}

// Engine names accepted by Open.
const (
	EngineMemory = "memory"
	EngineBadger = "badger"
)

// Config selects and configures a store.
type Config struct {
	// Engine is "memory" or "badger".
	// Default: "memory"
	Engine string

	// Dir is the data directory of the badger engine.
	Dir string

	// EncryptionKey enables at-rest encryption of values when non-empty.
	EncryptionKey string

	// Badger-specific configuration
	Badger BadgerConfig

	// Registerer, when set, receives the badger size gauges.
	Registerer prometheus.Registerer
}

// Open creates the store described by cfg.
func Open(cfg Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var store Store
	switch cfg.Engine {
	case "", EngineMemory:
		store = NewMemoryStore()
	case EngineBadger:
		b, err := NewBadgerStore(cfg.Dir, cfg.Badger, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Registerer != nil {
			b.RegisterMetrics(cfg.Registerer)
		}
		store = b
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
	}

	if cfg.EncryptionKey != "" {
		sealed, err := NewSealedStore(store, []byte(cfg.EncryptionKey))
		if err != nil {
			store.Close()
			return nil, err
		}
		logger.Info("at-rest encryption enabled", "engine", cfg.Engine)
		return sealed, nil
	}

	return store, nil
}
