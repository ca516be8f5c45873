// Package engine executes storage commands against a durable store.
//
// The engine owns the known-key index: the ordered list of every user key
// that has a value. The index is persisted under a reserved key after each
// change and is never reachable through the storage commands themselves.
package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/yndnr/sharedstore-go/internal/protocol"
	"github.com/yndnr/sharedstore-go/internal/storage"
	"github.com/yndnr/sharedstore-go/internal/telemetry/metric"
)

// DefaultIndexKey is the store key holding the known-key index.
const DefaultIndexKey = "___sshKeyList___"

// Config configures an Engine.
type Config struct {
	// IndexKey is the reserved key of the index.
	// Default: DefaultIndexKey
	IndexKey string

	Logger  *slog.Logger
	Metrics *metric.Registry
}

// Engine runs one storage command at a time.
type Engine struct {
	mu       sync.Mutex
	store    storage.Store
	indexKey string
	keys     []string

	logger  *slog.Logger
	metrics *metric.Registry
}

// New loads the index from store, creating an empty one when none exists.
func New(ctx context.Context, store storage.Store, cfg Config) (*Engine, error) {
	if cfg.IndexKey == "" {
		cfg.IndexKey = DefaultIndexKey
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	e := &Engine{
		store:    store,
		indexKey: cfg.IndexKey,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}

	e.logger.Debug("initial read of list with known keys", "index_key", e.indexKey)
	raw, ok, err := store.GetItem(ctx, e.indexKey)
	if err != nil {
		return nil, fmt.Errorf("engine: read index: %w", err)
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &e.keys); err != nil {
			return nil, fmt.Errorf("engine: decode index %q: %w", e.indexKey, err)
		}
	}
	if e.keys == nil {
		e.logger.Debug("known key list does not exist yet, creating empty list")
		e.keys = []string{}
		if err := e.persistIndex(ctx); err != nil {
			return nil, err
		}
	}

	e.metrics.SetKnownKeys(len(e.keys))
	return e, nil
}

// IndexKey returns the reserved key of the index.
func (e *Engine) IndexKey() string {
	return e.indexKey
}

// Execute runs the command of req and returns the reply to send for the
// request with the given id. An unknown command yields a 990 storage_error.
func (e *Engine) Execute(ctx context.Context, id string, req protocol.StorageRequest) *protocol.Envelope {
	switch req.Cmd {
	case protocol.CmdGet:
		return e.Get(ctx, id, req.Key)
	case protocol.CmdSet:
		return e.Set(ctx, id, req.Key, req.Value)
	case protocol.CmdUpdate:
		return e.Update(ctx, id, req.Key, req.Value)
	case protocol.CmdDelete:
		return e.Delete(ctx, id, req.Key)
	case protocol.CmdKeys:
		return e.Keys(ctx, id)
	default:
		e.logger.Error("unknown storage command received", "cmd", string(req.Cmd))
		e.metrics.RecordStorageOp(string(req.Cmd), outcome(protocol.ErrUnknownCommand))
		return protocol.NewStorageError(id, protocol.ErrUnknownCommand)
	}
}

// Get replies with the stored value of key, or null when key is not
// indexed.
func (e *Engine) Get(ctx context.Context, id, key string) *protocol.Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.indexed(key) {
		e.logger.Debug("attempt to read unknown key, returning null", "key", key)
		e.metrics.RecordStorageOp(string(protocol.CmdGet), "miss")
		return protocol.NewStorageContent(id, key, protocol.Null)
	}

	value, err := e.read(ctx, key)
	if err != nil {
		return e.storeFailure(id, protocol.CmdGet, key, err)
	}
	e.metrics.RecordStorageOp(string(protocol.CmdGet), "ok")
	return protocol.NewStorageContent(id, key, value)
}

// Set creates key. It fails with 999 for the reserved key and with 900 when
// key already exists.
func (e *Engine) Set(ctx context.Context, id, key string, value protocol.Value) *protocol.Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()

	if key == e.indexKey {
		e.logger.Error("attempt to manipulate the internal key list directly, operation aborted", "key", key)
		return e.reject(id, protocol.CmdSet, protocol.ErrReservedKey)
	}
	if e.indexed(key) {
		e.logger.Warn("attempt to set already existing key, operation aborted", "key", key)
		return e.reject(id, protocol.CmdSet, protocol.ErrSetExisting)
	}

	if err := e.store.SetItem(ctx, key, encode(value)); err != nil {
		return e.storeFailure(id, protocol.CmdSet, key, err)
	}

	e.keys = append(e.keys, key)
	if err := e.persistIndex(ctx); err != nil {
		e.keys = e.keys[:len(e.keys)-1]
		if rerr := e.store.RemoveItem(ctx, key); rerr != nil {
			e.logger.Error("rollback of new item failed", "key", key, "error", rerr)
		}
		return e.storeFailure(id, protocol.CmdSet, key, err)
	}

	return e.echo(ctx, id, protocol.CmdSet, key)
}

// Update replaces the value of an indexed key. It fails with 910 otherwise,
// which includes the reserved key.
func (e *Engine) Update(ctx context.Context, id, key string, value protocol.Value) *protocol.Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.indexed(key) {
		e.logger.Warn("attempt to update not existing key, operation aborted", "key", key)
		return e.reject(id, protocol.CmdUpdate, protocol.ErrUpdateMissing)
	}

	if err := e.store.SetItem(ctx, key, encode(value)); err != nil {
		return e.storeFailure(id, protocol.CmdUpdate, key, err)
	}
	return e.echo(ctx, id, protocol.CmdUpdate, key)
}

// Delete removes an indexed key. A key that is not indexed yields a failed
// storage_delete reply with code 920.
func (e *Engine) Delete(ctx context.Context, id, key string) *protocol.Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := slices.Index(e.keys, key)
	if idx == -1 {
		e.logger.Warn("attempt to delete not existing key, operation aborted", "key", key)
		e.metrics.RecordStorageOp(string(protocol.CmdDelete), outcome(protocol.ErrDeleteMissing))
		return protocol.NewStorageDeleteFailed(id, key, protocol.ErrDeleteMissing)
	}

	// Kept to restore the item if the index cannot be written.
	old, hadOld, err := e.store.GetItem(ctx, key)
	if err != nil {
		return e.deleteFailure(id, key, err)
	}
	if err := e.store.RemoveItem(ctx, key); err != nil {
		return e.deleteFailure(id, key, err)
	}

	e.keys = slices.Delete(e.keys, idx, idx+1)
	if err := e.persistIndex(ctx); err != nil {
		e.keys = slices.Insert(e.keys, idx, key)
		if hadOld {
			if rerr := e.store.SetItem(ctx, key, old); rerr != nil {
				e.logger.Error("rollback of deleted item failed", "key", key, "error", rerr)
			}
		}
		return e.deleteFailure(id, key, err)
	}

	e.metrics.RecordStorageOp(string(protocol.CmdDelete), "ok")
	return protocol.NewStorageDeleted(id, key)
}

// Keys replies with a copy of the index.
func (e *Engine) Keys(_ context.Context, id string) *protocol.Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.metrics.RecordStorageOp(string(protocol.CmdKeys), "ok")
	return protocol.NewStorageKeys(id, slices.Clone(e.keys))
}

// Len returns the number of indexed keys.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.keys)
}

func (e *Engine) indexed(key string) bool {
	return slices.Contains(e.keys, key)
}

// echo re-reads key so the reply carries what the store actually holds.
func (e *Engine) echo(ctx context.Context, id string, cmd protocol.Command, key string) *protocol.Envelope {
	value, err := e.read(ctx, key)
	if err != nil {
		return e.storeFailure(id, cmd, key, err)
	}
	e.metrics.RecordStorageOp(string(cmd), "ok")
	return protocol.NewStorageContent(id, key, value)
}

// read returns the stored value of key. A missing item reads as null.
func (e *Engine) read(ctx context.Context, key string) (protocol.Value, error) {
	raw, ok, err := e.store.GetItem(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return protocol.Null, nil
	}
	return protocol.Value(raw), nil
}

func (e *Engine) persistIndex(ctx context.Context) error {
	data, err := json.Marshal(e.keys)
	if err != nil {
		return fmt.Errorf("engine: encode index: %w", err)
	}
	if err := e.store.SetItem(ctx, e.indexKey, string(data)); err != nil {
		return fmt.Errorf("engine: persist index: %w", err)
	}
	e.metrics.SetKnownKeys(len(e.keys))
	return nil
}

func (e *Engine) reject(id string, cmd protocol.Command, detail *protocol.ErrorDetail) *protocol.Envelope {
	e.metrics.RecordStorageOp(string(cmd), outcome(detail))
	return protocol.NewStorageError(id, detail)
}

func (e *Engine) storeFailure(id string, cmd protocol.Command, key string, err error) *protocol.Envelope {
	e.logger.Error("store access failed", "cmd", string(cmd), "key", key, "error", err)
	return e.reject(id, cmd, protocol.ErrStoreFailure)
}

func (e *Engine) deleteFailure(id, key string, err error) *protocol.Envelope {
	e.logger.Error("store access failed", "cmd", string(protocol.CmdDelete), "key", key, "error", err)
	e.metrics.RecordStorageOp(string(protocol.CmdDelete), outcome(protocol.ErrStoreFailure))
	return protocol.NewStorageDeleteFailed(id, key, protocol.ErrStoreFailure)
}

func outcome(detail *protocol.ErrorDetail) string {
	return strconv.Itoa(detail.ID)
}

// encode returns the text stored for value. Valid JSON is compacted; an
// absent value is stored as null.
func encode(value protocol.Value) string {
	if value.IsNull() {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, value); err != nil {
		return string(value)
	}
	return buf.String()
}
