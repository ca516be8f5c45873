package config

import (
	"time"

	"github.com/yndnr/sharedstore-go/internal/host/engine"
	"github.com/yndnr/sharedstore-go/internal/host/httpserver"
	"github.com/yndnr/sharedstore-go/internal/storage"
)

// Default configuration values.
const (
	DefaultHTTPAddr     = "127.0.0.1:5090"
	DefaultShutdownWait = 10 * time.Second

	DefaultStorageEngine = storage.EngineBadger
	DefaultDataDir       = "/var/lib/sharedstore-host/data"
	DefaultGCInterval    = 10 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default host configuration. No origin is allowed until
// one is configured.
func Default() *HostConfig {
	return &HostConfig{
		Host: HostSection{
			AllowedOrigins: []string{},
			IndexKey:       engine.DefaultIndexKey,
		},
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:         DefaultHTTPAddr,
				MaxBodyBytes: httpserver.DefaultMaxBodyBytes,
				ShutdownWait: DefaultShutdownWait,
			},
		},
		Storage: StorageSection{
			Engine:     DefaultStorageEngine,
			DataDir:    DefaultDataDir,
			GCInterval: DefaultGCInterval,
			SyncWrites: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// StorageConfig converts the storage and security sections for storage.Open.
func (c *HostConfig) StorageConfig() storage.Config {
	badger := storage.DefaultBadgerConfig()
	badger.GCInterval = c.Storage.GCInterval
	badger.SyncWrites = c.Storage.SyncWrites

	return storage.Config{
		Engine:        c.Storage.Engine,
		Dir:           c.Storage.DataDir,
		EncryptionKey: c.Security.EncryptionKey,
		Badger:        badger,
	}
}
