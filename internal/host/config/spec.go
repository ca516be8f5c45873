package config

import "time"

// HostConfig is the root configuration for sharedstore-host.
type HostConfig struct {
	Host     HostSection     `koanf:"host"`
	Server   ServerSection   `koanf:"server"`
	Storage  StorageSection  `koanf:"storage"`
	Security SecuritySection `koanf:"security"`
	Log      LogSection      `koanf:"log"`
}

// HostSection configures the protocol host.
type HostSection struct {
	// AllowedOrigins lists the sender origins the host answers. Matching is
	// exact.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// IndexKey is the reserved key holding the known-key index.
	IndexKey string `koanf:"index_key"`

	// RateLimit is the number of messages per second accepted from one
	// origin. Zero disables limiting.
	RateLimit int `koanf:"rate_limit"`

	// Debug forces the debug log level.
	Debug bool `koanf:"debug"`
}

// ServerSection configures the HTTP bridge.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr         string        `koanf:"addr"`
	MaxBodyBytes int64         `koanf:"max_body_bytes"`
	ShutdownWait time.Duration `koanf:"shutdown_wait"`
}

// StorageSection configures the durable store.
type StorageSection struct {
	// Engine is "memory" or "badger".
	Engine  string `koanf:"engine"`
	DataDir string `koanf:"data_dir"`

	GCInterval time.Duration `koanf:"gc_interval"`
	SyncWrites bool          `koanf:"sync_writes"`
}

// SecuritySection configures security settings.
type SecuritySection struct {
	// EncryptionKey enables at-rest encryption of stored values.
	EncryptionKey string `koanf:"encryption_key"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// LogLevel returns the effective log level, honoring the debug toggle.
func (c *HostConfig) LogLevel() string {
	if c.Host.Debug {
		return "debug"
	}
	return c.Log.Level
}
