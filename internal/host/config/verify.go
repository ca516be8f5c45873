package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/yndnr/sharedstore-go/internal/storage"
)

// Verify validates the configuration.
func Verify(cfg *HostConfig) error {
	if err := verifyHost(&cfg.Host); err != nil {
		return err
	}
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyHost(cfg *HostSection) error {
	if strings.TrimSpace(cfg.IndexKey) == "" {
		return errors.New("host.index_key is required")
	}
	if cfg.RateLimit < 0 {
		return errors.New("host.rate_limit must not be negative")
	}
	for _, o := range cfg.AllowedOrigins {
		if err := verifyOrigin(o); err != nil {
			return fmt.Errorf("host.allowed_origins: %w", err)
		}
	}
	return nil
}

// verifyOrigin accepts scheme://host[:port] without path, the form browsers
// send in the Origin header.
func verifyOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" || (u.Path != "" && u.Path != "/") || u.RawQuery != "" {
		return fmt.Errorf("invalid origin %q: want scheme://host[:port]", origin)
	}
	if strings.HasSuffix(origin, "/") {
		return fmt.Errorf("invalid origin %q: trailing slash never matches", origin)
	}
	return nil
}

func verifyServer(cfg *ServerSection) error {
	if _, _, err := net.SplitHostPort(cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server.http.addr: %w", err)
	}
	if cfg.HTTP.MaxBodyBytes <= 0 {
		return errors.New("server.http.max_body_bytes must be positive")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Engine {
	case storage.EngineMemory:
		return nil
	case storage.EngineBadger:
	default:
		return fmt.Errorf("storage.engine: unknown engine %q", cfg.Engine)
	}

	if cfg.DataDir == "" {
		return errors.New("storage.data_dir is required")
	}

	// Check if data directory exists or can be created
	if err := os.MkdirAll(cfg.DataDir, 0750); err != nil {
		return errors.New("cannot create data directory: " + err.Error())
	}

	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format: unknown format %q", cfg.Format)
	}
	return nil
}
