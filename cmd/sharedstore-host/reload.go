package main

import (
	"fmt"
	"log/slog"

	"github.com/yndnr/sharedstore-go/internal/host/config"
	"github.com/yndnr/sharedstore-go/internal/host/gate"
	"github.com/yndnr/sharedstore-go/internal/infra/confloader"
	"github.com/yndnr/sharedstore-go/internal/telemetry/logger"
)

// watchConfig reloads the config file on change.
func watchConfig(loader *confloader.Loader, g *gate.Gate, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(loader.FilePath()); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(path string) {
		if err := reload(loader, g); err != nil {
			log.Error("config reload rejected, keeping the running settings", "file", path, "error", err)
			return
		}
		log.Info("config reloaded", "file", path,
			"allowed_origins", g.Allowed(),
			"log_level", logger.GetLevel())
	})
	w.StartAsync()
	return w, nil
}

// reload applies the settings that can change at runtime: the allowed
// origins, the rate limit and the log level. Storage and listener settings
// need a restart.
func reload(loader *confloader.Loader, g *gate.Gate) error {
	cfg := config.Default()
	if err := loader.Reload(cfg); err != nil {
		return err
	}
	if err := config.Verify(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	g.SetAllowed(cfg.Host.AllowedOrigins)
	g.SetRateLimit(cfg.Host.RateLimit)
	logger.SetLevel(cfg.LogLevel())
	return nil
}
