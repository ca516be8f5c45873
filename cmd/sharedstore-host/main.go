package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/yndnr/sharedstore-go/internal/host/config"
	"github.com/yndnr/sharedstore-go/internal/host/engine"
	"github.com/yndnr/sharedstore-go/internal/host/gate"
	"github.com/yndnr/sharedstore-go/internal/host/httpserver"
	"github.com/yndnr/sharedstore-go/internal/host/router"
	"github.com/yndnr/sharedstore-go/internal/infra/buildinfo"
	"github.com/yndnr/sharedstore-go/internal/infra/confloader"
	"github.com/yndnr/sharedstore-go/internal/infra/shutdown"
	"github.com/yndnr/sharedstore-go/internal/storage"
	"github.com/yndnr/sharedstore-go/internal/telemetry/logger"
	"github.com/yndnr/sharedstore-go/internal/telemetry/metric"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// flags holds the command line. Flags that were not given do not override
// the file or the environment.
type flags struct {
	configFile  string
	showVersion bool
	overrides   map[string]any
}

func parseFlags(args []string) (*flags, error) {
	fs := flag.NewFlagSet("sharedstore-host", flag.ContinueOnError)
	var (
		configFile  = fs.String("config", "", "Path to configuration file")
		showVersion = fs.Bool("version", false, "Show version information")
		addr        = fs.String("addr", "", "HTTP listen address")
		debug       = fs.Bool("debug", false, "Enable debug output")
		dataDir     = fs.String("data-dir", "", "Storage data directory")
		engineName  = fs.String("storage", "", "Storage engine: memory or badger")
	)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	f := &flags{
		configFile:  *configFile,
		showVersion: *showVersion,
		overrides:   make(map[string]any),
	}
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "addr":
			f.overrides["server.http.addr"] = *addr
		case "debug":
			f.overrides["host.debug"] = *debug
		case "data-dir":
			f.overrides["storage.data_dir"] = *dataDir
		case "storage":
			f.overrides["storage.engine"] = *engineName
		}
	})
	return f, nil
}

func run(args []string) error {
	f, err := parseFlags(args)
	if err != nil {
		return err
	}
	if f.showVersion {
		fmt.Printf("sharedstore-host %s\n", buildinfo.String())
		return nil
	}

	loader, cfg, err := loadConfig(f)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting sharedstore-host",
		"version", info.Version,
		"commit", info.Commit,
		"config", f.configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	h, err := newHost(context.Background(), cfg, log)
	if err != nil {
		return err
	}

	shutdownHandler := shutdown.NewHandler(cfg.Server.HTTP.ShutdownWait, log)

	// Hooks run in reverse order: HTTP first, the store last.
	shutdownHandler.OnShutdown("storage", func(ctx context.Context) error {
		return h.store.Close()
	})

	if f.configFile != "" {
		w, err := watchConfig(loader, h.gate, log)
		if err != nil {
			log.Warn("config file not watched, reload disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(ctx context.Context) error {
				return w.Stop()
			})
		}
	}

	shutdownHandler.OnShutdown("http", func(ctx context.Context) error {
		return h.server.Shutdown(ctx)
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP bridge listening", "addr", cfg.Server.HTTP.Addr,
			"allowed_origins", h.gate.Allowed())
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			serveErr <- err
			shutdownHandler.Trigger()
		}
	}()

	if err := shutdownHandler.Wait(context.Background()); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	default:
	}

	log.Info("host stopped gracefully")
	return nil
}

// host bundles the running components.
type host struct {
	store  storage.Store
	engine *engine.Engine
	gate   *gate.Gate
	server *httpserver.Server
}

// newHost opens the store and wires the engine, gate, router and HTTP bridge.
func newHost(ctx context.Context, cfg *config.HostConfig, log *slog.Logger) (*host, error) {
	if log == nil {
		log = slog.Default()
	}
	metrics := metric.NewRegistry()

	storeCfg := cfg.StorageConfig()
	storeCfg.Registerer = metrics.Registerer()
	store, err := storage.Open(storeCfg, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	eng, err := engine.New(ctx, store, engine.Config{
		IndexKey: cfg.Host.IndexKey,
		Logger:   log,
		Metrics:  metrics,
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init engine: %w", err)
	}

	g := gate.New(gate.Config{
		Allowed:   cfg.Host.AllowedOrigins,
		RateLimit: cfg.Host.RateLimit,
		Logger:    log,
		Metrics:   metrics,
	})
	if len(cfg.Host.AllowedOrigins) == 0 {
		log.Warn("no allowed origins configured, every message will be refused")
	}

	handler := httpserver.NewRouter(&httpserver.RouterConfig{
		Router:       router.New(g, eng, log, metrics),
		Engine:       eng,
		Gate:         g,
		Metrics:      metrics,
		Logger:       log,
		MaxBodyBytes: cfg.Server.HTTP.MaxBodyBytes,
	})

	return &host{
		store:  store,
		engine: eng,
		gate:   g,
		server: httpserver.New(cfg.Server.HTTP.Addr, handler),
	}, nil
}

// loadConfig layers defaults, the config file, SHAREDSTORE_ environment
// variables and command-line flags, then validates the result.
func loadConfig(f *flags) (*confloader.Loader, *config.HostConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{}
	if f.configFile != "" {
		opts = append(opts, confloader.WithConfigFile(f.configFile))
	}
	loader := confloader.NewLoader(opts...)

	if len(f.overrides) > 0 {
		if err := loader.LoadMap(f.overrides); err != nil {
			return nil, nil, err
		}
	}
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return loader, cfg, nil
}

func initLogger(cfg *config.HostConfig) (*slog.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.LogLevel(),
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}
