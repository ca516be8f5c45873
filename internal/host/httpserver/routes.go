package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/yndnr/sharedstore-go/internal/channel"
	"github.com/yndnr/sharedstore-go/internal/host/engine"
	"github.com/yndnr/sharedstore-go/internal/host/gate"
	"github.com/yndnr/sharedstore-go/internal/host/router"
	"github.com/yndnr/sharedstore-go/internal/protocol"
	"github.com/yndnr/sharedstore-go/internal/telemetry/metric"
)

// DefaultMaxBodyBytes bounds the size of one posted envelope.
const DefaultMaxBodyBytes = 1 << 20

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Router  *router.Router
	Engine  *engine.Engine
	Gate    *gate.Gate
	Metrics *metric.Registry
	Logger  *slog.Logger

	// MaxBodyBytes bounds the request body of POST /message.
	// Default: DefaultMaxBodyBytes
	MaxBodyBytes int64
}

// NewRouter creates the HTTP handler with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	mux := http.NewServeMux()
	mux.Handle("POST "+channel.MessagePath, handleMessage(cfg))
	mux.HandleFunc("GET /health", handleHealth(cfg))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	return Chain(mux,
		RequestID(),
		Recover(cfg.Logger),
		Audit(cfg.Logger),
		CORS(cfg.Gate.Check),
	)
}

// handleMessage handles POST /message.
func handleMessage(cfg *RouterConfig) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, cfg.MaxBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "message too large")
				return
			}
			writeError(w, http.StatusBadRequest, "read body failed")
			return
		}

		reply := cfg.Router.Handle(r.Context(), r.Header.Get("Origin"), body)
		data, err := protocol.Encode(reply)
		if err != nil {
			cfg.Logger.Error("encode reply failed",
				"request_id", GetRequestIDFromContext(r.Context()),
				"error", err)
			writeError(w, http.StatusInternalServerError, "encode reply failed")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	})
}

// handleHealth handles GET /health.
func handleHealth(cfg *RouterConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		}
		if cfg.Engine != nil {
			resp["keys"] = cfg.Engine.Len()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(resp)
	}
}
