// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	gorillaws "github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/rmpd/rmpd/internal/eventbus"
	"github.com/rmpd/rmpd/internal/logging"
	"github.com/rmpd/rmpd/internal/middleware"
	"github.com/rmpd/rmpd/internal/websocket"
)

// HealthCheck reports whether a dependency the companion surface cares
// about (catalog connection, at minimum) is reachable. Returning a non-nil
// error marks /healthz degraded without taking the process down.
type HealthCheck func(ctx context.Context) error

// Config wires the companion surface to the running daemon without
// httpapi importing the root package (which would create an import
// cycle): it depends on eventbus/websocket/metrics, and is in turn
// depended on by the root wiring.
type Config struct {
	// Bus is mirrored to /ws companion clients. Required.
	Bus *eventbus.Bus

	// Health is invoked on every /healthz request. Nil means always healthy.
	Health HealthCheck

	// AllowedOrigins configures CORS for the companion surface. An empty
	// slice disables cross-origin requests entirely (the secure default;
	// a same-host dashboard doesn't need CORS at all).
	AllowedOrigins []string

	// RateLimitRequests/RateLimitWindow bound companion-surface request
	// volume per IP. Zero RateLimitRequests disables rate limiting.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Version is reported at /healthz and embedded in the OpenAPI doc.
	Version string
}

// DefaultConfig returns conservative defaults: no cross-origin access, a
// generous per-IP rate limit sized for dashboard polling rather than
// bulk API use.
func DefaultConfig(bus *eventbus.Bus) Config {
	return Config{
		Bus:               bus,
		AllowedOrigins:    nil,
		RateLimitRequests: 300,
		RateLimitWindow:   time.Minute,
		Version:           "0.24.0",
	}
}

// NewRouter builds the companion HTTP surface's chi.Router. ctx governs the
// lifetime of the background WebSocket hub and its event-bus mirror;
// canceling it (e.g. the supervisor tree stopping the network layer) drains
// every connected dashboard client. NewRouter never touches the catalog or
// queue directly; every handler here is read-only observability, per
// SPEC_FULL.md.
func NewRouter(ctx context.Context, cfg Config) http.Handler {
	hub := websocket.NewHub()
	go hub.RunWithContext(ctx)
	go mirrorBusToHub(ctx, cfg.Bus, hub)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	if cfg.RateLimitRequests > 0 {
		window := cfg.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(httprate.LimitByIP(cfg.RateLimitRequests, window))
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

	r.Get("/healthz", healthzHandler(cfg.Health, cfg.Version))
	r.Handle("/metrics", promhttp.Handler())
	r.With(middleware.Compression).Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))
	r.With(middleware.Compression).Get("/docs/doc.json", openAPIHandler(cfg.Version))
	r.Get("/ws", wsHandler(hub))

	return r
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Error   string `json:"error,omitempty"`
}

func healthzHandler(check HealthCheck, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Version: version}
		code := http.StatusOK

		if check != nil {
			if err := check(r.Context()); err != nil {
				resp.Status = "degraded"
				resp.Error = err.Error()
				code = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		enc := json.NewEncoder(w)
		if err := enc.Encode(resp); err != nil {
			logging.Warn().Err(err).Msg("failed to encode healthz response")
		}
	}
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Companion dashboard only; any origin may observe (read-only, no
	// mutation path). cfg.AllowedOrigins is not consulted here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsHandler upgrades to a WebSocket and registers the client with the hub,
// which fans out the single shared event-bus mirror (mirrorBusToHub) to
// every connected dashboard. It never reads commands back from the client.
func wsHandler(hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := websocket.NewClient(hub, conn)
		hub.Register <- client
		client.Start()
	}
}

// mirrorBusToHub subscribes once, for the hub's whole lifetime, and
// republishes every event bus notification to every connected dashboard
// client. A single shared subscription (rather than one per client) keeps
// eventbus.Bus's per-subscriber lag accounting meaningful: "companion-ws"
// names the hub itself, not an individual browser tab.
func mirrorBusToHub(ctx context.Context, bus *eventbus.Bus, hub *websocket.Hub) {
	if bus == nil {
		return
	}
	sub, err := bus.Subscribe(ctx, "companion-ws")
	if err != nil {
		logging.Warn().Err(err).Msg("companion websocket failed to subscribe to event bus")
		return
	}
	for ev := range sub {
		hub.BroadcastEvent("event", string(ev.Kind), ev.Payload)
	}
}
