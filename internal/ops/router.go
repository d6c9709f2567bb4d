// Package ops serves the operational HTTP surface: liveness, readiness and
// Prometheus metrics.
package ops

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Check probes one dependency for readiness.
type Check func(ctx context.Context) error

type config struct {
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	checks   map[string]Check
	guard    func(http.Handler) http.Handler
	timeout  time.Duration
}

type Option func(*config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithGatherer sets the registry served on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(c *config) {
		c.gatherer = g
	}
}

// WithCheck adds a named readiness probe.
func WithCheck(name string, check Check) Option {
	return func(c *config) {
		c.checks[name] = check
	}
}

// WithMetricsGuard protects /metrics with the given middleware.
func WithMetricsGuard(guard func(http.Handler) http.Handler) Option {
	return func(c *config) {
		c.guard = guard
	}
}

// NewRouter builds the ops router.
func NewRouter(opts ...Option) http.Handler {
	cfg := config{
		logger:   slog.Default(),
		gatherer: prometheus.DefaultGatherer,
		checks:   make(map[string]Check),
		timeout:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", cfg.ready)

	metrics := promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{})
	if cfg.guard != nil {
		metrics = cfg.guard(metrics)
	}
	r.Method(http.MethodGet, "/metrics", metrics)
	return r
}

func (c config) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(c.checks))
	for name, check := range c.checks {
		if err := check(ctx); err != nil {
			c.logger.WarnContext(ctx, "readiness check failed", "check", name, "error", err)
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	writeJSON(w, status, results)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
