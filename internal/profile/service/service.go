// Package service runs reconciliation cycles: one extracted document is
// merged into the record store in a single transaction, then its artifacts
// are rendered and registered.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"vitae/internal/extraction"
	"vitae/internal/profile/dates"
	"vitae/internal/profile/identity"
	"vitae/internal/profile/metrics"
	"vitae/internal/profile/models"
	"vitae/internal/profile/store"
	"vitae/internal/profile/upsert"
)

// Extractor produces the structured extraction of a document.
type Extractor interface {
	Extract(ctx context.Context, doc *models.Document) (extraction.Output, error)
}

// Renderer writes one artifact for a committed profile and returns its path
// relative to the artifact root.
type Renderer interface {
	Type() models.VisualizationType
	Render(ctx context.Context, profile *models.Profile, doc *models.Document) (string, error)
}

// Service reconciles documents against the record store.
type Service struct {
	tx        store.TxRunner
	extractor Extractor
	identity  *identity.Service
	upserter  *upsert.Upserter
	renderers []Renderer
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	clock     func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRenderers sets the artifact steps run after each committed cycle.
func WithRenderers(renderers ...Renderer) Option {
	return func(s *Service) {
		s.renderers = renderers
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs a Service. Options are applied before the identity resolver
// and date normalizer are built so both share the logger, clock and metrics.
func New(tx store.TxRunner, extractor Extractor, opts ...Option) *Service {
	s := &Service{
		tx:        tx,
		extractor: extractor,
		logger:    slog.Default(),
		tracer:    otel.Tracer("vitae/internal/profile/service"),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.identity = identity.New(tx, identity.WithLogger(s.logger), identity.WithClock(s.clock))
	s.upserter = upsert.New(dates.NewNormalizer(
		dates.WithLogger(s.logger),
		dates.WithFailureHook(s.metrics.IncrementDateParseFailures),
	))
	return s
}
