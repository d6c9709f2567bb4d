// Package revocation keeps the list of revoked token IDs until the tokens
// would have expired anyway.
package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"vitae/pkg/platform/sentinel"
)

// Store records revoked token IDs for a bounded time.
type Store interface {
	// Put marks jti as revoked for ttl.
	Put(ctx context.Context, jti string, ttl time.Duration) error
	// Contains reports whether jti is currently revoked.
	Contains(ctx context.Context, jti string) (bool, error)
}

// Clock returns the current time.
type Clock func() time.Time

var containsDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "vitae_token_revocation_check_duration_ms",
	Help:    "Latency of token revocation checks in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
}, []string{"backend"})

func observe(backend string, start time.Time) {
	containsDurationMs.WithLabelValues(backend).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

func validate(jti string, ttl time.Duration) error {
	if jti == "" {
		return fmt.Errorf("empty jti: %w", sentinel.ErrInvalidState)
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}
