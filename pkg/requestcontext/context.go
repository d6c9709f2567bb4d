// Package requestcontext provides transport-independent context accessors for
// values scoped to one unit of work (a reconciliation cycle, a collapse run).
//
// Usage in services (read values):
//
//	cycleID := requestcontext.CycleID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in workers and tests (inject values):
//
//	ctx = requestcontext.WithCycleID(ctx, uuid.NewString())
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	cycleIDKey     struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyCycleID     = cycleIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// CycleID retrieves the reconciliation cycle identifier from the context.
func CycleID(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyCycleID).(string); ok {
		return id
	}
	return ""
}

// WithCycleID injects a cycle identifier into the context.
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, ContextKeyCycleID, cycleID)
}

// Now retrieves the unit-of-work time from context.
// Falls back to time.Now() if not set.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Workers use it to keep one
// clock reading per cycle; tests use it to pin "today".
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
