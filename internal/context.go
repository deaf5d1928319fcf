package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextCollectorKey ctxKey = "collectorID"

func CollectorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if collectorID, ok := ctx.Value(ContextCollectorKey).(string); ok {
		return collectorID
	}
	return ""
}

func ContextWithCollectorID(ctx context.Context, collectorID string) context.Context {
	return context.WithValue(ctx, ContextCollectorKey, collectorID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
