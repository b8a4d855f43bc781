package rate

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// WindowStore is the fixed-window counter backend.
type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Limit is one fixed-window policy: at most Max hits per Window.
type Limit struct {
	Window time.Duration
	Max    int64
}

type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter applies fixed-window limits keyed by limit name and client IP.
// A broken counter backend fails open: throttling is protection, not a
// correctness requirement, so an unavailable store never blocks traffic.
type Limiter struct {
	store  WindowStore
	logger *zap.Logger
}

func NewLimiter(store WindowStore, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{store: store, logger: logger}
}

func (l *Limiter) Allow(ctx context.Context, name, ip string, limit Limit) Decision {
	if l.store == nil || limit.Max <= 0 || limit.Window <= 0 {
		return Decision{Allowed: true}
	}

	key := "rate:" + name + ":" + ip
	count, ttl, err := l.store.IncrementWindow(ctx, key, limit.Window)
	if err != nil {
		l.logger.Warn("rate counter unavailable, allowing request",
			zap.String("limit", name),
			zap.Error(err),
		)
		return Decision{Allowed: true}
	}

	if count > limit.Max {
		return Decision{Allowed: false, Remaining: 0, RetryAfter: ttl}
	}

	return Decision{Allowed: true, Remaining: limit.Max - count, RetryAfter: ttl}
}
