package warmer

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Rebuilder recomputes the feed and re-primes its cache.
type Rebuilder interface {
	Rebuild(ctx context.Context) ([]byte, error)
}

// Warmer keeps the feed cache primed so clients rarely pay the rebuild
// cost. A failed tick is logged and the loop keeps going.
type Warmer struct {
	feed     Rebuilder
	interval time.Duration
	logger   *zap.Logger
}

func New(feed Rebuilder, interval time.Duration, logger *zap.Logger) *Warmer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	return &Warmer{feed: feed, interval: interval, logger: logger}
}

func (w *Warmer) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("feed cache warmer started", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("feed cache warmer stopped")
			return
		case <-ticker.C:
			if _, err := w.feed.Rebuild(ctx); err != nil {
				w.logger.Warn("feed cache warm failed", zap.Error(err))
			}
		}
	}
}
