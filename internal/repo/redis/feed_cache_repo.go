package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const feedCacheKey = "wallpapers:feed:v1"

// ErrCacheMiss is the advisory miss result. Callers treat any other error
// the same way after logging it: the cache is an optimization, never a
// dependency.
var ErrCacheMiss = errors.New("feed cache miss")

type FeedCacheRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewFeedCacheRepo(client *goredis.Client, ttl time.Duration) *FeedCacheRepo {
	if ttl <= 0 {
		ttl = 120 * time.Second
	}
	return &FeedCacheRepo{client: client, ttl: ttl}
}

// Get returns the cached serialized feed payload.
func (r *FeedCacheRepo) Get(ctx context.Context) ([]byte, error) {
	if r.client == nil {
		return nil, ErrCacheMiss
	}

	raw, err := r.client.Get(ctx, feedCacheKey).Bytes()
	if err == goredis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get feed cache: %w", err)
	}

	return raw, nil
}

// Set stores the serialized feed payload under the fixed TTL.
func (r *FeedCacheRepo) Set(ctx context.Context, payload []byte) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if len(payload) == 0 {
		return fmt.Errorf("empty cache payload")
	}

	if err := r.client.Set(ctx, feedCacheKey, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("set feed cache: %w", err)
	}

	return nil
}

// Invalidate drops the cached feed so the next read recomputes it. Used
// after admin mutations.
func (r *FeedCacheRepo) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, feedCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate feed cache: %w", err)
	}
	return nil
}
