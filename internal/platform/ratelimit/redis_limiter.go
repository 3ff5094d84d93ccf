// Package ratelimit throttles cast attempts per voter and category over
// fixed Redis windows. It guards the write path against scripted re-voting;
// it never affects reads.
package ratelimit

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marcelojr/awards/internal/domain"
)

var ErrRateLimitExceeded = fmt.Errorf("cast limit reached")

// RedisLimiter counts casts per (voter, category) in fixed windows via
// INCR + EXPIRE.
type RedisLimiter struct {
	client    *redis.Client
	limit     int
	window    time.Duration
	keyPrefix string
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{
		client:    client,
		limit:     limit,
		window:    window,
		keyPrefix: prefix,
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, voterID domain.VoterID, categoryID domain.CategoryID) error {
	if r.client == nil || r.limit <= 0 || r.window <= 0 {
		// Invalid configuration falls back to permissive mode.
		return nil
	}

	key := r.buildKey(voterID, categoryID)
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("ratelimit: incr: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, r.window).Err(); err != nil {
			return fmt.Errorf("ratelimit: expire: %w", err)
		}
	}

	if int(count) > r.limit {
		return ErrRateLimitExceeded
	}

	return nil
}

func (r *RedisLimiter) buildKey(voterID domain.VoterID, categoryID domain.CategoryID) string {
	// SHA-1 keeps voter ids out of Redis keys and the prefix tidy.
	base := fmt.Sprintf("%s|%s", voterID, categoryID)
	hash := sha1.Sum([]byte(base))
	return fmt.Sprintf("%s:%s", r.keyPrefix, hex.EncodeToString(hash[:]))
}

var _ domain.RateLimiter = (*RedisLimiter)(nil)
