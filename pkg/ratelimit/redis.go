package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	cfg    Config
}

// NewRedisStore returns a sliding-window store backed by a redis sorted set
// per key, scored by attempt timestamp. Safe to share across instances.
func NewRedisStore(client *redis.Client, cfg Config) Store {
	return &redisStore{client: client, cfg: cfg}
}

func (s *redisStore) key(key string) string {
	return fmt.Sprintf("ratelimit:%s", key)
}

func (s *redisStore) Allow(ctx context.Context, key string) (bool, error) {
	rkey := s.key(key)
	cutoff := time.Now().Add(-s.cfg.Window)

	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, rkey, "0", fmt.Sprintf("%d", cutoff.UnixNano()))
	count := pipe.ZCard(ctx, rkey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	return count.Val() < int64(s.cfg.Limit), nil
}

func (s *redisStore) Record(ctx context.Context, key string) error {
	rkey := s.key(key)
	now := time.Now()

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, rkey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.New().String()),
	})
	pipe.Expire(ctx, rkey, s.cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}
