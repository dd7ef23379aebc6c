package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "chat_ratelimit:"

type setNXClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisStore shares the table between server instances. The key lives for
// exactly one window, so "key exists" means "accepted within the window".
// SET NX is atomic and a rejected request never touches the key.
type RedisStore struct {
	client setNXClient
	window time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, window time.Duration) *RedisStore {
	return &RedisStore{client: client, window: window, now: time.Now}
}

func (s *RedisStore) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, redisKeyPrefix+key, s.now().UnixMilli(), s.window).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit lookup failed: %w", err)
	}
	return ok, nil
}
