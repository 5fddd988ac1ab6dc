package limiter

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "glt:"

// RedisLimiter is a fixed-window counter shared by every API instance.
type RedisLimiter struct {
	redis  redis.UniversalClient
	config Config
}

func NewRedisLimiter(client redis.UniversalClient, cfg Config) *RedisLimiter {
	return &RedisLimiter{redis: client, config: cfg.normalized()}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	rk := redisKeyPrefix + key
	count, err := l.redis.Incr(ctx, rk).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if count == 1 {
		// the first hit opens the window
		if err := l.redis.Expire(ctx, rk, l.config.Window).Err(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return count <= int64(l.config.maxFor(key)), nil
}
