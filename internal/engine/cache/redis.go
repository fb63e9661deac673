package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"review-rating-engine/internal/common/database"
	"review-rating-engine/internal/common/logger"
	"review-rating-engine/internal/common/metrics"
)

// RedisStore is a TTL cache backed by a shared Redis instance. Redis
// handles expiry itself, so there is no prune pass. Any Redis failure
// is logged and treated as a miss.
type RedisStore struct {
	client *database.RedisClient
	logger logger.Logger
}

func NewRedisStore(client *database.RedisClient, log logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: log.WithFields(map[string]interface{}{"component": "cache.redis"}),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	value, err := s.client.Get(ctx, key)
	if err == redis.Nil {
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return "", false
	}
	if err != nil {
		s.logger.WithError(err).Warn("cache read failed, treating as miss", map[string]interface{}{
			"key": key,
		})
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return "", false
	}

	metrics.CacheRequests.WithLabelValues("hit").Inc()
	return value, true
}

func (s *RedisStore) Put(ctx context.Context, key string, value string, ttl time.Duration) {
	if err := s.client.Set(ctx, key, value, ttl); err != nil {
		s.logger.WithError(err).Warn("cache write failed, entry dropped", map[string]interface{}{
			"key": key,
		})
	}
}
