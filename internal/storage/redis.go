package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sunghyun2815/music-news-automation/internal/logger"
)

const redisKeyPrefix = "musicnews:notified:"

// RedisStore keeps delivery state as per-article keys with a TTL, so expiry
// is handled by Redis itself rather than by cleanup passes.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// IsNotified degrades to "not notified" on connection trouble, same policy
// as the other backends.
func (rs *RedisStore) IsNotified(id string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := rs.client.Exists(ctx, redisKeyPrefix+id).Result()
	if err != nil {
		logger.Warn("delivery state lookup failed", "article_id", id, "error", err)
		return false
	}
	return n > 0
}

func (rs *RedisStore) MarkNotified(rec DeliveryRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if rec.NotifiedAt.IsZero() {
		rec.NotifiedAt = time.Now()
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal delivery record: %w", err)
	}
	if err := rs.client.Set(ctx, redisKeyPrefix+rec.ID, payload, rs.ttl).Err(); err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
