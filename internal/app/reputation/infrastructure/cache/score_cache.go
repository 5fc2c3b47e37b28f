package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"wafflemarket/pkg/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	serviceName    = "reputation-service"
	scoreKeyPrefix = "trust_score"
)

// ScoreCache хранит вычисленную температуру доверия в Redis.
// TTL страхует от пропущенной инвалидации, но основной механизм -
// явный Invalidate при мутациях отзывов и событиях Article Service
type ScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewScoreCache создает новый кеш температуры
func NewScoreCache(client *redis.Client, ttl time.Duration) *ScoreCache {
	return &ScoreCache{
		client: client,
		ttl:    ttl,
	}
}

func scoreKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", scoreKeyPrefix, userID.String())
}

// Get возвращает кешированную температуру; ok=false при промахе
func (c *ScoreCache) Get(ctx context.Context, userID uuid.UUID) (float64, bool, error) {
	data, err := c.client.Get(ctx, scoreKey(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			metrics.RecordCacheMiss(serviceName, scoreKeyPrefix)
			return 0, false, nil
		}
		metrics.RecordRedisError(serviceName, "get")
		return 0, false, fmt.Errorf("failed to get trust score from redis: %w", err)
	}

	score, err := strconv.ParseFloat(data, 64)
	if err != nil {
		return 0, false, fmt.Errorf("failed to parse cached trust score: %w", err)
	}

	metrics.RecordCacheHit(serviceName, scoreKeyPrefix)
	return score, true, nil
}

// Set сохраняет температуру с TTL
func (c *ScoreCache) Set(ctx context.Context, userID uuid.UUID, score float64) error {
	value := strconv.FormatFloat(score, 'f', -1, 64)

	if err := c.client.Set(ctx, scoreKey(userID), value, c.ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "set")
		return fmt.Errorf("failed to set trust score in redis: %w", err)
	}

	return nil
}

// Invalidate сбрасывает кешированную температуру пользователя
func (c *ScoreCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, scoreKey(userID)).Err(); err != nil {
		metrics.RecordRedisError(serviceName, "del")
		return fmt.Errorf("failed to invalidate trust score in redis: %w", err)
	}

	return nil
}
