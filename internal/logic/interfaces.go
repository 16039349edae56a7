package logic

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/owlcentral/forecast-api/internal/worker"
)

// RedisClient defines the interface for the forecast cache
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// HistoryQueue defines the interface for the ratings-history writer
type HistoryQueue interface {
	Enqueue(row worker.Row) bool
	QueueDepth() int
}
