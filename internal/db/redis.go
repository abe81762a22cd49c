package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/venturedraft/venturedraft-backend/internal/platform/logger"
	"github.com/venturedraft/venturedraft-backend/internal/utils"
)

// NewRedisClient connects using REDIS_ADDR / REDIS_PASSWORD / REDIS_DB.
// Returns nil when no address is configured or the ping fails; callers
// degrade by disabling rate limiting.
func NewRedisClient(log *logger.Logger) *redis.Client {
	clientLog := log.With("service", "RedisClient")

	addr := utils.GetEnv("REDIS_ADDR", "", log)
	if addr == "" {
		clientLog.Info("REDIS_ADDR not set, rate limiting disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: utils.GetEnv("REDIS_PASSWORD", "", log),
		DB:       utils.GetEnvAsInt("REDIS_DB", 0, log),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		clientLog.Warn("Redis ping failed, rate limiting disabled", "error", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
