package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Smarty6452/hbros-platform/backend/internal/config"
)

// NewRedisClient creates and verifies a Redis client connection.
// OperationTimeout bounds each command; pub/sub receives are not bound by it.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opTimeout := time.Duration(cfg.Redis.OperationTimeout) * time.Second
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:     cfg.Redis.Password,
		DB:           0,
		DialTimeout:  time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Redis.ConnectTimeout)*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}
