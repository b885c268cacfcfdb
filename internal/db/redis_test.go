package db_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Smarty6452/hbros-platform/backend/internal/config"
	"github.com/Smarty6452/hbros-platform/backend/internal/db"
)

func redisConfig(t *testing.T, s *miniredis.Miniredis) *config.Config {
	t.Helper()
	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Redis.Host = s.Host()
	cfg.Redis.Port = port
	cfg.Redis.ConnectTimeout = 2
	cfg.Redis.OperationTimeout = 5
	return cfg
}

func TestNewRedisClient_AppliesTimeouts(t *testing.T) {
	s := miniredis.RunT(t)

	rdb, err := db.NewRedisClient(context.Background(), redisConfig(t, s))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	opts := rdb.Options()
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
	assert.Equal(t, 5*time.Second, opts.ReadTimeout)
	assert.Equal(t, 5*time.Second, opts.WriteTimeout)
}

func TestNewRedisClient_FailsWhenUnreachable(t *testing.T) {
	s := miniredis.RunT(t)
	cfg := redisConfig(t, s)
	s.Close()

	_, err := db.NewRedisClient(context.Background(), cfg)
	assert.Error(t, err)
}
