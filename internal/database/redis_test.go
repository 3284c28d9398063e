package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
)

func TestRedisOptions(t *testing.T) {
	opts, err := redisOptions(&config.Config{RedisHost: "cache", RedisPort: "6380", RedisDB: 2})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	opts, err = redisOptions(&config.Config{RedisHost: "ignored", RedisURL: "redis://:pw@redis:6379/1"})
	require.NoError(t, err)
	assert.Equal(t, "redis:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 1, opts.DB)

	_, err = redisOptions(&config.Config{RedisURL: "http://not-redis"})
	assert.Error(t, err)
}

func TestNewRedisClientUnreachable(t *testing.T) {
	_, err := NewRedisClient(&config.Config{RedisHost: "127.0.0.1", RedisPort: "1"})
	assert.Error(t, err)
}
