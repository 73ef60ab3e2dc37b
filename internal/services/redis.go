package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cache key names for the spreadsheet snapshots. Write paths that mutate
// the corresponding worksheet must invalidate these explicitly.
const (
	CacheKeyMembers      = "members"
	CacheKeyTransactions = "transactions"
)

const sessionKeyPrefix = "session:"

// RedisCache backs two concerns: the snapshot cache for spreadsheet reads
// and the session store for the auth gate.
type RedisCache struct {
	client *redis.Client
	log    zerolog.Logger
}

// NewRedisCache creates a new Redis client and verifies the connection.
func NewRedisCache(redisURL string, log zerolog.Logger) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Info().Msg("redis connection established")
	return &RedisCache{client: client, log: log}, nil
}

// Set stores a value in cache with expiration.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// Get retrieves a value from cache.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a key from cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// GetOrSet retrieves a value from cache, or calls the callback to fetch and
// cache it. The callback only runs on a cache miss.
func GetOrSet[T any](c *RedisCache, ctx context.Context, key string, expiration time.Duration, fn func() (T, error)) (T, error) {
	var result T

	err := c.Get(ctx, key, &result)
	if err == nil {
		return result, nil
	}

	result, err = fn()
	if err != nil {
		return result, err
	}

	// Cache set errors are not worth failing the read for.
	if err := c.Set(ctx, key, result, expiration); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("failed to cache value")
	}

	return result, nil
}

// CreateSession stores a new session for the given username and returns
// its token.
func (c *RedisCache) CreateSession(ctx context.Context, username string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := c.client.Set(ctx, sessionKeyPrefix+token, username, ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// SessionUsername resolves a session token to the username it was created
// for. Unknown or expired tokens return an error.
func (c *RedisCache) SessionUsername(ctx context.Context, token string) (string, error) {
	return c.client.Get(ctx, sessionKeyPrefix+token).Result()
}

// DeleteSession removes a session token.
func (c *RedisCache) DeleteSession(ctx context.Context, token string) error {
	return c.client.Del(ctx, sessionKeyPrefix+token).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
