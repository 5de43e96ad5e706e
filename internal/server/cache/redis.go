package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "profile:"

// kv is the subset of redis.Cmdable the cache needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisCache struct {
	client kv
	ttl    time.Duration
}

func NewRedisCache(client kv, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func (c *RedisCache) Get(ctx context.Context, userID string) (*models.User, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, false, err
	}
	return &u, true, nil
}

func (c *RedisCache) Set(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyPrefix+user.ID, data, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, keyPrefix+id)
	}
	return c.client.Del(ctx, keys...).Err()
}
