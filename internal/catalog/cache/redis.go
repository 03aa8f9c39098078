package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/royalti/internal/cache"
	"github.com/smallbiznis/royalti/internal/catalog/domain"
)

const redisKeyPrefix = "royalti:catalog:artist"

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis stores profiles as JSON. A zero ttl keeps them until cleared.
func NewRedis(client *redis.Client, ttl time.Duration) domain.Cache {
	return &redisCache{client: client, ttl: ttl}
}

func (c *redisCache) Get(ctx context.Context, key string) (domain.Artist, bool, error) {
	raw, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Artist{}, false, nil
	}
	if err != nil {
		return domain.Artist{}, false, err
	}

	var artist domain.Artist
	if err := json.Unmarshal(raw, &artist); err != nil {
		return domain.Artist{}, false, err
	}
	return artist, true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value domain.Artist) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, redisKey(key), raw, c.ttl).Err()
}

func (c *redisCache) Clear(ctx context.Context, key string) error {
	return c.client.Del(ctx, redisKey(key)).Err()
}

func redisKey(key string) string {
	return redisKeyPrefix + ":" + cache.Key(key)
}
