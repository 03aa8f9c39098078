package cache

import (
	"context"

	"github.com/smallbiznis/royalti/internal/cache"
	"github.com/smallbiznis/royalti/internal/catalog/domain"
)

// memoryCache keeps profiles until they are cleared.
type memoryCache struct {
	items cache.Cache[string, domain.Artist]
}

func NewMemory() domain.Cache {
	return &memoryCache{items: cache.NewTTLCache[string, domain.Artist]()}
}

func (c *memoryCache) Get(_ context.Context, key string) (domain.Artist, bool, error) {
	artist, ok := c.items.Get(cache.Key(key))
	return artist, ok, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value domain.Artist) error {
	c.items.Set(cache.Key(key), value, 0)
	return nil
}

func (c *memoryCache) Clear(_ context.Context, key string) error {
	c.items.Delete(cache.Key(key))
	return nil
}
