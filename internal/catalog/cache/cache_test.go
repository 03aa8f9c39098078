package cache

import (
	"context"
	"testing"

	"github.com/smallbiznis/royalti/internal/catalog/domain"
	"github.com/smallbiznis/royalti/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	_, ok, err := c.Get(ctx, "42")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "42", domain.Artist{ExternalID: "abc", Name: "MC Maria"}))
	got, ok, err := c.Get(ctx, "42")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "MC Maria", got.Name)

	require.NoError(t, c.Clear(ctx, "42"))
	_, ok, err = c.Get(ctx, "42")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProvideFallsBackToMemory(t *testing.T) {
	cfg := config.Config{Catalog: config.CatalogConfig{CacheBackend: config.CacheBackendRedis}}
	_, isMemory := Provide(cfg, nil, zap.NewNop()).(*memoryCache)
	assert.True(t, isMemory)
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "royalti:catalog:artist:42", redisKey(" 42 "))
}
