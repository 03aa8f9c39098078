package cache

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/royalti/internal/catalog/domain"
	"github.com/smallbiznis/royalti/internal/config"
	"go.uber.org/zap"
)

// Provide picks the cache backend from config, falling back to memory when
// Redis is selected but no client is available.
func Provide(cfg config.Config, client *redis.Client, log *zap.Logger) domain.Cache {
	if cfg.Catalog.CacheBackend == config.CacheBackendRedis && client != nil {
		return NewRedis(client, cfg.Catalog.CacheTTL)
	}
	if cfg.Catalog.CacheBackend == config.CacheBackendRedis {
		log.Named("catalog.cache").Warn("redis cache requested without a client, using memory")
	}
	return NewMemory()
}
