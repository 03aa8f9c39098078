package ratelimit

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/royalti/internal/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const catalogBucketKey = "royalti:ratelimit:catalog"

// Limiter blocks until the caller may make one more outbound call.
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewLocal limits calls made by this process only.
func NewLocal(perSecond float64, burst int) Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// NewCatalogLimiter throttles catalog API calls. The bucket lives in Redis
// when a client is available so replicas share one quota.
func NewCatalogLimiter(cfg config.Config, client *redis.Client, log *zap.Logger) Limiter {
	perSecond := cfg.Catalog.RatePerSec
	if client != nil && perSecond > 0 {
		log.Named("ratelimit").Info("catalog rate limit shared through redis",
			zap.Float64("rate", perSecond),
			zap.Int("burst", cfg.Catalog.Burst),
		)
		return NewDistributed(client, catalogBucketKey, perSecond, cfg.Catalog.Burst)
	}
	return NewLocal(perSecond, cfg.Catalog.Burst)
}
