package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// takeToken refills the bucket from the Redis clock and takes one token.
// It replies with the milliseconds to wait before the next attempt, 0 when
// a token was taken.
var takeToken = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])

local t = redis.call("TIME")
local now = t[1] * 1000 + math.floor(t[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "tokens", "ts")
local tokens = tonumber(state[1]) or burst
local ts = tonumber(state[2]) or now
tokens = math.min(burst, tokens + math.max(0, now - ts) / 1000 * rate)

local wait = 0
if tokens >= 1 then
  tokens = tokens - 1
else
  wait = math.ceil((1 - tokens) / rate * 1000)
end

redis.call("HSET", KEYS[1], "tokens", tostring(tokens), "ts", now)
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return wait
`)

const minRetry = 10 * time.Millisecond

var ErrNotConfigured = errors.New("rate_limiter_not_configured")

// redisBucket is a token bucket shared by every replica using the same Redis.
type redisBucket struct {
	client *redis.Client
	key    string
	rate   float64
	burst  int
}

// NewDistributed limits calls across every process sharing client.
func NewDistributed(client *redis.Client, key string, perSecond float64, burst int) Limiter {
	return &redisBucket{client: client, key: key, rate: perSecond, burst: max(burst, 1)}
}

// take reports how long to wait before trying again. Zero means a token was taken.
func (b *redisBucket) take(ctx context.Context) (time.Duration, error) {
	if b.client == nil {
		return 0, ErrNotConfigured
	}
	if b.key == "" || b.rate <= 0 {
		return 0, errors.New("rate limiter needs a key and a positive rate")
	}
	ms, err := takeToken.Run(ctx, b.client, []string{b.key}, b.rate, b.burst, bucketTTL(b.rate, b.burst).Milliseconds()).Int64()
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func (b *redisBucket) Wait(ctx context.Context) error {
	for {
		wait, err := b.take(ctx)
		if err != nil {
			return err
		}
		if wait == 0 {
			return nil
		}

		timer := time.NewTimer(max(wait, minRetry))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// bucketTTL keeps an idle bucket around for twice its refill time.
func bucketTTL(rate float64, burst int) time.Duration {
	seconds := max(math.Ceil(float64(burst)/rate*2), 1)
	return time.Duration(seconds) * time.Second
}
