package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

// Deletes the lease only while it still carries the holder's token.
var releaseLease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

var ErrLockHeld = errors.New("lock_held")

// Locker hands out short Redis leases so one replica at a time refreshes a
// catalog entry. A nil Locker grants every lease.
type Locker struct {
	client *redis.Client
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{client: client}
}

// Acquire takes the lease on key for ttl. The returned func gives it back
// and is safe to call after ctx is done.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if l == nil {
		return func() {}, nil
	}
	if key == "" || ttl <= 0 {
		return nil, errors.New("lock needs a key and a positive ttl")
	}

	token := uuid.NewString()
	won, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrLockHeld
	}

	release := context.WithoutCancel(ctx)
	return func() {
		_ = releaseLease.Run(release, l.client, []string{key}, token).Err()
	}, nil
}
