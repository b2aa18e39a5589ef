package calls

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SetNXer is the subset of *redis.Client used by RedisDeduper.
type SetNXer interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisDeduper claims a session id the first time a post-call report arrives.
// The platform may redeliver the same report; only the first delivery is processed.
type RedisDeduper struct {
	rdb    SetNXer
	ttl    time.Duration
	prefix string
}

func NewRedisDeduper(rdb SetNXer, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDeduper{rdb: rdb, ttl: ttl, prefix: "postcall:session:"}
}

// FirstDelivery reports whether this is the first time sessionID has been claimed.
func (d *RedisDeduper) FirstDelivery(ctx context.Context, sessionID string) (bool, error) {
	ok, err := d.rdb.SetNX(ctx, d.prefix+sessionID, time.Now().UTC().Format(time.RFC3339), d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim session %s: %w", sessionID, err)
	}
	return ok, nil
}

// Release removes the claim so a redelivery of sessionID is processed again.
func (d *RedisDeduper) Release(ctx context.Context, sessionID string) error {
	if err := d.rdb.Del(ctx, d.prefix+sessionID).Err(); err != nil {
		return fmt.Errorf("release session %s: %w", sessionID, err)
	}
	return nil
}
