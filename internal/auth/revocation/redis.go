package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "trl:jti:"

// Redis shares revocations between instances. Key expiry does the pruning.
type Redis struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

func (r *Redis) Put(ctx context.Context, jti string, ttl time.Duration) error {
	if err := validate(jti, ttl); err != nil {
		return err
	}
	if err := r.client.Set(ctx, keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// PutMany revokes several token IDs in one pipeline.
func (r *Redis) PutMany(ctx context.Context, jtis []string, ttl time.Duration) error {
	if ttl <= 0 {
		return validate("-", ttl)
	}
	pipe := r.client.Pipeline()
	queued := 0
	for _, jti := range jtis {
		if jti == "" {
			continue
		}
		pipe.Set(ctx, keyPrefix+jti, "1", ttl)
		queued++
	}
	if queued == 0 {
		return nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}

func (r *Redis) Contains(ctx context.Context, jti string) (bool, error) {
	defer observe("redis", time.Now())
	if jti == "" {
		return false, nil
	}
	err := r.client.Get(ctx, keyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return true, nil
}
