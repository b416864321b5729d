package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps codes in Redis with native TTL expiry. A matching code is
// deleted atomically so it cannot be replayed; a mismatch leaves the stored
// code in place for a retry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(phone string) string {
	return "otp:registration:" + phone
}

func (s *RedisStore) Save(ctx context.Context, phone, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key(phone), code, ttl).Err(); err != nil {
		return fmt.Errorf("save otp code: %w", err)
	}
	return nil
}

// consumeScript deletes the key only when its value matches the submitted
// code, making verification single-use without consuming failed attempts.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *RedisStore) Consume(ctx context.Context, phone, code string) (bool, error) {
	deleted, err := consumeScript.Run(ctx, s.client, []string{key(phone)}, code).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("consume otp code: %w", err)
	}
	return deleted == 1, nil
}
