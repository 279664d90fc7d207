package orders

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyKeyTTL = 24 * time.Hour

// RedisIdempotencyStore claims PlaceOrder idempotency keys with SETNX. A key
// already present means the request was seen within the TTL window.
type RedisIdempotencyStore struct {
	client *redis.Client
}

func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client}
}

func (s *RedisIdempotencyStore) SetIdempotency(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
}
