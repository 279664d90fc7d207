package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	productKeyPrefix = "producto:"
	productCacheTTL  = 60 * time.Second
)

// ProductCache is a read-through cache for product detail responses. The TTL
// is short because stock quantity rides along in the cached payload; writes
// to the product itself invalidate eagerly.
type ProductCache struct {
	client *redis.Client
}

func NewProductCache(client *redis.Client) *ProductCache {
	return &ProductCache{client: client}
}

func (c *ProductCache) key(productID int64) string {
	return fmt.Sprintf("%s%d", productKeyPrefix, productID)
}

// Get returns the cached detail, or (nil, nil) on a miss. Cache errors are
// returned so the caller can log them, but a broken cache must never break a
// read.
func (c *ProductCache) Get(ctx context.Context, productID int64) (*ProductDetail, error) {
	payload, err := c.client.Get(ctx, c.key(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var detail ProductDetail
	if err := json.Unmarshal(payload, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *ProductCache) Set(ctx context.Context, detail *ProductDetail) error {
	payload, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(detail.ID), payload, productCacheTTL).Err()
}

func (c *ProductCache) Invalidate(ctx context.Context, productID int64) error {
	return c.client.Del(ctx, c.key(productID)).Err()
}
