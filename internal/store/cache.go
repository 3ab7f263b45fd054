package store

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openmall/openmall/internal/domain"
)

var cacheJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// ProductCache keeps serialized product rows in redis with a short TTL.
// All operations are best effort, a cache failure never fails a request.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func productKey(id int64) string {
	return fmt.Sprintf("openmall:product:%d", id)
}

func (c *ProductCache) Get(ctx context.Context, id int64) (*domain.Product, bool) {
	data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var p domain.Product
	if err := cacheJSON.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *ProductCache) Put(ctx context.Context, p *domain.Product) {
	data, err := cacheJSON.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, productKey(p.ID), data, c.ttl).Err(); err != nil {
		zap.L().Debug("product cache set failed", zap.Int64("id", p.ID), zap.Error(err))
	}
}

func (c *ProductCache) Invalidate(ctx context.Context, id int64) {
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		zap.L().Debug("product cache del failed", zap.Int64("id", id), zap.Error(err))
	}
}
