package trendcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	zLog "github.com/iceymoss/news-hub/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const keyPrefix = "newshub:trending"

// Cache 热榜查询结果的 Redis 缓存。
// 缓存只靠 TTL 失效；Redis 不可用时调用方直接回源，
// 缓存故障不影响请求。
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

// Get 读缓存，命中时把结果反序列化进 dest
func (c *Cache) Get(ctx context.Context, limit int64, dest interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}

	raw, err := c.rdb.Get(ctx, c.key(limit)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zLog.Warn("trending cache get", zap.Error(err))
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		zLog.Warn("trending cache decode", zap.Error(err))
		return false
	}
	return true
}

// Set 写缓存，失败只记日志
func (c *Cache) Set(ctx context.Context, limit int64, val interface{}) {
	if c == nil || c.rdb == nil {
		return
	}

	raw, err := json.Marshal(val)
	if err != nil {
		zLog.Warn("trending cache encode", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, c.key(limit), raw, c.ttl).Err(); err != nil {
		zLog.Warn("trending cache set", zap.Error(err))
	}
}

func (c *Cache) key(limit int64) string {
	return fmt.Sprintf("%s:%d", keyPrefix, limit)
}
