package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"gearpool/models"
)

// SearchCache 缓存装备检索结果；任何目录写入后整体失效
type SearchCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSearchCache(rdb *redis.Client, ttl time.Duration) *SearchCache {
	return &SearchCache{rdb: rdb, ttl: ttl}
}

func searchKey(q string) string {
	return fmt.Sprintf("gear:search:%s", strings.ToLower(strings.TrimSpace(q)))
}

// 跟踪已写入的 key，便于批量失效
const keySet = "gear:search:keys"

// Get returns (nil, nil) on a miss.
func (c *SearchCache) Get(ctx context.Context, q string) ([]models.Gear, error) {
	b, err := c.rdb.Get(ctx, searchKey(q)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []models.Gear
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *SearchCache) Put(ctx context.Context, q string, items []models.Gear) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	k := searchKey(q)
	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, k, b, c.ttl)
	pipe.SAdd(ctx, keySet, k)
	pipe.Expire(ctx, keySet, c.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Invalidate 删除全部已缓存的检索结果
func (c *SearchCache) Invalidate(ctx context.Context) error {
	keys, err := c.rdb.SMembers(ctx, keySet).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	pipe := c.rdb.TxPipeline()
	for _, k := range keys {
		pipe.Del(ctx, k)
	}
	pipe.Del(ctx, keySet)
	_, err = pipe.Exec(ctx)
	return err
}
