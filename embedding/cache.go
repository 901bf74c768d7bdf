package embedding

import (
	"context"
	"sync"

	"github.com/rushteam/matchkit/core"
)

const (
	// defaultCacheSize 缓存条目数上限。
	defaultCacheSize = 1024
	// cacheKeyLimit 缓存键按文本前缀截断的长度（字节）。
	cacheKeyLimit = 256
)

// Cache 是 Embedding 服务的缓存装饰器：按截断文本为键缓存结果，
// 条目数有上限，超限时淘汰最早写入的条目。
//
// 并发安全。缓存竞争下允许重复计算，但绝不返回被污染的数据：
// 存取都做拷贝，调用方修改返回值不影响缓存内容。
type Cache struct {
	inner core.EmbeddingService

	mu      sync.RWMutex
	entries map[string][]float64
	order   []string
	size    int
}

// NewCache 包装一个 Embedding 服务。size <= 0 时使用默认上限。
func NewCache(inner core.EmbeddingService, size int) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &Cache{
		inner:   inner,
		entries: make(map[string][]float64, size),
		size:    size,
	}
}

// Embed 先查缓存，未命中时调用底层服务并写回。
func (c *Cache) Embed(ctx context.Context, text string) ([]float64, error) {
	key := cacheKey(text)

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cloneVec(cached), nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if _, exists := c.entries[key]; !exists {
		for len(c.order) >= c.size {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.entries[key] = cloneVec(vec)
		c.order = append(c.order, key)
	}
	c.mu.Unlock()
	return vec, nil
}

// ModelName 返回底层服务的模型名。
func (c *Cache) ModelName() string { return c.inner.ModelName() }

// Dimensions 返回底层服务的向量维度。
func (c *Cache) Dimensions() int { return c.inner.Dimensions() }

// Len 返回当前缓存条目数。
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(text string) string {
	if len(text) > cacheKeyLimit {
		return text[:cacheKeyLimit]
	}
	return text
}

func cloneVec(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
