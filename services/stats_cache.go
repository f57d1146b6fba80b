package services

import (
	"sync"
	"time"
)

// StatsCache 统计查询结果缓存，数据更新时整体失效
type StatsCache struct {
	cache map[string]*cacheEntry
	mu    sync.RWMutex
	ttl   time.Duration
}

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// NewStatsCache 创建统计缓存
func NewStatsCache(ttl time.Duration) *StatsCache {
	c := &StatsCache{
		cache: make(map[string]*cacheEntry),
		ttl:   ttl,
	}

	// 启动清理协程
	go c.cleanupLoop()

	return c
}

// Get 获取缓存
func (c *StatsCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		return nil, false
	}

	return entry.data, true
}

// Set 设置缓存
func (c *StatsCache) Set(key string, data interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache[key] = &cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Invalidate 清空全部缓存（比赛数据发生变化时调用）
func (c *StatsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*cacheEntry)
}

// Size 获取缓存条目数
func (c *StatsCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.cache)
}

// cleanupLoop 定期清理过期条目
func (c *StatsCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *StatsCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.cache {
		if now.After(entry.expiresAt) {
			delete(c.cache, key)
		}
	}
}
