package resolver

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// cacheEntry 缓存条目
type cacheEntry struct {
	addr      string
	expiresAt time.Time
}

// Cache 主机名到地址的 TTL 缓存，可被多个 Resolver 共享
type Cache struct {
	clock clock.Clock

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache 创建缓存，clk 为 nil 时使用系统时钟
func NewCache(clk clock.Clock) *Cache {
	if clk == nil {
		clk = clock.New()
	}
	return &Cache{
		clock:   clk,
		entries: make(map[string]cacheEntry),
	}
}

// Get 读取未过期的条目
func (c *Cache) Get(host string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[host]
	if !ok || !c.clock.Now().Before(e.expiresAt) {
		return "", false
	}
	return e.addr, true
}

// Put 写入条目，ttl 不为正时不缓存
func (c *Cache) Put(host, addr string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[host] = cacheEntry{
		addr:      addr,
		expiresAt: c.clock.Now().Add(ttl),
	}
}

// Len 条目数（含已过期未清理的）
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ClearExpired 清除过期条目
func (c *Cache) ClearExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for host, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, host)
		}
	}
}

// Clear 清除全部条目
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
