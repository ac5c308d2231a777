// Package netstack 管理进程内所有岛屿共享的网络资源
//
// 第一个岛屿 Acquire 时初始化（创建共享解析缓存），最后一个岛屿
// Release 时释放。计数用原子变量保存，初始化与释放在互斥锁内完成。
package netstack

import (
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-netislands/internal/core/resolver"
	"github.com/dep2p/go-netislands/internal/util/logger"
)

var log = logger.Logger("netstack")

var (
	mu     sync.Mutex
	active atomic.Int32
	cache  *resolver.Cache
)

// Acquire 增加一个引用并返回共享解析缓存
func Acquire() *resolver.Cache {
	mu.Lock()
	defer mu.Unlock()

	if active.Load() == 0 {
		cache = resolver.NewCache(nil)
		log.Debug("网络资源已初始化")
	}
	active.Add(1)
	return cache
}

// Release 减少一个引用，归零时释放共享资源
//
// 没有引用时调用为空操作。
func Release() {
	mu.Lock()
	defer mu.Unlock()

	if active.Load() == 0 {
		log.Warn("Release 调用次数多于 Acquire")
		return
	}
	if active.Add(-1) == 0 {
		cache.Clear()
		cache = nil
		log.Debug("网络资源已释放")
	}
}

// Active 当前引用数，即存活的岛屿个数
func Active() int {
	return int(active.Load())
}

// SharedCache 当前共享缓存，没有存活岛屿时为 nil
func SharedCache() *resolver.Cache {
	mu.Lock()
	defer mu.Unlock()
	return cache
}
