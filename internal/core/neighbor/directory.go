package neighbor

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-netislands/internal/core/metrics"
	"github.com/dep2p/go-netislands/internal/protocol/wire"
	"github.com/dep2p/go-netislands/internal/util/logger"
	"github.com/dep2p/go-netislands/internal/util/queue"
)

var log = logger.Logger("neighbor")

// ============================================================================
//                              Directory
// ============================================================================

// Directory 线程安全的邻居目录
type Directory struct {
	mu    sync.Mutex
	queue *queue.Queue[*Neighbor]

	sender      Sender
	parallelism int
	metrics     metrics.Reporter
}

// NewDirectory 创建空目录
//
// parallelism 为一次广播中同时发送的邻居数，小于等于 1 时逐个发送。
func NewDirectory(sender Sender, parallelism int, reporter metrics.Reporter) *Directory {
	if parallelism < 1 {
		parallelism = 1
	}
	if reporter == nil {
		reporter = metrics.Nop{}
	}
	return &Directory{
		queue:       queue.New[*Neighbor](),
		sender:      sender,
		parallelism: parallelism,
		metrics:     reporter,
	}
}

// Add 加入一个失败计数为 0 的邻居，已存在时不重复加入
func (d *Directory) Add(host string, port int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := &Neighbor{Host: host, Port: port}
	if d.queue.FirstIndexOf(n, sameIdentity) >= 0 {
		return false
	}
	d.queue.Enqueue(n)
	return true
}

// UpsertFromJoin 处理一条 join
//
// 已知邻居的失败计数清零；未知邻居追加到队尾，added 为 true。
func (d *Directory) UpsertFromJoin(host string, port int) (added bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := &Neighbor{Host: host, Port: port}
	if i := d.queue.FirstIndexOf(n, sameIdentity); i >= 0 {
		n, _ = d.queue.GetAt(i)
		if n.FailureCount != 0 {
			log.Debug("邻居重新加入，失败计数清零", "neighbor", n.Addr(), "failures", n.FailureCount)
		}
		n.FailureCount = 0
		return false
	}

	d.queue.Enqueue(n)
	log.Info("新邻居加入", "neighbor", n.Addr())
	return true
}

// Broadcast 向全部邻居发送一条消息
//
// 整个过程持有目录锁：发送、累加失败计数，整轮结束后按 maxFailures 移除邻居。
// maxFailures 为 0 时不移除。ctx 失效属于本地原因，不计入任何邻居的失败计数，
// 该轮也不执行移除。
func (d *Directory) Broadcast(ctx context.Context, tag wire.Tag, payload []byte, maxFailures uint) BroadcastResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	neighbors := d.queue.Slice()
	result := BroadcastResult{Attempted: len(neighbors)}

	if d.parallelism <= 1 || len(neighbors) <= 1 {
		for _, n := range neighbors {
			if ctx.Err() != nil {
				break
			}
			if !d.sendOne(ctx, n, tag, payload) {
				result.Failed++
			}
		}
	} else {
		var failed atomic.Int64
		var g errgroup.Group
		g.SetLimit(d.parallelism)
		for _, n := range neighbors {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}
				if !d.sendOne(ctx, n, tag, payload) {
					failed.Add(1)
				}
				return nil
			})
		}
		_ = g.Wait()
		result.Failed = int(failed.Load())
	}

	if ctx.Err() != nil {
		result.Aborted = true
		log.Debug("广播被取消，本轮不移除邻居", "tag", tag.String(), "err", ctx.Err())
		return result
	}
	result.Evicted = d.sweepEvict(maxFailures)
	return result
}

// sendOne 发送给单个邻居，失败时累加计数。每个邻居只由一个 goroutine 修改。
//
// ctx 失效导致的失败不归咎于邻居。
func (d *Directory) sendOne(ctx context.Context, n *Neighbor, tag wire.Tag, payload []byte) bool {
	err := d.sender.ConnectSendClose(ctx, n.Host, n.Port, tag, payload)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		n.FailureCount++
		d.metrics.LogSendFailure(tag.String(), n.Addr())
		log.Debug("发送失败", "neighbor", n.Addr(), "tag", tag.String(), "failures", n.FailureCount, "err", err)
		return false
	}
	d.metrics.LogSent(tag.String(), n.Addr(), int64(wire.HeaderLength+len(payload)+1))
	return true
}

// sweepEvict 反复移除第一个失败计数达到阈值的邻居，直到没有为止。调用方持有锁。
func (d *Directory) sweepEvict(threshold uint) []Neighbor {
	if threshold == 0 {
		return nil
	}

	var evicted []Neighbor
	for {
		i := d.queue.IndexFunc(func(n *Neighbor) bool { return n.FailureCount >= threshold })
		if i < 0 {
			return evicted
		}
		n, _ := d.queue.RemoveAt(i)
		evicted = append(evicted, *n)
		d.metrics.LogEviction(n.Addr())
		log.Info("移除失联邻居", "neighbor", n.Addr(), "failures", n.FailureCount)
	}
}

// Snapshot 当前邻居的副本，按加入顺序
func (d *Directory) Snapshot() []Neighbor {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]Neighbor, 0, d.queue.Len())
	d.queue.ForEach(func(n *Neighbor) {
		out = append(out, *n)
	})
	return out
}

// Len 邻居数
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.queue.Len()
}

// Contains 是否包含 host:port
func (d *Directory) Contains(host string, port int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.queue.IndexFunc(func(n *Neighbor) bool { return n.Is(host, port) }) >= 0
}

// Clear 释放全部邻居，返回释放的个数
func (d *Directory) Clear() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.queue.Clear()
}
