// Package mailbox 实现岛屿的收件信箱
//
// 信箱是带锁的 FIFO 队列，可选长度上限：满时丢弃最旧的消息再入队。
// 信箱锁与邻居目录锁相互独立，从不嵌套持有。
package mailbox

import (
	"sync"

	"github.com/dep2p/go-netislands/internal/core/metrics"
	"github.com/dep2p/go-netislands/internal/util/logger"
	"github.com/dep2p/go-netislands/internal/util/queue"
)

var log = logger.Logger("mailbox")

// Mailbox 线程安全的有界消息队列
type Mailbox struct {
	mu      sync.Mutex
	queue   *queue.Queue[[]byte]
	max     int
	metrics metrics.Reporter
}

// New 创建信箱，maxLength 为 0 表示不限长度
func New(maxLength int, reporter metrics.Reporter) *Mailbox {
	if reporter == nil {
		reporter = metrics.Nop{}
	}
	return &Mailbox{
		queue:   queue.New[[]byte](),
		max:     maxLength,
		metrics: reporter,
	}
}

// Push 追加一条消息
//
// 达到上限时先丢弃最旧的一条，dropped 表示是否发生了丢弃。
// 信箱取得 payload 的所有权。
func (m *Mailbox) Push(payload []byte) (dropped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.max != 0 && m.queue.Len() >= m.max {
		m.queue.Dequeue()
		dropped = true
		m.metrics.LogMailboxDrop()
		log.Debug("信箱已满，丢弃最旧消息", "max", m.max)
	}
	m.queue.Enqueue(payload)
	return dropped
}

// Pop 取出最旧的消息，信箱为空时返回 (nil, false)
func (m *Mailbox) Pop() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.queue.Dequeue()
}

// Len 当前消息数
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.queue.Len()
}

// MaxLength 长度上限，0 表示不限
func (m *Mailbox) MaxLength() int {
	return m.max
}

// Clear 释放全部消息，返回释放的条数
func (m *Mailbox) Clear() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.queue.Clear()
}
