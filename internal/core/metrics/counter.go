package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
)

// ============================================================================
//                              Counter
// ============================================================================

// entry 单个维度的累加器
type entry struct {
	in, out         atomic.Int64
	msgsIn, msgsOut atomic.Int64
	failures        atomic.Int64
	rateIn, rateOut *RateMeter
}

func (e *entry) reset() {
	e.in.Store(0)
	e.out.Store(0)
	e.msgsIn.Store(0)
	e.msgsOut.Store(0)
	e.failures.Store(0)
	e.rateIn.Reset()
	e.rateOut.Reset()
}

func newEntry(clk clock.Clock) *entry {
	return &entry{
		rateIn:  NewRateMeter(clk),
		rateOut: NewRateMeter(clk),
	}
}

func (e *entry) stats() Stats {
	return Stats{
		TotalIn:     e.in.Load(),
		TotalOut:    e.out.Load(),
		MessagesIn:  e.msgsIn.Load(),
		MessagesOut: e.msgsOut.Load(),
		Failures:    e.failures.Load(),
		RateIn:      e.rateIn.Rate(),
		RateOut:     e.rateOut.Rate(),
	}
}

// Counter 线程安全的 Reporter 实现
type Counter struct {
	clock clock.Clock

	total *entry

	mu         sync.RWMutex
	byTag      map[string]*entry
	byNeighbor map[string]*entry

	evictions    atomic.Int64
	mailboxDrops atomic.Int64
	malformed    atomic.Int64
	rateLimited  atomic.Int64
	oversized    atomic.Int64
	readErrors   atomic.Int64
}

// NewCounter 使用系统时钟创建计数器
func NewCounter() *Counter {
	return NewCounterWithClock(clock.New())
}

// NewCounterWithClock 使用指定时钟创建计数器
func NewCounterWithClock(clk clock.Clock) *Counter {
	return &Counter{
		clock:      clk,
		total:      newEntry(clk),
		byTag:      make(map[string]*entry),
		byNeighbor: make(map[string]*entry),
	}
}

// update 对总量、标签与邻居（非空时）维度的累加器执行 fn
//
// fn 在 c.mu 读锁或写锁内执行，Reset 不会与之交错。
func (c *Counter) update(tag, neighbor string, fn func(e *entry)) {
	c.mu.RLock()
	te, tok := c.byTag[tag]
	ne, nok := c.byNeighbor[neighbor]
	if tok && (nok || neighbor == "") {
		c.apply(fn, te, ne)
		c.mu.RUnlock()
		return
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if te, tok = c.byTag[tag]; !tok {
		te = newEntry(c.clock)
		c.byTag[tag] = te
	}
	ne = nil
	if neighbor != "" {
		if ne, nok = c.byNeighbor[neighbor]; !nok {
			ne = newEntry(c.clock)
			c.byNeighbor[neighbor] = ne
		}
	}
	c.apply(fn, te, ne)
}

// apply 调用方持有 c.mu
func (c *Counter) apply(fn func(e *entry), te, ne *entry) {
	fn(c.total)
	fn(te)
	if ne != nil {
		fn(ne)
	}
}

func (c *Counter) LogSent(tag, neighbor string, size int64) {
	c.update(tag, neighbor, func(e *entry) {
		e.out.Add(size)
		e.msgsOut.Add(1)
		e.rateOut.Add(size)
	})
}

func (c *Counter) LogSendFailure(tag, neighbor string) {
	c.update(tag, neighbor, func(e *entry) {
		e.failures.Add(1)
	})
}

// LogRecv 入站消息只按标签统计，对端地址为临时端口，不计入邻居维度
func (c *Counter) LogRecv(tag, _ string, size int64) {
	c.update(tag, "", func(e *entry) {
		e.in.Add(size)
		e.msgsIn.Add(1)
		e.rateIn.Add(size)
	})
}

// LogEviction 计数并丢弃该邻居的统计
func (c *Counter) LogEviction(neighbor string) {
	c.evictions.Add(1)
	c.mu.Lock()
	delete(c.byNeighbor, neighbor)
	c.mu.Unlock()
}

func (c *Counter) LogMailboxDrop() { c.mailboxDrops.Add(1) }
func (c *Counter) LogMalformed()   { c.malformed.Add(1) }
func (c *Counter) LogRateLimited() { c.rateLimited.Add(1) }
func (c *Counter) LogOversized()   { c.oversized.Add(1) }
func (c *Counter) LogReadError()   { c.readErrors.Add(1) }

func (c *Counter) Totals() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.total.stats()
}

func (c *Counter) ByTag() map[string]Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return snapshot(c.byTag)
}

func (c *Counter) ByNeighbor() map[string]Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return snapshot(c.byNeighbor)
}

// snapshot 调用方持有 c.mu
func snapshot(m map[string]*entry) map[string]Stats {
	out := make(map[string]Stats, len(m))
	for k, e := range m {
		out[k] = e.stats()
	}
	return out
}

func (c *Counter) Events() Events {
	return Events{
		Evictions:    c.evictions.Load(),
		MailboxDrops: c.mailboxDrops.Load(),
		Malformed:    c.malformed.Load(),
		RateLimited:  c.rateLimited.Load(),
		Oversized:    c.oversized.Load(),
		ReadErrors:   c.readErrors.Load(),
	}
}

func (c *Counter) Reset() {
	c.mu.Lock()
	c.total.reset()
	c.byTag = make(map[string]*entry)
	c.byNeighbor = make(map[string]*entry)
	c.mu.Unlock()

	c.evictions.Store(0)
	c.mailboxDrops.Store(0)
	c.malformed.Store(0)
	c.rateLimited.Store(0)
	c.oversized.Store(0)
	c.readErrors.Store(0)
}
