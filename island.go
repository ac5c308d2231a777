package netislands

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-netislands/config"
	"github.com/dep2p/go-netislands/internal/core/listener"
	"github.com/dep2p/go-netislands/internal/core/mailbox"
	"github.com/dep2p/go-netislands/internal/core/metrics"
	"github.com/dep2p/go-netislands/internal/core/neighbor"
	"github.com/dep2p/go-netislands/internal/core/netstack"
	"github.com/dep2p/go-netislands/internal/core/resolver"
	"github.com/dep2p/go-netislands/internal/protocol/wire"
	"github.com/dep2p/go-netislands/internal/util/logger"
)

var log = logger.Logger("island")

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期常量
// ════════════════════════════════════════════════════════════════════════════

const (
	// startTimeout Fx App 启动超时
	startTimeout = 15 * time.Second

	// stopTimeout Fx App 停止超时
	stopTimeout = 30 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              Island
// ════════════════════════════════════════════════════════════════════════════

// Island 一个消息岛屿
//
// 所有方法可并发调用。
type Island struct {
	id  uuid.UUID
	cfg *config.Config
	log *slog.Logger

	app       *fx.App
	reporter  metrics.Reporter
	mailbox   *mailbox.Mailbox
	directory *neighbor.Directory
	listener  *listener.Service

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Stats 岛屿运行状态快照
type Stats struct {
	Neighbors  int
	MailboxLen int
	Totals     metrics.Stats
	ByTag      map[string]metrics.Stats
	Events     metrics.Events
}

// New 创建并启动岛屿
//
// neighbors 为 "host:port" 列表，主机名在构造时解析，任一失败返回 ErrResolution。
// 端口绑定失败返回 ErrSocket。port 为 0 时由系统分配，实际端口见 Port()。
// 启动后向所有邻居发送 join。构造失败时不留下任何运行中的资源。
func New(ctx context.Context, port int, neighbors []string, opts ...Option) (*Island, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	cfg, err := o.toConfig(port, neighbors)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cache := netstack.Acquire()
	island, err := build(ctx, cfg, cache, o.userFxOptions)
	if err != nil {
		netstack.Release()
		return nil, err
	}
	return island, nil
}

// seed 已解析的邻居
type seed struct {
	host string
	port int
}

// resolveNeighbors 解析全部邻居地址
func resolveNeighbors(ctx context.Context, cfg *config.Config, cache *resolver.Cache) ([]seed, error) {
	r := resolver.New(cfg.Resolver, cache)

	seeds := make([]seed, 0, len(cfg.Island.Neighbors))
	for _, n := range cfg.Island.Neighbors {
		host, port, err := config.SplitHostPort(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		addr, err := r.Resolve(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrResolution, n, err)
		}
		seeds = append(seeds, seed{host: addr, port: port})
	}
	return seeds, nil
}

func build(ctx context.Context, cfg *config.Config, cache *resolver.Cache, userOpts []fx.Option) (*Island, error) {
	seeds, err := resolveNeighbors(ctx, cfg, cache)
	if err != nil {
		return nil, err
	}

	island := &Island{
		id:  uuid.New(),
		cfg: cfg,
	}

	app := buildFxApp(cfg, island, userOpts)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("构建 Fx 应用失败: %w", err)
	}
	island.app = app

	for _, s := range seeds {
		island.directory.Add(s.host, s.port)
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return nil, fmt.Errorf("启动岛屿失败: %w", err)
	}

	island.log = log.With("island", island.id.String(), "port", island.listener.Port())
	island.log.Info("岛屿已启动", "neighbors", island.directory.Len())

	// 向邻居通告实际监听端口
	res := island.directory.Broadcast(ctx, wire.TagJoin, wire.EncodeJoin(island.listener.Port()), cfg.Island.MaxFailures)
	if res.Failed > 0 {
		island.log.Debug("部分邻居未收到 join", "failed", res.Failed, "evicted", len(res.Evicted))
	}

	return island, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              消息
// ════════════════════════════════════════════════════════════════════════════

// Send 向所有邻居发送一条数据消息
//
// 单个邻居的失败只计入其失败计数，不作为错误返回。关闭后返回 ErrIslandClosed；
// ctx 失效时返回 ctx.Err()，邻居状态不受影响。
func (i *Island) Send(ctx context.Context, payload []byte) error {
	if i.closed.Load() {
		return ErrIslandClosed
	}

	res := i.directory.Broadcast(ctx, wire.TagData, payload, i.cfg.Island.MaxFailures)
	if res.Aborted {
		return ctx.Err()
	}
	if len(res.Evicted) > 0 {
		i.log.Info("移除失联邻居", "count", len(res.Evicted), "remaining", i.directory.Len())
	}
	return nil
}

// DequeueMessage 取出最早到达的消息，信箱为空时返回 (nil, false)
func (i *Island) DequeueMessage() ([]byte, bool) {
	return i.mailbox.Pop()
}

// ════════════════════════════════════════════════════════════════════════════
//                              关闭
// ════════════════════════════════════════════════════════════════════════════

// Close 停止监听并释放全部资源，可重复调用
//
// 等待监听循环退出（不超过一个轮询周期），随后释放信箱和邻居目录。
// 最后一个岛屿关闭时释放进程级网络资源。
func (i *Island) Close() error {
	i.closeOnce.Do(func() {
		i.closed.Store(true)

		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()

		var errs error
		errs = multierr.Append(errs, i.app.Stop(ctx))
		errs = multierr.Append(errs, i.listener.Err())
		netstack.Release()

		i.closeErr = errs
		i.log.Info("岛屿已关闭")
	})
	return i.closeErr
}

// ════════════════════════════════════════════════════════════════════════════
//                              状态
// ════════════════════════════════════════════════════════════════════════════

// ID 岛屿实例标识，仅用于日志与诊断
func (i *Island) ID() string {
	return i.id.String()
}

// Port 实际监听端口
func (i *Island) Port() int {
	return i.listener.Port()
}

// Neighbors 当前邻居的快照，格式 "host:port"
func (i *Island) Neighbors() []string {
	snap := i.directory.Snapshot()
	out := make([]string, len(snap))
	for k, n := range snap {
		out[k] = n.Addr()
	}
	return out
}

// MailboxLen 信箱中未取出的消息数
func (i *Island) MailboxLen() int {
	return i.mailbox.Len()
}

// Metrics 收发统计
func (i *Island) Metrics() metrics.Reporter {
	return i.reporter
}

// Stats 运行状态快照
func (i *Island) Stats() Stats {
	return Stats{
		Neighbors:  i.directory.Len(),
		MailboxLen: i.mailbox.Len(),
		Totals:     i.reporter.Totals(),
		ByTag:      i.reporter.ByTag(),
		Events:     i.reporter.Events(),
	}
}

// ActiveIslands 进程内存活的岛屿数
func ActiveIslands() int {
	return netstack.Active()
}
