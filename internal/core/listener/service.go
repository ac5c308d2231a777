// Package listener 实现岛屿的入站监听循环
//
// 一个后台 goroutine 依次处理连接：
//
//	WAITING      带超时等待连接，超时后检查退出标志
//	ACCEPTING    接受连接（可选速率限制）
//	READING      读到对端关闭为止，写入复用的接收缓冲区
//	DISPATCHING  解码：data 进信箱，join 更新邻居目录，畸形消息丢弃
//
// 关闭通过退出标志协作完成，延迟不超过一个轮询周期。
package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"

	tec "github.com/jbenet/go-temp-err-catcher"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-netislands/config"
	"github.com/dep2p/go-netislands/internal/core/mailbox"
	"github.com/dep2p/go-netislands/internal/core/metrics"
	"github.com/dep2p/go-netislands/internal/core/neighbor"
	"github.com/dep2p/go-netislands/internal/core/transport/tcp"
	"github.com/dep2p/go-netislands/internal/protocol/wire"
	"github.com/dep2p/go-netislands/internal/util/logger"
)

var log = logger.Logger("listener")

// ============================================================================
//                              Service
// ============================================================================

// Service 入站监听服务
type Service struct {
	cfg  config.ListenerConfig
	port int

	directory *neighbor.Directory
	mailbox   *mailbox.Mailbox
	metrics   metrics.Reporter
	limiter   *rate.Limiter

	listener *tcp.Listener
	buf      []byte
	catcher  tec.TempErrCatcher
	log      *slog.Logger

	running atomic.Bool
	exit    atomic.Bool
	done    chan struct{}
	stop    sync.Once

	errMu sync.Mutex
	err   error
}

// NewService 创建监听服务，port 为 0 时由系统分配
func NewService(cfg config.ListenerConfig, port int, directory *neighbor.Directory, mb *mailbox.Mailbox, reporter metrics.Reporter) *Service {
	if reporter == nil {
		reporter = metrics.Nop{}
	}
	s := &Service{
		cfg:       cfg,
		port:      port,
		directory: directory,
		mailbox:   mb,
		metrics:   reporter,
		buf:       make([]byte, cfg.MaxMessageSize),
		log:       log,
		done:      make(chan struct{}),
	}
	if cfg.MaxMessagesPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.MaxMessagesPerSecond), cfg.Burst)
	}
	return s
}

// ============================================================================
//                              生命周期
// ============================================================================

// Start 绑定端口并启动监听循环
//
// 绑定失败同步返回 ErrSocket，此时不会启动任何 goroutine。
func (s *Service) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	l, err := tcp.Listen(ctx, s.cfg.Host, s.port)
	if err != nil {
		s.running.Store(false)
		return fmt.Errorf("%w: %w", ErrSocket, err)
	}
	s.listener = l
	s.port = l.Port()
	s.log = log.With("port", s.port)

	go s.loop()

	s.log.Info("监听服务已启动", "addr", l.Addr().String())
	return nil
}

// Stop 设置退出标志并等待监听循环结束，可重复调用
func (s *Service) Stop() error {
	var err error
	s.stop.Do(func() {
		s.exit.Store(true)
		if !s.running.Load() {
			return
		}
		<-s.done
		err = s.listener.Close()
		s.log.Info("监听服务已停止")
	})
	return err
}

// Port 实际监听端口，Start 之前为构造时传入的端口
func (s *Service) Port() int {
	return s.port
}

// Done 监听循环结束时关闭
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Err 导致监听循环异常退出的错误，正常停止时为 nil
func (s *Service) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Service) setErr(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
}

// ============================================================================
//                              监听循环
// ============================================================================

func (s *Service) loop() {
	defer close(s.done)

	poll := s.cfg.PollInterval.Duration()
	for !s.exit.Load() {
		conn, err := s.listener.AcceptTimeout(poll)
		if err != nil {
			if errors.Is(err, tcp.ErrAcceptTimeout) {
				continue
			}
			if errors.Is(err, tcp.ErrListenerClosed) {
				return
			}
			if s.catcher.IsTemporary(err) {
				s.log.Warn("accept 临时错误，稍后重试", "err", err)
				continue
			}
			s.setErr(fmt.Errorf("%w: accept: %w", ErrSocket, err))
			s.log.Error("accept 失败，监听循环退出", "err", err)
			return
		}
		s.catcher.Reset()

		if s.limiter != nil && !s.limiter.Allow() {
			_ = conn.Close()
			s.metrics.LogRateLimited()
			s.log.Debug("入站速率超限，丢弃连接", "remote", conn.RemoteAddr().String())
			continue
		}

		s.handleConn(conn)
	}
}

// handleConn 读完一个连接并分发，单个连接的错误不影响循环
func (s *Service) handleConn(conn *net.TCPConn) {
	host := remoteHost(conn.RemoteAddr())

	n, err := tcp.ReadUntilClose(conn, s.buf, s.cfg.ReadTimeout.Duration())
	_ = conn.Close()
	if err != nil {
		if errors.Is(err, ErrMessageTooLarge) {
			s.metrics.LogOversized()
			s.log.Warn("消息过大，已丢弃", "remote", host, "limit", len(s.buf))
			return
		}
		s.metrics.LogReadError()
		s.log.Debug("读取连接失败", "remote", host, "err", err)
		return
	}

	_ = s.dispatch(host, s.buf[:n])
}

// dispatch 解码一条完整消息并交给信箱或邻居目录
func (s *Service) dispatch(host string, msg []byte) error {
	m, err := wire.Decode(msg)
	if err != nil {
		s.metrics.LogMalformed()
		s.log.Debug("丢弃无效消息", "remote", host, "len", len(msg), "err", err)
		return err
	}

	switch m.Tag {
	case wire.TagData:
		s.mailbox.Push(wire.DataPayload(m.Payload))

	case wire.TagJoin:
		port, err := wire.ParseJoinPort(m.Payload)
		if err != nil {
			s.metrics.LogMalformed()
			s.log.Debug("丢弃无效 join", "remote", host, "err", err)
			return err
		}
		s.directory.UpsertFromJoin(host, port)
	}

	s.metrics.LogRecv(m.Tag.String(), host, int64(len(msg)))
	return nil
}

// remoteHost 对端 IP 的文本形式，IPv4 映射地址还原为点分十进制
func remoteHost(addr net.Addr) string {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		host, _, err := net.SplitHostPort(addr.String())
		if err != nil {
			return addr.String()
		}
		return host
	}
	if ip4 := tcpAddr.IP.To4(); ip4 != nil {
		return ip4.String()
	}
	return tcpAddr.IP.String()
}
