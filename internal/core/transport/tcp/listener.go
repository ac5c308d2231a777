package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync/atomic"
	"time"
)

// ============================================================================
//                              Listener
// ============================================================================

// Listener 岛屿的 TCP 监听器
type Listener struct {
	listener *net.TCPListener
	port     int
	closed   atomic.Bool
}

// Listen 在 host:port 上监听，port 为 0 时由系统分配
func Listen(ctx context.Context, host string, port int) (*Listener, error) {
	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrListen, err)
	}

	tcpListener, ok := l.(*net.TCPListener)
	if !ok {
		_ = l.Close()
		return nil, fmt.Errorf("%w: 不是 TCP 监听器", ErrListen)
	}

	return &Listener{
		listener: tcpListener,
		port:     tcpListener.Addr().(*net.TCPAddr).Port,
	}, nil
}

// Port 实际监听端口
func (l *Listener) Port() int {
	return l.port
}

// Addr 监听地址
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// AcceptTimeout 等待一个连接，最多阻塞 timeout
//
// 超时返回 ErrAcceptTimeout；监听器关闭后返回 ErrListenerClosed。
func (l *Listener) AcceptTimeout(timeout time.Duration) (*net.TCPConn, error) {
	if l.closed.Load() {
		return nil, ErrListenerClosed
	}
	if err := l.listener.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}

	conn, err := l.listener.AcceptTCP()
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, ErrAcceptTimeout
		}
		if l.closed.Load() || errors.Is(err, net.ErrClosed) {
			return nil, ErrListenerClosed
		}
		return nil, err
	}

	_ = conn.SetNoDelay(true)
	return conn, nil
}

// Close 关闭监听器，可重复调用
func (l *Listener) Close() error {
	if l.closed.CompareAndSwap(false, true) {
		return l.listener.Close()
	}
	return nil
}

// IsClosed 监听器是否已关闭
func (l *Listener) IsClosed() bool {
	return l.closed.Load()
}

// ============================================================================
//                              读取
// ============================================================================

// ReadUntilClose 读取整个连接直到对端关闭
//
// 数据写入 buf，返回读到的字节数。数据超过 len(buf) 时返回 ErrMessageTooLarge，
// 此时 buf 内容不完整。timeout 为 0 表示不设读超时。
func ReadUntilClose(conn net.Conn, buf []byte, timeout time.Duration) (int, error) {
	if timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return 0, err
		}
	}

	n := 0
	for n < len(buf) {
		m, err := conn.Read(buf[n:])
		n += m
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}

	// 缓冲区已满，再探测一个字节区分恰好装满和超长
	var probe [1]byte
	for {
		m, err := conn.Read(probe[:])
		if m > 0 {
			return n, ErrMessageTooLarge
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
}
