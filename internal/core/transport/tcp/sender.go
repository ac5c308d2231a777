package tcp

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/dep2p/go-netislands/internal/protocol/wire"
)

// ============================================================================
//                              Sender
// ============================================================================

// Sender 一次性连接发送器：连接、写一条消息、关闭
type Sender struct {
	dialTimeout  time.Duration
	writeTimeout time.Duration
}

// NewSender 创建发送器，超时为 0 表示不限
func NewSender(dialTimeout, writeTimeout time.Duration) *Sender {
	return &Sender{
		dialTimeout:  dialTimeout,
		writeTimeout: writeTimeout,
	}
}

// ConnectSendClose 向 host:port 发送一条完整消息
//
// 写入顺序：协议标识与版本、标签、payload、终止字节。
// 连接失败返回 ErrDial，写失败返回 ErrWrite。
func (s *Sender) ConnectSendClose(ctx context.Context, host string, port int, tag wire.Tag, payload []byte) error {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	dialer := &net.Dialer{Timeout: s.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDial, addr, err)
	}
	defer conn.Close()

	if s.writeTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrWrite, addr, err)
		}
	}

	bufs := net.Buffers{wire.Header(tag), payload, {wire.Terminator}}
	if _, err := bufs.WriteTo(conn); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, addr, err)
	}

	if err := conn.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWrite, addr, err)
	}
	return nil
}
