package listener

import (
	"errors"

	"github.com/dep2p/go-netislands/internal/core/transport/tcp"
)

var (
	// ErrSocket 监听套接字失败（绑定、监听或不可恢复的 accept 错误）
	ErrSocket = errors.New("listener socket error")

	// ErrMessageTooLarge 消息超过接收缓冲区，已丢弃
	ErrMessageTooLarge = tcp.ErrMessageTooLarge

	// ErrAlreadyStarted 服务已启动
	ErrAlreadyStarted = errors.New("listener already started")
)
