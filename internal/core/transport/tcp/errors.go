package tcp

import "errors"

var (
	// ErrListen 绑定或监听失败
	ErrListen = errors.New("listen failed")

	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("listener closed")

	// ErrAcceptTimeout 等待连接超时
	ErrAcceptTimeout = errors.New("accept timeout")

	// ErrMessageTooLarge 消息超过接收缓冲区
	ErrMessageTooLarge = errors.New("message too large")

	// ErrDial 连接邻居失败
	ErrDial = errors.New("dial failed")

	// ErrWrite 写消息失败
	ErrWrite = errors.New("write failed")
)
