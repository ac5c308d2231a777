package netislands

import (
	"errors"

	"github.com/dep2p/go-netislands/internal/core/listener"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 构造错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("invalid island config")

	// ErrResolution 邻居主机名无法解析
	ErrResolution = errors.New("neighbor resolution failed")

	// ErrSocket 监听端口绑定或监听失败
	ErrSocket = listener.ErrSocket

	// ────────────────────────────────────────────────────────────────────────
	// 生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrIslandClosed 岛屿已关闭
	ErrIslandClosed = errors.New("island closed")
)
