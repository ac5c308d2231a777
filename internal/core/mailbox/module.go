package mailbox

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-netislands/config"
	"github.com/dep2p/go-netislands/internal/core/metrics"
)

// Params Mailbox 依赖参数
type Params struct {
	fx.In

	Config  *config.Config   `optional:"true"`
	Metrics metrics.Reporter `optional:"true"`
}

// Module 是 mailbox 的 Fx 模块
var Module = fx.Module("mailbox",
	fx.Provide(NewFromParams),
	fx.Invoke(registerLifecycle),
)

// NewFromParams 从参数创建信箱
func NewFromParams(p Params) *Mailbox {
	maxLength := config.DefaultIslandConfig().MaxMailboxLength
	if p.Config != nil {
		maxLength = p.Config.Island.MaxMailboxLength
	}
	return New(maxLength, p.Metrics)
}

// registerLifecycle 停止时释放未取走的消息
func registerLifecycle(lc fx.Lifecycle, m *Mailbox) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			if n := m.Clear(); n > 0 {
				log.Debug("释放未读消息", "count", n)
			}
			return nil
		},
	})
}
