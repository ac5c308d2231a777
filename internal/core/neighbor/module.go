package neighbor

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-netislands/config"
	"github.com/dep2p/go-netislands/internal/core/metrics"
	"github.com/dep2p/go-netislands/internal/core/transport/tcp"
)

// Params Directory 依赖参数
type Params struct {
	fx.In

	Config  *config.Config `optional:"true"`
	Sender  Sender
	Metrics metrics.Reporter `optional:"true"`
}

// Module 是 neighbor 的 Fx 模块
var Module = fx.Module("neighbor",
	fx.Provide(
		fx.Annotate(
			NewTCPSender,
			fx.As(new(Sender)),
		),
		NewFromParams,
	),
	fx.Invoke(registerLifecycle),
)

// SenderParams Sender 依赖参数
type SenderParams struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// NewTCPSender 按配置创建 TCP 发送器
func NewTCPSender(p SenderParams) *tcp.Sender {
	sc := config.DefaultSenderConfig()
	if p.Config != nil {
		sc = p.Config.Sender
	}
	return tcp.NewSender(sc.DialTimeout.Duration(), sc.WriteTimeout.Duration())
}

// NewFromParams 从参数创建目录
func NewFromParams(p Params) *Directory {
	parallelism := config.DefaultSenderConfig().Parallelism
	if p.Config != nil {
		parallelism = p.Config.Sender.Parallelism
	}
	return NewDirectory(p.Sender, parallelism, p.Metrics)
}

// registerLifecycle 停止时释放全部邻居
func registerLifecycle(lc fx.Lifecycle, d *Directory) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			if n := d.Clear(); n > 0 {
				log.Debug("释放邻居", "count", n)
			}
			return nil
		},
	})
}
