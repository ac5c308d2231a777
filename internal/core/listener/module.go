package listener

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-netislands/config"
	"github.com/dep2p/go-netislands/internal/core/mailbox"
	"github.com/dep2p/go-netislands/internal/core/metrics"
	"github.com/dep2p/go-netislands/internal/core/neighbor"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	Config    *config.Config `optional:"true"`
	Directory *neighbor.Directory
	Mailbox   *mailbox.Mailbox
	Metrics   metrics.Reporter `optional:"true"`
}

// ProvideService 提供监听服务
func ProvideService(input ModuleInput) *Service {
	cfg := config.NewConfig()
	if input.Config != nil {
		cfg = input.Config
	}
	return NewService(cfg.Listener, cfg.Island.Port, input.Directory, input.Mailbox, input.Metrics)
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("listener",
		fx.Provide(ProvideService),
		fx.Invoke(registerLifecycle),
	)
}

func registerLifecycle(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start(ctx)
		},
		OnStop: func(context.Context) error {
			return s.Stop()
		},
	})
}
