package netislands

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-netislands/config"
	"github.com/dep2p/go-netislands/internal/core/listener"
	"github.com/dep2p/go-netislands/internal/core/mailbox"
	"github.com/dep2p/go-netislands/internal/core/metrics"
	"github.com/dep2p/go-netislands/internal/core/neighbor"
)

// buildFxApp 构建 Fx 应用
//
// 生命周期钩子按注册的逆序停止：监听循环先退出，再释放邻居和信箱。
func buildFxApp(cfg *config.Config, island *Island, userOpts []fx.Option) *fx.App {
	modules := []fx.Option{
		fx.Supply(cfg),

		metrics.Module,
		mailbox.Module,
		neighbor.Module,
		listener.Module(),
	}

	// 用户扩展
	modules = append(modules, userOpts...)

	modules = append(modules,
		fx.Populate(&island.reporter, &island.mailbox, &island.directory, &island.listener),

		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	return fx.New(modules...)
}
