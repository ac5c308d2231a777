package metrics

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-netislands/config"
)

// Params Metrics 依赖参数
type Params struct {
	fx.In

	Config *config.Config `optional:"true"`
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewReporterFromParams),
)

// NewReporterFromParams 按配置创建 Reporter，关闭统计时返回 Nop
func NewReporterFromParams(p Params) Reporter {
	if p.Config != nil && !p.Config.Metrics.Enabled {
		return Nop{}
	}
	return NewCounter()
}
