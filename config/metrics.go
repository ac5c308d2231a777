package config

// MetricsConfig 流量统计配置
type MetricsConfig struct {
	// Enabled 是否记录收发统计
	Enabled bool `json:"enabled"`
}

// DefaultMetricsConfig 默认统计配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Enabled: true}
}
