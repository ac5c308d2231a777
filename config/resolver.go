package config

import (
	"errors"
	"net"
	"time"
)

// ResolverConfig 主机名解析配置
type ResolverConfig struct {
	// Timeout 单次查询时限
	Timeout Duration `json:"timeout"`

	// Server 自定义 DNS 服务器（"ip:port"），为空使用系统解析
	Server string `json:"server,omitempty"`

	// CacheTTL 解析结果缓存时间，0 表示不缓存
	CacheTTL Duration `json:"cache_ttl"`
}

// DefaultResolverConfig 默认解析配置
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Timeout:  Duration(10 * time.Second), // 查询：10 秒
		CacheTTL: Duration(5 * time.Minute),  // 缓存：5 分钟
	}
}

// Validate 校验解析配置
func (c ResolverConfig) Validate() error {
	if c.Timeout <= 0 {
		return errors.New("resolver timeout must be positive")
	}
	if c.CacheTTL < 0 {
		return errors.New("resolver cache ttl must not be negative")
	}
	if c.Server != "" {
		if _, _, err := net.SplitHostPort(c.Server); err != nil {
			return errors.New("resolver server must be ip:port")
		}
	}
	return nil
}
