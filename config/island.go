package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// IslandConfig 岛屿配置
type IslandConfig struct {
	// Port 监听端口，0 表示由系统分配
	Port int `json:"port"`

	// Neighbors 初始邻居，格式 "host:port"
	Neighbors []string `json:"neighbors,omitempty"`

	// MaxMailboxLength 信箱最大长度，0 表示不限
	MaxMailboxLength int `json:"max_mailbox_length"`

	// MaxFailures 邻居累计发送失败达到该值即被移除，0 表示不移除
	MaxFailures uint `json:"max_failures"`
}

// DefaultIslandConfig 默认岛屿配置
func DefaultIslandConfig() IslandConfig {
	return IslandConfig{
		Port:             0,
		MaxMailboxLength: 1024, // 信箱：最多 1024 条，满了丢最旧的
		MaxFailures:      16,   // 失败阈值：16 次
	}
}

// Validate 校验岛屿配置
func (c IslandConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxMailboxLength < 0 {
		return errors.New("max mailbox length must not be negative")
	}
	for _, n := range c.Neighbors {
		if _, _, err := SplitHostPort(n); err != nil {
			return err
		}
	}
	return nil
}

// SplitHostPort 解析 "host:port" 形式的邻居地址
func SplitHostPort(s string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return "", 0, fmt.Errorf("invalid neighbor %q: %w", s, err)
	}
	if host == "" {
		return "", 0, fmt.Errorf("invalid neighbor %q: empty host", s)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid neighbor %q: bad port", s)
	}
	return host, port, nil
}
