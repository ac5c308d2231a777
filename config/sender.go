package config

import (
	"errors"
	"time"
)

// SenderConfig 出站扇出配置
type SenderConfig struct {
	// DialTimeout 建立连接的时限
	DialTimeout Duration `json:"dial_timeout"`

	// WriteTimeout 写完一条消息的时限
	WriteTimeout Duration `json:"write_timeout"`

	// Parallelism 一次广播中同时发送的邻居数，1 表示逐个发送
	Parallelism int `json:"parallelism"`
}

// DefaultSenderConfig 默认出站配置
func DefaultSenderConfig() SenderConfig {
	return SenderConfig{
		DialTimeout:  Duration(5 * time.Second), // 连接：5 秒
		WriteTimeout: Duration(5 * time.Second), // 写入：5 秒
		Parallelism:  1,
	}
}

// Validate 校验出站配置
func (c SenderConfig) Validate() error {
	if c.DialTimeout <= 0 {
		return errors.New("dial timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("write timeout must be positive")
	}
	if c.Parallelism < 1 {
		return errors.New("parallelism must be at least 1")
	}
	return nil
}
