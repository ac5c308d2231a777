package config

import (
	"errors"
	"time"
)

// ListenerConfig 入站监听配置
type ListenerConfig struct {
	// Host 监听地址
	Host string `json:"host"`

	// PollInterval 等待连接的轮询周期，也是关闭延迟的上限
	PollInterval Duration `json:"poll_interval"`

	// ReadTimeout 单个连接读完整条消息的时限，0 表示不限
	ReadTimeout Duration `json:"read_timeout"`

	// MaxMessageSize 接收缓冲区大小（字节），超过的消息被丢弃
	MaxMessageSize int `json:"max_message_size"`

	// MaxMessagesPerSecond 入站消息速率上限，0 表示不限
	MaxMessagesPerSecond float64 `json:"max_messages_per_second"`

	// Burst 速率限制的突发容量
	Burst int `json:"burst"`
}

// DefaultListenerConfig 默认监听配置
func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		Host:                 "0.0.0.0",
		PollInterval:         Duration(500 * time.Millisecond), // 轮询：0.5 秒
		ReadTimeout:          Duration(10 * time.Second),       // 读超时：10 秒
		MaxMessageSize:       16 << 10,                         // 接收缓冲：16 KiB
		MaxMessagesPerSecond: 0,
		Burst:                64,
	}
}

// Validate 校验监听配置
func (c ListenerConfig) Validate() error {
	if c.PollInterval <= 0 {
		return errors.New("poll interval must be positive")
	}
	if c.ReadTimeout < 0 {
		return errors.New("read timeout must not be negative")
	}
	if c.MaxMessageSize <= 0 {
		return errors.New("max message size must be positive")
	}
	if c.MaxMessagesPerSecond < 0 {
		return errors.New("max messages per second must not be negative")
	}
	if c.MaxMessagesPerSecond > 0 && c.Burst <= 0 {
		return errors.New("burst must be positive when rate limiting")
	}
	return nil
}
