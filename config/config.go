// Package config 提供 netislands 的配置管理
//
// 主 Config 嵌入各组件的子配置，每个子配置在独立文件中定义，
// 可以从 JSON 文件加载：
//
//	cfg := config.NewConfig()
//	cfg.Island.MaxFailures = 8
//
//	// 从文件加载
//	cfg, err := config.LoadFile("island.json")
package config

import (
	"errors"
	"fmt"
)

// Config 岛屿的完整配置
type Config struct {
	// Island 岛屿本身：端口、邻居、信箱与失败阈值
	Island IslandConfig `json:"island"`

	// Listener 入站监听循环
	Listener ListenerConfig `json:"listener"`

	// Sender 出站扇出
	Sender SenderConfig `json:"sender"`

	// Resolver 邻居主机名解析
	Resolver ResolverConfig `json:"resolver"`

	// Metrics 流量统计
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Island:   DefaultIslandConfig(),
		Listener: DefaultListenerConfig(),
		Sender:   DefaultSenderConfig(),
		Resolver: DefaultResolverConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// Validate 校验全部子配置，返回所有发现的问题
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	var errs ValidationErrors
	errs.add("island", c.Island.Validate())
	errs.add("listener", c.Listener.Validate())
	errs.add("sender", c.Sender.Validate())
	errs.add("resolver", c.Resolver.Validate())

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// Clone 返回配置的深拷贝
func (c *Config) Clone() *Config {
	dup := *c
	dup.Island.Neighbors = append([]string(nil), c.Island.Neighbors...)
	return &dup
}

// ============================================================================
//                              校验错误
// ============================================================================

// ValidationError 单个子配置的校验错误
type ValidationError struct {
	Section string
	Err     error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config [%s]: %v", e.Section, e.Err)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors 多个校验错误
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msg := ""
	for i, err := range e {
		if i > 0 {
			msg += "; "
		}
		msg += err.Error()
	}
	return msg
}

// HasErrors 是否有错误
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

func (e *ValidationErrors) add(section string, err error) {
	if err != nil {
		*e = append(*e, ValidationError{Section: section, Err: err})
	}
}
