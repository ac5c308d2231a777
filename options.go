package netislands

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-netislands/config"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置（WithConfig / WithConfigFile）
	base       *config.Config
	configFile string

	// 岛屿
	maxMailboxLength *int
	maxFailures      *uint

	// 监听
	listenHost     string
	pollInterval   *time.Duration
	readTimeout    *time.Duration
	maxMessageSize *int
	rateLimit      *float64
	rateBurst      *int

	// 发送
	dialTimeout  *time.Duration
	writeTimeout *time.Duration
	parallelism  *int

	// 解析
	resolverServer string

	// 统计
	metrics *bool

	// 用户扩展
	userFxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{}
}

// toConfig 合成最终配置并校验
func (o *options) toConfig(port int, neighbors []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case o.base != nil:
		cfg = o.base.Clone()
	case o.configFile != "":
		loaded, err := config.LoadFile(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		cfg = config.NewConfig()
	}

	cfg.Island.Port = port
	cfg.Island.Neighbors = append([]string(nil), neighbors...)

	if o.maxMailboxLength != nil {
		cfg.Island.MaxMailboxLength = *o.maxMailboxLength
	}
	if o.maxFailures != nil {
		cfg.Island.MaxFailures = *o.maxFailures
	}

	if o.listenHost != "" {
		cfg.Listener.Host = o.listenHost
	}
	if o.pollInterval != nil {
		cfg.Listener.PollInterval = config.Duration(*o.pollInterval)
	}
	if o.readTimeout != nil {
		cfg.Listener.ReadTimeout = config.Duration(*o.readTimeout)
	}
	if o.maxMessageSize != nil {
		cfg.Listener.MaxMessageSize = *o.maxMessageSize
	}
	if o.rateLimit != nil {
		cfg.Listener.MaxMessagesPerSecond = *o.rateLimit
	}
	if o.rateBurst != nil {
		cfg.Listener.Burst = *o.rateBurst
	}

	if o.dialTimeout != nil {
		cfg.Sender.DialTimeout = config.Duration(*o.dialTimeout)
	}
	if o.writeTimeout != nil {
		cfg.Sender.WriteTimeout = config.Duration(*o.writeTimeout)
	}
	if o.parallelism != nil {
		cfg.Sender.Parallelism = *o.parallelism
	}

	if o.resolverServer != "" {
		cfg.Resolver.Server = o.resolverServer
	}

	if o.metrics != nil {
		cfg.Metrics.Enabled = *o.metrics
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ============================================================================
//                              配置来源
// ============================================================================

// WithConfig 以 cfg 的副本为基础配置
//
// 端口与邻居始终取 New 的参数，其余 Option 在其上覆盖。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config must not be nil")
		}
		o.base = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载基础配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.New("config file path must not be empty")
		}
		o.configFile = path
		return nil
	}
}

// ============================================================================
//                              岛屿选项
// ============================================================================

// WithMaxMailboxLength 设置信箱长度上限，0 表示不限
func WithMaxMailboxLength(n int) Option {
	return func(o *options) error {
		if n < 0 {
			return fmt.Errorf("max mailbox length must not be negative: %d", n)
		}
		o.maxMailboxLength = &n
		return nil
	}
}

// WithMaxFailures 设置移除邻居的失败阈值，0 表示从不移除
func WithMaxFailures(n uint) Option {
	return func(o *options) error {
		o.maxFailures = &n
		return nil
	}
}

// ============================================================================
//                              监听选项
// ============================================================================

// WithListenHost 设置监听地址，默认 0.0.0.0
func WithListenHost(host string) Option {
	return func(o *options) error {
		o.listenHost = host
		return nil
	}
}

// WithPollInterval 设置监听轮询周期，也是 Close 的最长等待时间
func WithPollInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("poll interval must be positive: %s", d)
		}
		o.pollInterval = &d
		return nil
	}
}

// WithReadTimeout 设置读取单条消息的时限，0 表示不限
func WithReadTimeout(d time.Duration) Option {
	return func(o *options) error {
		o.readTimeout = &d
		return nil
	}
}

// WithMaxMessageSize 设置接收缓冲区大小
func WithMaxMessageSize(n int) Option {
	return func(o *options) error {
		o.maxMessageSize = &n
		return nil
	}
}

// WithInboundRateLimit 限制每秒接收的消息数，超出的连接直接关闭
func WithInboundRateLimit(perSecond float64, burst int) Option {
	return func(o *options) error {
		o.rateLimit = &perSecond
		o.rateBurst = &burst
		return nil
	}
}

// ============================================================================
//                              发送选项
// ============================================================================

// WithDialTimeout 设置连接邻居的时限
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) error {
		o.dialTimeout = &d
		return nil
	}
}

// WithWriteTimeout 设置写一条消息的时限
func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) error {
		o.writeTimeout = &d
		return nil
	}
}

// WithParallelism 设置广播时同时发送的邻居数
func WithParallelism(n int) Option {
	return func(o *options) error {
		o.parallelism = &n
		return nil
	}
}

// ============================================================================
//                              其他选项
// ============================================================================

// WithResolverServer 使用自定义 DNS 服务器（"ip:port"）解析邻居
func WithResolverServer(addr string) Option {
	return func(o *options) error {
		o.resolverServer = addr
		return nil
	}
}

// WithMetrics 开启或关闭收发统计
func WithMetrics(enabled bool) Option {
	return func(o *options) error {
		o.metrics = &enabled
		return nil
	}
}

// WithFxOption 追加 Fx 选项，用于替换或装饰内部组件
func WithFxOption(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
