// Package resolver 把邻居主机名解析为点分十进制地址
//
// 使用系统解析器（遵循 /etc/hosts 与系统 DNS 配置），也可以指定自定义
// DNS 服务器。优先返回 IPv4 地址，没有时返回第一个地址。字面量 IP 不查询。
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/dep2p/go-netislands/config"
	"github.com/dep2p/go-netislands/internal/util/logger"
)

var log = logger.Logger("resolver")

var (
	// ErrEmptyHost 主机名为空
	ErrEmptyHost = errors.New("empty host")

	// ErrNoAddress 主机名没有可用地址
	ErrNoAddress = errors.New("no address for host")
)

// lookupFunc 与 net.Resolver.LookupIP 同签名
type lookupFunc func(ctx context.Context, network, host string) ([]net.IP, error)

// Resolver 主机名解析器
type Resolver struct {
	lookup  lookupFunc
	timeout time.Duration
	ttl     time.Duration
	cache   *Cache
}

// New 按配置创建解析器，cache 为 nil 时不缓存
func New(cfg config.ResolverConfig, cache *Cache) *Resolver {
	nr := net.DefaultResolver
	if cfg.Server != "" {
		server := cfg.Server
		timeout := cfg.Timeout.Duration()
		nr = &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
				d := net.Dialer{Timeout: timeout}
				return d.DialContext(ctx, network, server)
			},
		}
	}

	return &Resolver{
		lookup:  nr.LookupIP,
		timeout: cfg.Timeout.Duration(),
		ttl:     cfg.CacheTTL.Duration(),
		cache:   cache,
	}
}

// Resolve 解析 host，返回地址的文本形式
func (r *Resolver) Resolve(ctx context.Context, host string) (string, error) {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if host == "" {
		return "", ErrEmptyHost
	}

	if ip := net.ParseIP(host); ip != nil {
		return canonical(ip), nil
	}

	key := strings.ToLower(host)
	if r.cache != nil {
		if addr, ok := r.cache.Get(key); ok {
			log.Debug("使用缓存的解析结果", "host", host, "addr", addr)
			return addr, nil
		}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	addr, err := r.resolve(ctx, host)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		r.cache.Put(key, addr, r.ttl)
	}
	log.Debug("解析主机名", "host", host, "addr", addr)
	return addr, nil
}

func (r *Resolver) resolve(ctx context.Context, host string) (string, error) {
	ips, err := r.lookup(ctx, "ip4", host)
	if err == nil && len(ips) > 0 {
		return canonical(ips[0]), nil
	}

	ips, err = r.lookup(ctx, "ip", host)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("resolve %s: %w", host, ErrNoAddress)
	}
	return canonical(ips[0]), nil
}

// canonical IPv4（含映射地址）返回点分十进制，其余原样
func canonical(ip net.IP) string {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4.String()
	}
	return ip.String()
}
