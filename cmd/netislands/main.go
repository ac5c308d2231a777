// Package main 提供 netislands 命令行入口
//
// 用法：
//
//	netislands [flags] time_to_live port [host:port]*
//
// 岛屿存活 time_to_live 秒，每 0.5 秒向所有邻居广播一条消息，
// 并打印信箱中收到的全部消息。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-netislands"
	"github.com/dep2p/go-netislands/internal/core/metrics"
	"github.com/dep2p/go-netislands/internal/util/logger"
)

var log = logger.Logger("cmd")

// timestep 两次广播之间的间隔
const timestep = 500 * time.Millisecond

const separator = "-------------------------------------------------------------------------------"

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile  = flag.String("config", "", "配置文件路径（JSON）")
	maxFailures = flag.Uint("max-failures", 16, "邻居连续失败多少次后移除（0 = 从不移除）")
	maxMailbox  = flag.Int("max-mailbox", -1, "信箱长度上限（0 = 不限，-1 = 使用配置）")
	logFile     = flag.String("log", "", "日志文件路径（默认输出到 stderr）")
	metricsAddr = flag.String("metrics-addr", "", "Prometheus 指标监听地址，例如 :9100")
	showVersion = flag.Bool("version", false, "显示版本信息")
)

// runArgs 位置参数
type runArgs struct {
	ttl       time.Duration
	port      int
	neighbors []string
}

func main() {
	flag.Usage = usage
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] time_to_live port [host:port]*\n", os.Args[0])
	flag.PrintDefaults()
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(netislands.VersionInfo())
		return nil
	}

	args, err := parseArgs(flag.Args())
	if err != nil {
		flag.Usage()
		return err
	}

	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	island, err := netislands.New(ctx, args.port, args.neighbors, buildOptions()...)
	if err != nil {
		return err
	}
	defer func() {
		if err := island.Close(); err != nil {
			log.Warn("关闭岛屿出错", "err", err)
		}
	}()

	fmt.Printf("Island initialized at port: %d\n", island.Port())

	if *metricsAddr != "" {
		srv := serveMetrics(*metricsAddr, island.Metrics())
		defer srv.Close()
	}

	return loop(ctx, island, args.ttl, os.Stdout)
}

// parseArgs 解析位置参数
func parseArgs(args []string) (runArgs, error) {
	if len(args) < 2 {
		return runArgs{}, errors.New("需要 time_to_live 与 port")
	}

	ttl, err := strconv.Atoi(args[0])
	if err != nil || ttl < 0 {
		return runArgs{}, fmt.Errorf("无效的 time_to_live: %q", args[0])
	}
	port, err := strconv.Atoi(args[1])
	if err != nil || port < 0 || port > 65535 {
		return runArgs{}, fmt.Errorf("无效的端口: %q", args[1])
	}

	return runArgs{
		ttl:       time.Duration(ttl) * time.Second,
		port:      port,
		neighbors: args[2:],
	}, nil
}

// buildOptions 由命令行参数构建岛屿选项
func buildOptions() []netislands.Option {
	var opts []netislands.Option
	if *configFile != "" {
		opts = append(opts, netislands.WithConfigFile(*configFile))
	}
	opts = append(opts, netislands.WithMaxFailures(*maxFailures))
	if *maxMailbox >= 0 {
		opts = append(opts, netislands.WithMaxMailboxLength(*maxMailbox))
	}
	return opts
}

// loop 每个 timestep 广播一次并打印收到的消息，直到 ttl 耗尽或 ctx 取消
func loop(ctx context.Context, island *netislands.Island, ttl time.Duration, out io.Writer) error {
	ticker := time.NewTicker(timestep)
	defer ticker.Stop()

	for remaining := ttl; remaining > 0; remaining -= timestep {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := island.Send(ctx, formatMessage(island.Port(), remaining)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		printMailbox(island, out)
	}
	return nil
}

// formatMessage 演示用的数据消息
func formatMessage(port int, remaining time.Duration) []byte {
	return []byte(fmt.Sprintf("Message from port %d: %d microseconds remaining until our island sinks!\n",
		port, remaining.Microseconds()))
}

// printMailbox 取出并打印信箱中的全部消息
func printMailbox(island *netislands.Island, out io.Writer) {
	if island.MailboxLen() > 0 {
		fmt.Fprintln(out, "=MESSAGE=QUEUE=================================================================")
	}
	for {
		msg, ok := island.DequeueMessage()
		if !ok {
			return
		}
		fmt.Fprintf(out, "%s", msg)
		fmt.Fprintln(out, separator)
	}
}

// serveMetrics 在 addr 上提供 /metrics
func serveMetrics(addr string, reporter metrics.Reporter) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		metrics.NewCollector(reporter),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("指标服务退出", "addr", addr, "err", err)
		}
	}()
	log.Info("指标服务已启动", "addr", addr)
	return srv
}
