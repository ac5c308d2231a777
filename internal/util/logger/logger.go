// Package logger 提供 netislands 的统一日志
//
// 基于标准库 log/slog，每个子系统一个 Logger：
//
//	var log = logger.Logger("listener")
//
//	log.Info("accepted connection", "remote", addr)
//	log.Debug("message dropped", "reason", err)
//
// 环境变量:
//
//	# listener 为 debug，其余为 warn
//	NETISLANDS_LOG_LEVEL=listener=debug,warn
//
//	# JSON 输出
//	NETISLANDS_LOG_FORMAT=json
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	loggers  sync.Map // subsystem -> *slog.Logger
	handlers sync.Map // subsystem -> *levelHandler
)

// Logger 返回子系统的 Logger，同一子系统总是返回同一实例
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	h := newHandler(subsystem, ConfigFromEnv())
	actual, loaded := loggers.LoadOrStore(subsystem, slog.New(h))
	if !loaded {
		handlers.Store(subsystem, h)
	}
	return actual.(*slog.Logger)
}

// SetLevel 运行时调整子系统的日志级别
func SetLevel(subsystem string, level slog.Level) {
	if h, ok := handlers.Load(subsystem); ok {
		h.(*levelHandler).level.Set(level)
	}
}

// SetGlobalLevel 调整所有已创建子系统的日志级别
func SetGlobalLevel(level slog.Level) {
	handlers.Range(func(_, value any) bool {
		value.(*levelHandler).level.Set(level)
		return true
	})
}

// SetOutput 重定向所有 Logger 的输出，包括已经创建的
func SetOutput(w io.Writer) {
	outputMu.Lock()
	output = w
	outputMu.Unlock()
}

// Discard 返回丢弃所有日志的 Logger（测试用）
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}
