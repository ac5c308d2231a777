// Package metrics 提供岛屿的流量统计
//
// 统计分三层：
//
//	// 1. 全局
//	totals := counter.Totals()
//
//	// 2. 按消息标签（join--- / data---）
//	byTag := counter.ByTag()
//
//	// 3. 按邻居（"host:port"）
//	byNeighbor := counter.ByNeighbor()
//
// 另外记录事件计数：发送失败、邻居移除、信箱丢弃、畸形消息、限流丢弃。
//
// 速率由 RateMeter 计算（60 个 1 秒桶的滑动窗口），时间源使用
// github.com/benbjohnson/clock，测试中可替换为 clock.Mock。
//
// Collector 将统计导出为 Prometheus 指标：
//
//	reg := prometheus.NewRegistry()
//	reg.MustRegister(metrics.NewCollector(counter))
package metrics
