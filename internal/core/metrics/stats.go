package metrics

// Stats 某个维度的流量快照
type Stats struct {
	TotalIn     int64   // 入站字节
	TotalOut    int64   // 出站字节
	MessagesIn  int64   // 入站消息数
	MessagesOut int64   // 出站成功消息数
	Failures    int64   // 出站失败次数
	RateIn      float64 // 入站速率（字节/秒）
	RateOut     float64 // 出站速率（字节/秒）
}

// Events 事件计数快照
type Events struct {
	Evictions    int64 // 因失败次数过多被移除的邻居
	MailboxDrops int64 // 信箱满时丢弃的最旧消息
	Malformed    int64 // 头部畸形或标签未知被丢弃的消息
	RateLimited  int64 // 超过入站速率被丢弃的连接
	Oversized    int64 // 超过接收缓冲区被丢弃的消息
	ReadErrors   int64 // 读取中断的连接
}
