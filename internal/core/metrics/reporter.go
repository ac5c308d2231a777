package metrics

// Reporter 记录和查询岛屿流量
type Reporter interface {
	// LogSent 记录一次成功发送
	LogSent(tag, neighbor string, size int64)

	// LogSendFailure 记录一次失败发送
	LogSendFailure(tag, neighbor string)

	// LogRecv 记录一条收到的合法消息
	LogRecv(tag, from string, size int64)

	// LogEviction 记录一次邻居移除
	LogEviction(neighbor string)

	// LogMailboxDrop 记录一次信箱溢出丢弃
	LogMailboxDrop()

	// LogMalformed 记录一条被丢弃的畸形消息
	LogMalformed()

	// LogRateLimited 记录一个被限流的连接
	LogRateLimited()

	// LogOversized 记录一条超长消息
	LogOversized()

	// LogReadError 记录一个读取失败的连接
	LogReadError()

	// Totals 全局统计
	Totals() Stats

	// ByTag 按标签统计
	ByTag() map[string]Stats

	// ByNeighbor 按邻居统计
	ByNeighbor() map[string]Stats

	// Events 事件计数
	Events() Events

	// Reset 清空全部统计
	Reset()
}

var (
	_ Reporter = (*Counter)(nil)
	_ Reporter = Nop{}
)

// Nop 不记录任何内容的 Reporter，统计关闭时使用
type Nop struct{}

func (Nop) LogSent(string, string, int64) {}
func (Nop) LogSendFailure(string, string) {}
func (Nop) LogRecv(string, string, int64) {}
func (Nop) LogEviction(string)            {}
func (Nop) LogMailboxDrop()               {}
func (Nop) LogMalformed()                 {}
func (Nop) LogRateLimited()               {}
func (Nop) LogOversized()                 {}
func (Nop) LogReadError()                 {}
func (Nop) Totals() Stats                 { return Stats{} }
func (Nop) ByTag() map[string]Stats       { return map[string]Stats{} }
func (Nop) ByNeighbor() map[string]Stats  { return map[string]Stats{} }
func (Nop) Events() Events                { return Events{} }
func (Nop) Reset()                        {}
