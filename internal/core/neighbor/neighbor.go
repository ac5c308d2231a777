// Package neighbor 维护岛屿的邻居目录
//
// 目录是一把互斥锁保护的邻居队列。广播在一次加锁内完成：
// 逐个（或有限并发地）向全部邻居发送，失败的邻居失败计数加一，
// 整轮结束后移除失败计数达到阈值的邻居。收到 join 时按
// (Host, Port) 查找，已知邻居的失败计数清零，未知邻居追加到队尾。
package neighbor

import (
	"context"
	"net"
	"strconv"

	"github.com/dep2p/go-netislands/internal/protocol/wire"
)

// Neighbor 一个邻居岛屿
//
// 身份为 (Host, Port)，FailureCount 不参与比较。
type Neighbor struct {
	Host         string
	Port         int
	FailureCount uint
}

// Addr 返回 "host:port"
func (n Neighbor) Addr() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
}

// Is 身份相同
func (n Neighbor) Is(host string, port int) bool {
	return n.Host == host && n.Port == port
}

func sameIdentity(a, b *Neighbor) bool {
	return a.Is(b.Host, b.Port)
}

// Sender 向单个邻居发送一条消息
//
// 返回 nil 表示发送成功，任何错误都计为一次失败。
type Sender interface {
	ConnectSendClose(ctx context.Context, host string, port int, tag wire.Tag, payload []byte) error
}

// BroadcastResult 一次广播的结果
type BroadcastResult struct {
	// Attempted 尝试发送的邻居数
	Attempted int

	// Failed 发送失败的邻居数
	Failed int

	// Evicted 本轮被移除的邻居
	Evicted []Neighbor

	// Aborted 调用方 ctx 在本轮结束前失效：未发送的邻居被跳过，不计失败也不移除
	Aborted bool
}
