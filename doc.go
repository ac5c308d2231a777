// Package netislands 实现基于 TCP 的去中心化消息岛屿
//
// 每个岛屿（Island）监听一个 TCP 端口，维护一份邻居列表。
// Send 把一条数据消息逐个发给所有邻居；收到的数据消息进入信箱，
// 由 DequeueMessage 按到达顺序取出。
//
// # 快速开始
//
//	island, err := netislands.New(ctx, 5000, []string{"localhost:5001"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer island.Close()
//
//	_ = island.Send(ctx, []byte("hello"))
//
//	for {
//	    msg, ok := island.DequeueMessage()
//	    if !ok {
//	        break
//	    }
//	    fmt.Println(string(msg))
//	}
//
// # 协议
//
// 每条消息占用一个 TCP 连接，发送方写完即关闭：
//
//	"netislands" | "1.0-0" | tag（8 字节）| payload | 0x00
//
// tag 为 "join---\x00" 或 "data---\x00"。join 的 payload 是发送方的十进制
// 监听端口；接收方用连接的源地址和该端口更新邻居列表。
//
// # 邻居管理
//
// 向邻居发送失败时该邻居的失败计数加一，达到 WithMaxFailures 设定的阈值
// 后在本轮广播结束时被移除。收到某个邻居的 join 会把它的失败计数清零。
//
// # 配置
//
// 配置通过 Option 传入，或用 WithConfig / WithConfigFile 提供完整的
// config.Config。日志级别由环境变量 NETISLANDS_LOG_LEVEL 控制。
package netislands
