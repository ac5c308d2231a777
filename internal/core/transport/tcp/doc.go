// Package tcp 实现岛屿协议的 TCP 传输
//
// 每条消息占用一个 TCP 连接：发送方连接、写完整消息、关闭；
// 接收方读到 EOF 即得到完整消息，协议本身没有长度前缀。
//
// # 使用示例
//
//	// 监听
//	l, err := tcp.Listen(ctx, "0.0.0.0", 5000)
//	conn, err := l.AcceptTimeout(500 * time.Millisecond)
//	n, err := tcp.ReadUntilClose(conn, buf, 10*time.Second)
//
//	// 发送
//	s := tcp.NewSender(5*time.Second, 5*time.Second)
//	err := s.ConnectSendClose(ctx, "127.0.0.1", 5001, wire.TagData, payload)
package tcp
