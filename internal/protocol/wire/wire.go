// Package wire 实现 netislands 协议的消息帧
//
// # 帧格式
//
//	+------------+---------+----------+-----------------+
//	| "netislands" | "1.0-0" | tag (8B) | payload ...     |
//	|   10 bytes   | 5 bytes |          |                 |
//	+------------+---------+----------+-----------------+
//
// 没有长度前缀，发送方写完后关闭连接即表示消息结束。
// 每个 payload 末尾附带一个 0x00 终止字节，与 C 实现的节点保持互通。
package wire

import (
	"bytes"
	"errors"
	"strconv"
)

// ============================================================================
//                              协议常量
// ============================================================================

const (
	// ProtocolID 协议标识
	ProtocolID = "netislands"

	// ProtocolVersion 协议版本
	ProtocolVersion = "1.0-0"

	// ProtocolIDLength 协议标识长度
	ProtocolIDLength = len(ProtocolID)

	// ProtocolVersionLength 协议版本长度
	ProtocolVersionLength = len(ProtocolVersion)

	// TagLength 标签长度（7 个可见字符 + 1 个填充字节）
	TagLength = 8

	// PrefixLength 协议标识 + 版本的长度
	PrefixLength = ProtocolIDLength + ProtocolVersionLength

	// HeaderLength 完整消息头长度
	HeaderLength = PrefixLength + TagLength

	// MaxPortStringLength join 负载中端口字符串的最大长度
	MaxPortStringLength = 8

	// Terminator payload 终止字节
	Terminator byte = 0x00
)

// prefix 消息头中固定不变的部分
var prefix = []byte(ProtocolID + ProtocolVersion)

// Prefix 返回协议标识 + 版本字面量的副本
func Prefix() []byte {
	return bytes.Clone(prefix)
}

// ============================================================================
//                              标签
// ============================================================================

// Tag 消息标签，按字节逐一比较（包括填充字节）
type Tag [TagLength]byte

var (
	// TagJoin 节点加入通告
	TagJoin = Tag{'j', 'o', 'i', 'n', '-', '-', '-', 0}

	// TagData 应用数据
	TagData = Tag{'d', 'a', 't', 'a', '-', '-', '-', 0}
)

// String 返回去掉填充字节的可读形式
func (t Tag) String() string {
	return string(bytes.TrimRight(t[:], "\x00"))
}

// Known 是否为已知标签
func (t Tag) Known() bool {
	return t == TagJoin || t == TagData
}

// ============================================================================
//                              错误定义
// ============================================================================

var (
	// ErrMalformed 消息头不完整或协议标识/版本不匹配
	ErrMalformed = errors.New("wire: malformed message header")

	// ErrUnknownTag 未知的消息标签
	ErrUnknownTag = errors.New("wire: unknown message tag")

	// ErrInvalidPort join 负载中的端口无效
	ErrInvalidPort = errors.New("wire: invalid join port")
)

// ============================================================================
//                              编解码
// ============================================================================

// Message 解码后的消息
type Message struct {
	Tag Tag

	// Payload 指向接收缓冲区，需要长期持有时调用方必须复制
	Payload []byte
}

// Validate 校验消息头
//
// 长度不足 HeaderLength 或前 PrefixLength 字节与协议字面量不符时返回 ErrMalformed。
func Validate(buf []byte) error {
	if len(buf) < HeaderLength {
		return ErrMalformed
	}
	if !bytes.Equal(buf[:PrefixLength], prefix) {
		return ErrMalformed
	}
	return nil
}

// Decode 校验并拆分消息，未知标签返回 ErrUnknownTag
func Decode(buf []byte) (Message, error) {
	if err := Validate(buf); err != nil {
		return Message{}, err
	}

	var tag Tag
	copy(tag[:], buf[PrefixLength:HeaderLength])
	if !tag.Known() {
		return Message{Tag: tag}, ErrUnknownTag
	}

	return Message{Tag: tag, Payload: buf[HeaderLength:]}, nil
}

// Encode 编码完整消息（头 + 标签 + payload + 终止字节）
func Encode(tag Tag, payload []byte) []byte {
	buf := make([]byte, 0, HeaderLength+len(payload)+1)
	buf = append(buf, prefix...)
	buf = append(buf, tag[:]...)
	buf = append(buf, payload...)
	return append(buf, Terminator)
}

// Header 返回标签对应的消息头
func Header(tag Tag) []byte {
	buf := make([]byte, 0, HeaderLength)
	buf = append(buf, prefix...)
	return append(buf, tag[:]...)
}

// DataPayload 返回数据消息的应用负载副本
//
// 去掉一个末尾终止字节（若存在），其余字节原样保留。
func DataPayload(payload []byte) []byte {
	if n := len(payload); n > 0 && payload[n-1] == Terminator {
		payload = payload[:n-1]
	}
	return bytes.Clone(payload)
}

// EncodeJoin 编码 join 负载：十进制端口字符串
func EncodeJoin(port int) []byte {
	return []byte(strconv.Itoa(port))
}

// ParseJoinPort 解析 join 负载中的端口
//
// 取前 MaxPortStringLength 字节，截断到第一个 0x00，再按 atoi 的方式读取前导数字。
// 结果不在 1..65535 范围内返回 ErrInvalidPort。
func ParseJoinPort(payload []byte) (int, error) {
	if len(payload) > MaxPortStringLength {
		payload = payload[:MaxPortStringLength]
	}
	if i := bytes.IndexByte(payload, Terminator); i >= 0 {
		payload = payload[:i]
	}
	payload = bytes.TrimLeft(payload, " \t\n\r\v\f")

	port := 0
	digits := 0
	for _, c := range payload {
		if c < '0' || c > '9' {
			break
		}
		port = port*10 + int(c-'0')
		digits++
	}
	if digits == 0 || port < 1 || port > 65535 {
		return 0, ErrInvalidPort
	}
	return port, nil
}
