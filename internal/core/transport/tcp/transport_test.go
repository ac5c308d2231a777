package tcp

import (
	"bytes"
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-netislands/internal/protocol/wire"
)

func listenLocal(t *testing.T) *Listener {
	t.Helper()
	l, err := Listen(context.Background(), "127.0.0.1", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

// acceptOne 在后台接收一个连接并读完
func acceptOne(t *testing.T, l *Listener, size int) <-chan []byte {
	t.Helper()
	out := make(chan []byte, 1)
	go func() {
		defer close(out)
		conn, err := l.AcceptTimeout(5 * time.Second)
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, size)
		n, err := ReadUntilClose(conn, buf, 5*time.Second)
		if err != nil {
			return
		}
		out <- buf[:n]
	}()
	return out
}

func TestListen_EphemeralPort(t *testing.T) {
	l := listenLocal(t)

	assert.NotZero(t, l.Port())
	assert.Equal(t, l.Port(), l.Addr().(*net.TCPAddr).Port)
}

func TestListen_PortInUse(t *testing.T) {
	l := listenLocal(t)

	_, err := Listen(context.Background(), "127.0.0.1", l.Port())
	assert.ErrorIs(t, err, ErrListen)
}

func TestListener_AcceptTimeout(t *testing.T) {
	l := listenLocal(t)

	start := time.Now()
	conn, err := l.AcceptTimeout(50 * time.Millisecond)
	assert.Nil(t, conn)
	assert.ErrorIs(t, err, ErrAcceptTimeout)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestListener_Close(t *testing.T) {
	l := listenLocal(t)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	assert.True(t, l.IsClosed())

	_, err := l.AcceptTimeout(10 * time.Millisecond)
	assert.ErrorIs(t, err, ErrListenerClosed)
}

func TestSender_ConnectSendClose(t *testing.T) {
	l := listenLocal(t)
	got := acceptOne(t, l, 1024)

	s := NewSender(time.Second, time.Second)
	err := s.ConnectSendClose(context.Background(), "127.0.0.1", l.Port(), wire.TagData, []byte("hello"))
	require.NoError(t, err)

	select {
	case msg := <-got:
		assert.Equal(t, wire.Encode(wire.TagData, []byte("hello")), msg)

		decoded, err := wire.Decode(msg)
		require.NoError(t, err)
		assert.Equal(t, wire.TagData, decoded.Tag)
		assert.Equal(t, []byte("hello"), wire.DataPayload(decoded.Payload))
	case <-time.After(5 * time.Second):
		t.Fatal("message not received")
	}
}

func TestSender_Join(t *testing.T) {
	l := listenLocal(t)
	got := acceptOne(t, l, 1024)

	s := NewSender(time.Second, time.Second)
	require.NoError(t, s.ConnectSendClose(context.Background(), "127.0.0.1", l.Port(), wire.TagJoin, wire.EncodeJoin(5001)))

	msg := <-got
	decoded, err := wire.Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, wire.TagJoin, decoded.Tag)

	port, err := wire.ParseJoinPort(decoded.Payload)
	require.NoError(t, err)
	assert.Equal(t, 5001, port)
}

func TestSender_DialFailure(t *testing.T) {
	l := listenLocal(t)
	port := l.Port()
	require.NoError(t, l.Close())

	s := NewSender(time.Second, time.Second)
	err := s.ConnectSendClose(context.Background(), "127.0.0.1", port, wire.TagData, nil)
	assert.ErrorIs(t, err, ErrDial)
}

func TestReadUntilClose_ExactFit(t *testing.T) {
	l := listenLocal(t)
	msg := wire.Encode(wire.TagData, []byte("abc"))
	got := acceptOne(t, l, len(msg))

	conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(l.Port())))
	require.NoError(t, err)
	_, err = conn.Write(msg)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	assert.Equal(t, msg, <-got)
}

func TestReadUntilClose_TooLarge(t *testing.T) {
	l := listenLocal(t)

	errc := make(chan error, 1)
	go func() {
		conn, err := l.AcceptTimeout(5 * time.Second)
		if err != nil {
			errc <- err
			return
		}
		defer conn.Close()
		_, err = ReadUntilClose(conn, make([]byte, 16), 5*time.Second)
		errc <- err
	}()

	conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(l.Port())))
	require.NoError(t, err)
	_, err = conn.Write(bytes.Repeat([]byte{'x'}, 64))
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	assert.ErrorIs(t, <-errc, ErrMessageTooLarge)
}

func TestReadUntilClose_Timeout(t *testing.T) {
	l := listenLocal(t)

	errc := make(chan error, 1)
	go func() {
		conn, err := l.AcceptTimeout(5 * time.Second)
		if err != nil {
			errc <- err
			return
		}
		defer conn.Close()
		_, err = ReadUntilClose(conn, make([]byte, 16), 50*time.Millisecond)
		errc <- err
	}()

	conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(l.Port())))
	require.NoError(t, err)
	defer conn.Close()

	err = <-errc
	require.Error(t, err)
	var ne net.Error
	require.ErrorAs(t, err, &ne)
	assert.True(t, ne.Timeout())
}
