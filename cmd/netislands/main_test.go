package main

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-netislands"
)

func TestParseArgs(t *testing.T) {
	args, err := parseArgs([]string{"3", "5000", "localhost:5001", "10.0.0.2:5002"})
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, args.ttl)
	assert.Equal(t, 5000, args.port)
	assert.Equal(t, []string{"localhost:5001", "10.0.0.2:5002"}, args.neighbors)

	for _, bad := range [][]string{
		nil,
		{"3"},
		{"x", "5000"},
		{"3", "port"},
		{"3", "70000"},
		{"-1", "5000"},
	} {
		_, err := parseArgs(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestFormatMessage(t *testing.T) {
	msg := formatMessage(5000, 1500*time.Millisecond)
	assert.Equal(t, "Message from port 5000: 1500000 microseconds remaining until our island sinks!\n", string(msg))
}

func TestLoop_TwoIslands(t *testing.T) {
	ctx := context.Background()

	a, err := netislands.New(ctx, 0, nil, netislands.WithListenHost("127.0.0.1"), netislands.WithPollInterval(50*time.Millisecond))
	require.NoError(t, err)
	defer a.Close()

	b, err := netislands.New(ctx, 0, []string{"127.0.0.1:" + strconv.Itoa(a.Port())},
		netislands.WithListenHost("127.0.0.1"), netislands.WithPollInterval(50*time.Millisecond))
	require.NoError(t, err)
	defer b.Close()

	var out bytes.Buffer
	require.NoError(t, loop(ctx, b, time.Second, &out))

	require.Eventually(t, func() bool { return a.MailboxLen() == 2 }, 5*time.Second, 10*time.Millisecond)

	var got bytes.Buffer
	printMailbox(a, &got)
	assert.Equal(t, 2, strings.Count(got.String(), "microseconds remaining until our island sinks!"))
	assert.True(t, strings.HasPrefix(got.String(), "=MESSAGE=QUEUE="))
	assert.Zero(t, a.MailboxLen())
}

func TestLoop_Cancelled(t *testing.T) {
	island, err := netislands.New(context.Background(), 0, nil, netislands.WithListenHost("127.0.0.1"))
	require.NoError(t, err)
	defer island.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	require.NoError(t, loop(ctx, island, time.Hour, &bytes.Buffer{}))
	assert.Less(t, time.Since(start), time.Second)
}
