package netislands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/dep2p/go-netislands/config"
	"github.com/dep2p/go-netislands/internal/core/metrics"
	"github.com/dep2p/go-netislands/internal/core/transport/tcp"
)

func localOptions(extra ...Option) []Option {
	return append([]Option{
		WithListenHost("127.0.0.1"),
		WithPollInterval(50 * time.Millisecond),
		WithDialTimeout(time.Second),
		WithWriteTimeout(time.Second),
	}, extra...)
}

func newLocalIsland(t *testing.T, neighbors []string, extra ...Option) *Island {
	t.Helper()
	island, err := New(context.Background(), 0, neighbors, localOptions(extra...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = island.Close() })
	return island
}

func addrOf(island *Island) string {
	return "127.0.0.1:" + strconv.Itoa(island.Port())
}

// closedPort 返回一个刚释放、无人监听的本地端口
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := tcp.Listen(context.Background(), "127.0.0.1", 0)
	require.NoError(t, err)
	port := l.Port()
	require.NoError(t, l.Close())
	return port
}

func waitMessage(t *testing.T, island *Island) []byte {
	t.Helper()
	var msg []byte
	require.Eventually(t, func() bool {
		m, ok := island.DequeueMessage()
		msg = m
		return ok
	}, 5*time.Second, 10*time.Millisecond)
	return msg
}

func TestIsland_JoinAndHello(t *testing.T) {
	a := newLocalIsland(t, nil)
	b := newLocalIsland(t, []string{addrOf(a)})

	// b 的 join 让 a 认识 b
	require.Eventually(t, func() bool {
		return len(a.Neighbors()) == 1
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{addrOf(b)}, a.Neighbors())

	require.NoError(t, b.Send(context.Background(), []byte("hello")))
	assert.Equal(t, []byte("hello"), waitMessage(t, a))

	require.NoError(t, a.Send(context.Background(), []byte("hello back")))
	assert.Equal(t, []byte("hello back"), waitMessage(t, b))

	_, ok := a.DequeueMessage()
	assert.False(t, ok)

	stats := a.Stats()
	assert.Equal(t, 1, stats.Neighbors)
	assert.Equal(t, int64(1), stats.ByTag["join---"].MessagesIn)
	assert.Equal(t, int64(1), stats.ByTag["data---"].MessagesIn)
	assert.Equal(t, int64(1), stats.ByTag["data---"].MessagesOut)
}

func TestIsland_HostnameNeighbor(t *testing.T) {
	a := newLocalIsland(t, nil)
	b := newLocalIsland(t, []string{"localhost:" + strconv.Itoa(a.Port())})

	neighbors := b.Neighbors()
	require.Len(t, neighbors, 1)
	assert.NotContains(t, neighbors[0], "localhost")

	require.NoError(t, b.Send(context.Background(), []byte("via hostname")))
	assert.Equal(t, []byte("via hostname"), waitMessage(t, a))
}

func TestIsland_MailboxBound(t *testing.T) {
	a := newLocalIsland(t, nil, WithMaxMailboxLength(2))
	b := newLocalIsland(t, []string{addrOf(a)})

	for _, m := range []string{"A", "B", "C"} {
		require.NoError(t, b.Send(context.Background(), []byte(m)))
	}
	require.Eventually(t, func() bool {
		return a.Stats().Events.MailboxDrops == 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, []byte("B"), waitMessage(t, a))
	assert.Equal(t, []byte("C"), waitMessage(t, a))
	assert.Zero(t, a.MailboxLen())
}

func TestIsland_EvictsDeadNeighbor(t *testing.T) {
	dead := "127.0.0.1:" + strconv.Itoa(closedPort(t))
	island := newLocalIsland(t, []string{dead}, WithMaxFailures(3))

	// join 失败一次
	assert.Equal(t, []string{dead}, island.Neighbors())

	require.NoError(t, island.Send(context.Background(), []byte("1")))
	assert.Equal(t, []string{dead}, island.Neighbors())

	require.NoError(t, island.Send(context.Background(), []byte("2")))
	assert.Empty(t, island.Neighbors())

	require.NoError(t, island.Send(context.Background(), []byte("3")))
	assert.Equal(t, int64(3), island.Stats().Totals.Failures)
	assert.Equal(t, int64(1), island.Stats().Events.Evictions)
}

func TestIsland_CancelledSendKeepsNeighbors(t *testing.T) {
	a := newLocalIsland(t, nil)
	b := newLocalIsland(t, []string{addrOf(a)}, WithMaxFailures(3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		require.ErrorIs(t, b.Send(ctx, []byte("x")), context.Canceled)
	}

	assert.Equal(t, []string{addrOf(a)}, b.Neighbors())
	assert.Zero(t, b.Stats().Totals.Failures)
	assert.Zero(t, b.Stats().Events.Evictions)

	require.NoError(t, b.Send(context.Background(), []byte("still here")))
	assert.Equal(t, []byte("still here"), waitMessage(t, a))
}

func TestIsland_EvictionDisabled(t *testing.T) {
	dead := "127.0.0.1:" + strconv.Itoa(closedPort(t))
	island := newLocalIsland(t, []string{dead}, WithMaxFailures(0))

	for i := 0; i < 5; i++ {
		require.NoError(t, island.Send(context.Background(), []byte("x")))
	}
	assert.Equal(t, []string{dead}, island.Neighbors())
}

func TestIsland_CloseIdempotent(t *testing.T) {
	before := ActiveIslands()

	island, err := New(context.Background(), 0, nil, localOptions()...)
	require.NoError(t, err)
	assert.Equal(t, before+1, ActiveIslands())

	require.NoError(t, island.Close())
	assert.Equal(t, before, ActiveIslands())

	require.NoError(t, island.Close())
	assert.Equal(t, before, ActiveIslands())

	assert.ErrorIs(t, island.Send(context.Background(), []byte("late")), ErrIslandClosed)
	_, ok := island.DequeueMessage()
	assert.False(t, ok)
}

func TestIsland_CloseReleasesPort(t *testing.T) {
	island, err := New(context.Background(), 0, nil, localOptions()...)
	require.NoError(t, err)
	port := island.Port()
	require.NoError(t, island.Close())

	again, err := New(context.Background(), port, nil, localOptions()...)
	require.NoError(t, err)
	assert.Equal(t, port, again.Port())
	require.NoError(t, again.Close())
}

func TestIsland_MultipleIslandsShareNetstack(t *testing.T) {
	before := ActiveIslands()

	islands := make([]*Island, 3)
	for i := range islands {
		island, err := New(context.Background(), 0, nil, localOptions()...)
		require.NoError(t, err)
		islands[i] = island
	}
	assert.Equal(t, before+3, ActiveIslands())

	for _, island := range islands {
		require.NoError(t, island.Close())
	}
	assert.Equal(t, before, ActiveIslands())
}

func TestIsland_ResolutionFailure(t *testing.T) {
	before := ActiveIslands()

	cfg := config.NewConfig()
	cfg.Resolver.Timeout = config.Duration(2 * time.Second)

	_, err := New(context.Background(), 0, []string{"no-such-island.invalid:5000"},
		localOptions(WithConfig(cfg))...)
	require.ErrorIs(t, err, ErrResolution)
	assert.Equal(t, before, ActiveIslands())
}

func TestIsland_BindFailure(t *testing.T) {
	a := newLocalIsland(t, nil)
	before := ActiveIslands()

	_, err := New(context.Background(), a.Port(), nil, localOptions()...)
	require.ErrorIs(t, err, ErrSocket)
	assert.Equal(t, before, ActiveIslands())
}

func TestIsland_StartHookFailure(t *testing.T) {
	before := ActiveIslands()
	errHook := errors.New("hook failed")

	_, err := New(context.Background(), 0, nil, localOptions(
		WithFxOption(fx.Invoke(func(lc fx.Lifecycle) {
			lc.Append(fx.Hook{OnStart: func(context.Context) error { return errHook }})
		})),
	)...)
	require.ErrorIs(t, err, errHook)
	assert.NotErrorIs(t, err, ErrSocket)
	assert.Equal(t, before, ActiveIslands())
}

func TestIsland_InvalidConfig(t *testing.T) {
	_, err := New(context.Background(), 70000, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(context.Background(), 0, []string{"missing-port"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(context.Background(), 0, nil, WithMaxMailboxLength(-1))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestIsland_ConfigFile(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Island.MaxMailboxLength = 7
	cfg.Listener.Host = "127.0.0.1"
	data, err := cfg.ToJSON()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "island.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	island, err := New(context.Background(), 0, nil, WithConfigFile(path), WithPollInterval(50*time.Millisecond))
	require.NoError(t, err)
	defer island.Close()

	assert.Equal(t, 7, island.cfg.Island.MaxMailboxLength)
	assert.Equal(t, 50*time.Millisecond, island.cfg.Listener.PollInterval.Duration())
}

func TestIsland_MetricsDisabled(t *testing.T) {
	island := newLocalIsland(t, nil, WithMetrics(false))

	assert.Equal(t, Stats{
		ByTag: map[string]metrics.Stats{},
	}, island.Stats())
}

func TestIsland_Accessors(t *testing.T) {
	island := newLocalIsland(t, nil)

	assert.NotEmpty(t, island.ID())
	assert.NotZero(t, island.Port())
	assert.Empty(t, island.Neighbors())
	assert.Zero(t, island.MailboxLen())
	assert.NotNil(t, island.Metrics())
}

func TestVersionInfo(t *testing.T) {
	assert.Equal(t, "netislands "+Version, VersionInfo())

	GitCommit = "0123456789abcdef"
	defer func() { GitCommit = "" }()
	assert.Equal(t, fmt.Sprintf("netislands %s (01234567)", Version), VersionInfo())
}
