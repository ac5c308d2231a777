package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Collect(t *testing.T) {
	c := NewCounter()
	c.LogSent("data---", "127.0.0.1:5001", 40)
	c.LogSendFailure("data---", "127.0.0.1:5002")
	c.LogMalformed()

	col := NewCollector(c)

	// 1 个标签 × 4 + 2 个邻居 × 1 + 6 种事件
	assert.Equal(t, 12, testutil.CollectAndCount(col))

	expected := `
# HELP netislands_events_total Island events by kind.
# TYPE netislands_events_total counter
netislands_events_total{kind="eviction"} 0
netislands_events_total{kind="mailbox_drop"} 0
netislands_events_total{kind="malformed"} 1
netislands_events_total{kind="oversized"} 0
netislands_events_total{kind="rate_limited"} 0
netislands_events_total{kind="read_error"} 0
`
	require.NoError(t, testutil.CollectAndCompare(col, strings.NewReader(expected), "netislands_events_total"))
}

func TestCollector_Register(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewCollector(NewCounter())))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "netislands_events_total")
}
