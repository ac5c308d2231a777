package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "netislands"

// Collector 将 Reporter 的快照导出为 Prometheus 指标
type Collector struct {
	reporter Reporter

	bytes    *prometheus.Desc
	messages *prometheus.Desc
	failures *prometheus.Desc
	events   *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector 创建 Collector
func NewCollector(r Reporter) *Collector {
	return &Collector{
		reporter: r,
		bytes: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "bytes_total"),
			"Bytes transferred per message tag and direction.",
			[]string{"tag", "direction"}, nil,
		),
		messages: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "messages_total"),
			"Messages transferred per message tag and direction.",
			[]string{"tag", "direction"}, nil,
		),
		failures: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "send_failures_total"),
			"Failed sends per neighbor.",
			[]string{"neighbor"}, nil,
		),
		events: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "events_total"),
			"Island events by kind.",
			[]string{"kind"}, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.bytes
	ch <- c.messages
	ch <- c.failures
	ch <- c.events
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for tag, s := range c.reporter.ByTag() {
		ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.TotalIn), tag, "in")
		ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.TotalOut), tag, "out")
		ch <- prometheus.MustNewConstMetric(c.messages, prometheus.CounterValue, float64(s.MessagesIn), tag, "in")
		ch <- prometheus.MustNewConstMetric(c.messages, prometheus.CounterValue, float64(s.MessagesOut), tag, "out")
	}
	for neighbor, s := range c.reporter.ByNeighbor() {
		ch <- prometheus.MustNewConstMetric(c.failures, prometheus.CounterValue, float64(s.Failures), neighbor)
	}

	ev := c.reporter.Events()
	for kind, v := range map[string]int64{
		"eviction":     ev.Evictions,
		"mailbox_drop": ev.MailboxDrops,
		"malformed":    ev.Malformed,
		"rate_limited": ev.RateLimited,
		"oversized":    ev.Oversized,
		"read_error":   ev.ReadErrors,
	} {
		ch <- prometheus.MustNewConstMetric(c.events, prometheus.CounterValue, float64(v), kind)
	}
}
