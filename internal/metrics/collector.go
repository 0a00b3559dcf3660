package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/webbmaffian/go-fifo/channel"
)

// StatsSource is anything that can snapshot channel statistics.
type StatsSource interface {
	Stats() channel.Stats
}

var _ prometheus.Collector = (*Collector)(nil)

// Collector exports channel statistics as Prometheus metrics. Values are
// read at scrape time, so the channels themselves stay metric-agnostic.
type Collector struct {
	sources []StatsSource

	capacity *prometheus.Desc
	stored   *prometheus.Desc
	state    *prometheus.Desc
	handles  *prometheus.Desc
	waiting  *prometheus.Desc
	bytes    *prometheus.Desc
	calls    *prometheus.Desc
}

// NewCollector creates a collector over the given channels.
func NewCollector(sources ...StatsSource) *Collector {
	return &Collector{
		sources: sources,
		capacity: prometheus.NewDesc(
			"fifo_channel_capacity_bytes",
			"Maximum number of bytes the channel can buffer",
			[]string{"channel"}, nil,
		),
		stored: prometheus.NewDesc(
			"fifo_channel_stored_bytes",
			"Number of bytes currently buffered",
			[]string{"channel"}, nil,
		),
		state: prometheus.NewDesc(
			"fifo_channel_state",
			"Channel state (1 ready, 2 draining, 3 destroyed)",
			[]string{"channel"}, nil,
		),
		handles: prometheus.NewDesc(
			"fifo_channel_open_handles",
			"Number of open handles per role",
			[]string{"channel", "role"}, nil,
		),
		waiting: prometheus.NewDesc(
			"fifo_channel_waiting",
			"Number of callers parked per role",
			[]string{"channel", "role"}, nil,
		),
		bytes: prometheus.NewDesc(
			"fifo_channel_bytes_total",
			"Total bytes transferred",
			[]string{"channel", "direction"}, nil,
		),
		calls: prometheus.NewDesc(
			"fifo_channel_transfers_total",
			"Total successful read and write calls",
			[]string{"channel", "direction"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.stored
	ch <- c.state
	ch <- c.handles
	ch <- c.waiting
	ch <- c.bytes
	ch <- c.calls
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, src := range c.sources {
		st := src.Stats()
		name := st.Name

		ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(st.Capacity), name)
		ch <- prometheus.MustNewConstMetric(c.stored, prometheus.GaugeValue, float64(st.Stored), name)
		ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, float64(st.State), name)

		ch <- prometheus.MustNewConstMetric(c.handles, prometheus.GaugeValue, float64(st.Producers), name, channel.Producer.String())
		ch <- prometheus.MustNewConstMetric(c.handles, prometheus.GaugeValue, float64(st.Consumers), name, channel.Consumer.String())
		ch <- prometheus.MustNewConstMetric(c.waiting, prometheus.GaugeValue, float64(st.ProducersWaiting), name, channel.Producer.String())
		ch <- prometheus.MustNewConstMetric(c.waiting, prometheus.GaugeValue, float64(st.ConsumersWaiting), name, channel.Consumer.String())

		ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(st.BytesWritten), name, "written")
		ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(st.BytesRead), name, "read")
		ch <- prometheus.MustNewConstMetric(c.calls, prometheus.CounterValue, float64(st.Writes), name, "written")
		ch <- prometheus.MustNewConstMetric(c.calls, prometheus.CounterValue, float64(st.Reads), name, "read")
	}
}
