// Package metrics exports gauge and transport counters to Prometheus.
package metrics

import (
	"github.com/arloliu/go-igm401/igm401"
	"github.com/arloliu/go-igm401/transport"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "igm401"

// Collector is a prometheus.Collector reading the atomic counters of a
// Gauge and, optionally, of its Transport at scrape time.
type Collector struct {
	gauge     *igm401.ExchangeMetrics
	transport *transport.Metrics
	version   igm401.Version

	info         *prometheus.Desc
	exchanges    *prometheus.Desc
	decoded      *prometheus.Desc
	rejected     *prometheus.Desc
	pressure     *prometheus.Desc
	bytesSent    *prometheus.Desc
	bytesRecv    *prometheus.Desc
	readTimeouts *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for g. tm may be nil when the gauge does
// not run over a *transport.Transport. An empty namespace uses DefaultNamespace.
func NewCollector(namespace string, g *igm401.Gauge, tm *transport.Metrics) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	name := func(n string) string { return prometheus.BuildFQName(namespace, "", n) }

	return &Collector{
		gauge:     g.Metrics(),
		transport: tm,
		version:   g.Version(),

		info: prometheus.NewDesc(name("info"),
			"Firmware identification of the gauge module.",
			[]string{"part_number", "revision"}, nil),
		exchanges: prometheus.NewDesc(name("exchanges_total"),
			"Commands sent to the gauge, by opcode.",
			[]string{"opcode"}, nil),
		decoded: prometheus.NewDesc(name("exchanges_decoded_total"),
			"Exchanges that produced a value or an acknowledgement.",
			nil, nil),
		rejected: prometheus.NewDesc(name("exchanges_rejected_total"),
			"Failed exchanges, by cause.",
			[]string{"kind"}, nil),
		pressure: prometheus.NewDesc(name("pressure"),
			"Last pressure read from the gauge, in gauge units.",
			nil, nil),
		bytesSent: prometheus.NewDesc(name("transport_sent_bytes_total"),
			"Bytes written to the serial port.",
			nil, nil),
		bytesRecv: prometheus.NewDesc(name("transport_received_bytes_total"),
			"Bytes read from the serial port.",
			nil, nil),
		readTimeouts: prometheus.NewDesc(name("transport_read_timeouts_total"),
			"Reads that timed out without data.",
			nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.info
	ch <- c.exchanges
	ch <- c.decoded
	ch <- c.rejected
	ch <- c.pressure
	if c.transport != nil {
		ch <- c.bytesSent
		ch <- c.bytesRecv
		ch <- c.readTimeouts
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.info, prometheus.GaugeValue, 1,
		c.version.PartNumber, c.version.Revision)

	for op, n := range c.gauge.OpcodeCounts() {
		ch <- prometheus.MustNewConstMetric(c.exchanges, prometheus.CounterValue, float64(n), string(op))
	}

	ch <- prometheus.MustNewConstMetric(c.decoded, prometheus.CounterValue,
		float64(c.gauge.DecodedCount.Load()))

	for kind, n := range map[string]uint64{
		"timeout":    c.gauge.TimeoutCount.Load(),
		"malformed":  c.gauge.MalformedCount.Load(),
		"device":     c.gauge.DeviceErrCount.Load(),
		"unexpected": c.gauge.UnexpectedCount.Load(),
		"io":         c.gauge.IOErrCount.Load(),
	} {
		ch <- prometheus.MustNewConstMetric(c.rejected, prometheus.CounterValue, float64(n), kind)
	}

	if p, ok := c.gauge.LastPressure(); ok {
		ch <- prometheus.MustNewConstMetric(c.pressure, prometheus.GaugeValue, p)
	}

	if c.transport == nil {
		return
	}

	ch <- prometheus.MustNewConstMetric(c.bytesSent, prometheus.CounterValue,
		float64(c.transport.BytesSent.Load()))
	ch <- prometheus.MustNewConstMetric(c.bytesRecv, prometheus.CounterValue,
		float64(c.transport.BytesRecv.Load()))
	ch <- prometheus.MustNewConstMetric(c.readTimeouts, prometheus.CounterValue,
		float64(c.transport.TimeoutCount.Load()))
}
