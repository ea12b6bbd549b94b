package igm401

import (
	"math"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
)

// ExchangeMetrics contains atomic counters of a Gauge.
// They may be read concurrently with gauge operations, e.g. by a
// prometheus collector.
type ExchangeMetrics struct {
	// ExchangeCount is the number of commands sent.
	ExchangeCount atomic.Uint64
	// DecodedCount is the number of exchanges that produced a value or an acknowledgement.
	DecodedCount atomic.Uint64
	// RejectedCount is the number of failed exchanges.
	RejectedCount atomic.Uint64

	// Failed exchanges by cause.
	TimeoutCount    atomic.Uint64
	MalformedCount  atomic.Uint64
	DeviceErrCount  atomic.Uint64
	UnexpectedCount atomic.Uint64
	IOErrCount      atomic.Uint64

	lastPressure  atomic.Uint64 // math.Float64bits
	pressureValid atomic.Bool

	byOpcode *xsync.MapOf[Opcode, *atomic.Uint64]
}

func newExchangeMetrics() *ExchangeMetrics {
	return &ExchangeMetrics{
		byOpcode: xsync.NewMapOf[Opcode, *atomic.Uint64](),
	}
}

// OpcodeCounts returns the number of commands sent per opcode.
func (m *ExchangeMetrics) OpcodeCounts() map[Opcode]uint64 {
	counts := make(map[Opcode]uint64, m.byOpcode.Size())
	m.byOpcode.Range(func(op Opcode, c *atomic.Uint64) bool {
		counts[op] = c.Load()
		return true
	})

	return counts
}

// LastPressure returns the last successfully decoded pressure, and false if
// no pressure was read yet.
func (m *ExchangeMetrics) LastPressure() (float64, bool) {
	if !m.pressureValid.Load() {
		return 0, false
	}

	return math.Float64frombits(m.lastPressure.Load()), true
}

func (m *ExchangeMetrics) incExchange(op Opcode) {
	m.ExchangeCount.Add(1)
	c, _ := m.byOpcode.LoadOrCompute(op, func() *atomic.Uint64 {
		return &atomic.Uint64{}
	})
	c.Add(1)
}

func (m *ExchangeMetrics) incDecoded() {
	m.DecodedCount.Add(1)
}

func (m *ExchangeMetrics) incRejected(kind string) {
	m.RejectedCount.Add(1)

	switch kind {
	case "timeout":
		m.TimeoutCount.Add(1)
	case "malformed":
		m.MalformedCount.Add(1)
	case "device":
		m.DeviceErrCount.Add(1)
	case "unexpected":
		m.UnexpectedCount.Add(1)
	default:
		m.IOErrCount.Add(1)
	}
}

func (m *ExchangeMetrics) setPressure(v float64) {
	m.lastPressure.Store(math.Float64bits(v))
	m.pressureValid.Store(true)
}
