package transport

import "sync/atomic"

// Metrics contains atomic counters of a Transport.
// They can be used as the value of a prometheus CounterFunc.
type Metrics struct {
	// BytesSent is the number of bytes written to the port.
	BytesSent atomic.Uint64
	// BytesRecv is the number of bytes read from the port.
	BytesRecv atomic.Uint64
	// SendCount is the number of successful Send calls.
	SendCount atomic.Uint64
	// RecvCount is the number of Receive calls that returned data.
	RecvCount atomic.Uint64
	// TimeoutCount is the number of Receive calls that timed out without data.
	TimeoutCount atomic.Uint64
	// IOErrCount is the number of read or write failures.
	IOErrCount atomic.Uint64
}

func (m *Metrics) addSent(n int) {
	m.BytesSent.Add(uint64(n))
	m.SendCount.Add(1)
}

func (m *Metrics) addRecv(n int) {
	m.BytesRecv.Add(uint64(n))
	m.RecvCount.Add(1)
}

func (m *Metrics) incTimeout() {
	m.TimeoutCount.Add(1)
}

func (m *Metrics) incIOErr() {
	m.IOErrCount.Add(1)
}
