package transport

import (
	"net"
	"time"
)

// drainTimeout bounds how long ResetInputBuffer waits for stale bytes on a
// stream connection.
const drainTimeout = 5 * time.Millisecond

// connPort adapts a stream connection (a TCP serial server, a pipe to a
// simulator) to the Port interface with serial read-timeout semantics.
type connPort struct {
	conn    net.Conn
	timeout time.Duration
}

// NewConnPort returns a Port backed by conn. Reads that hit the read timeout
// return 0 bytes and a nil error, like a serial port.
func NewConnPort(conn net.Conn) Port {
	return &connPort{conn: conn, timeout: DefaultReadTimeout}
}

func (p *connPort) Read(b []byte) (int, error) {
	if err := p.conn.SetReadDeadline(time.Now().Add(p.timeout)); err != nil {
		return 0, err
	}

	n, err := p.conn.Read(b)
	if err != nil && isTimeout(err) {
		return n, nil
	}

	return n, err
}

func (p *connPort) Write(b []byte) (int, error) {
	return p.conn.Write(b)
}

// ResetInputBuffer reads and discards bytes until the line is silent.
func (p *connPort) ResetInputBuffer() error {
	buf := make([]byte, 64)
	for {
		if err := p.conn.SetReadDeadline(time.Now().Add(drainTimeout)); err != nil {
			return err
		}

		n, err := p.conn.Read(buf)
		if err != nil {
			if isTimeout(err) {
				return nil
			}

			return err
		}
		if n == 0 {
			return nil
		}
	}
}

func (p *connPort) SetReadTimeout(d time.Duration) error {
	p.timeout = d
	return nil
}

func (p *connPort) Close() error {
	return p.conn.Close()
}
