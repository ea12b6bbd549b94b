package transport

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

// newTestTransport creates a Transport backed by the local end of net.Pipe().
// Returns the transport and the remote end for device simulation.
func newTestTransport(t *testing.T, opts ...Option) (*Transport, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	defaults := []Option{WithReadTimeout(MinReadTimeout * 2)}
	cfg, err := NewConfig(append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("newTestTransport: %v", err)
	}

	return New(NewConnPort(local), cfg), remote
}

// readExactly reads exactly n bytes from r, failing the test on error.
func readExactly(t *testing.T, r io.Reader, n int) []byte {
	t.Helper()

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		t.Errorf("readExactly: %v", err)
	}

	return buf
}

// mustWrite writes data to w, failing the test on error.
func mustWrite(t *testing.T, w io.Writer, data []byte) {
	t.Helper()

	if _, err := w.Write(data); err != nil {
		t.Errorf("mustWrite: %v", err)
	}
}

// faultyPort is a Port whose operations fail on demand.
type faultyPort struct {
	writeErr error
	readErr  error
	resetErr error
	written  []byte
	closed   bool
}

var errInjected = errors.New("injected failure")

func (p *faultyPort) Read(_ []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	time.Sleep(time.Millisecond)
	return 0, nil
}

func (p *faultyPort) Write(b []byte) (int, error) {
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *faultyPort) ResetInputBuffer() error { return p.resetErr }

func (p *faultyPort) SetReadTimeout(time.Duration) error { return nil }

func (p *faultyPort) Close() error {
	p.closed = true
	return nil
}
