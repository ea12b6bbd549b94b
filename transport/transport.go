package transport

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/arloliu/go-igm401/logger"
	"go.bug.st/serial"
)

// Sentinel errors of the transport layer.
var (
	ErrConnection = errors.New("transport: cannot open port")
	ErrTimeout    = errors.New("transport: read timeout")
	ErrIO         = errors.New("transport: i/o failure")
	ErrClosed     = errors.New("transport: port closed")
)

// Port is the subset of go.bug.st/serial.Port used by Transport.
//
// A Read that times out returns 0 bytes and a nil error, which is the
// behaviour of serial.Port after SetReadTimeout.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	ResetInputBuffer() error
	SetReadTimeout(d time.Duration) error
	Close() error
}

var _ Port = (serial.Port)(nil)

// Transport owns a serial connection to one gauge module.
type Transport struct {
	name    string
	port    Port
	cfg     *Config
	logger  logger.Logger
	closed  bool
	metrics Metrics
}

// Open opens the named serial device with cfg. A nil cfg uses the defaults
// returned by NewConfig.
//
// Returns an error wrapping ErrConnection if the port cannot be opened or
// configured.
func Open(portName string, cfg *Config) (*Transport, error) {
	if cfg == nil {
		var err error
		if cfg, err = NewConfig(); err != nil {
			return nil, err
		}
	}

	p, err := serial.Open(portName, cfg.mode())
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrConnection, portName, err)
	}

	if err := p.SetReadTimeout(cfg.readTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("%w %s: set read timeout: %w", ErrConnection, portName, err)
	}

	t := newTransport(portName, p, cfg)
	t.logger.Info("transport: port opened", "baudRate", cfg.baudRate, "readTimeout", cfg.readTimeout)

	return t, nil
}

// New wraps an already opened port. A nil cfg uses the defaults returned by NewConfig.
func New(port Port, cfg *Config) *Transport {
	if cfg == nil {
		cfg, _ = NewConfig()
	}

	return newTransport("", port, cfg)
}

func newTransport(name string, port Port, cfg *Config) *Transport {
	l := cfg.logger
	if name != "" {
		l = l.With("port", name)
	}

	return &Transport{
		name:   name,
		port:   port,
		cfg:    cfg,
		logger: l,
	}
}

// Name returns the port name given to Open, or "" for wrapped ports.
func (t *Transport) Name() string { return t.name }

// Config returns the transport configuration.
func (t *Transport) Config() *Config { return t.cfg }

// Metrics returns the transport counters.
func (t *Transport) Metrics() *Metrics { return &t.metrics }

// Send writes data to the port.
//
// Unread input is discarded first, so that a late reply belonging to an
// earlier, timed-out exchange cannot be taken as the reply to this one.
func (t *Transport) Send(data []byte) error {
	if t.closed {
		return ErrClosed
	}

	if err := t.port.ResetInputBuffer(); err != nil {
		t.metrics.incIOErr()
		return fmt.Errorf("%w: reset input buffer: %w", ErrIO, err)
	}

	for written := 0; written < len(data); {
		n, err := t.port.Write(data[written:])
		written += n

		if err != nil {
			t.metrics.incIOErr()
			return fmt.Errorf("%w: write: %w", ErrIO, err)
		}
	}

	t.metrics.addSent(len(data))
	t.logger.Debug("transport: sent", "data", fmt.Sprintf("%q", data))

	return nil
}

// Receive blocks until n bytes were read, the delim byte was read, or timeout
// elapsed, whichever comes first. A timeout <= 0 uses the configured read timeout.
//
// If no byte arrives before the timeout, Receive returns ErrTimeout. If some
// bytes arrived, they are returned without error even when fewer than n; the
// caller validates the frame.
func (t *Transport) Receive(n int, delim byte, timeout time.Duration) ([]byte, error) {
	if t.closed {
		return nil, ErrClosed
	}
	if n <= 0 {
		return nil, fmt.Errorf("transport: invalid receive length %d", n)
	}
	if timeout <= 0 {
		timeout = t.cfg.readTimeout
	}

	deadline := time.Now().Add(timeout)
	buf := make([]byte, 0, n)
	chunk := make([]byte, n)

	for len(buf) < n {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}

		if err := t.port.SetReadTimeout(remaining); err != nil {
			t.metrics.incIOErr()
			return nil, fmt.Errorf("%w: set read timeout: %w", ErrIO, err)
		}

		k, err := t.port.Read(chunk[:n-len(buf)])
		if k > 0 {
			start := len(buf)
			buf = append(buf, chunk[:k]...)
			if idx := bytes.IndexByte(buf[start:], delim); idx >= 0 {
				buf = buf[:start+idx+1]
				break
			}
		}

		if err != nil && !isTimeout(err) {
			t.metrics.incIOErr()
			return nil, fmt.Errorf("%w: read: %w", ErrIO, err)
		}
	}

	if len(buf) == 0 {
		t.metrics.incTimeout()
		return nil, fmt.Errorf("%w after %v", ErrTimeout, timeout)
	}

	t.metrics.addRecv(len(buf))
	t.logger.Debug("transport: received", "data", fmt.Sprintf("%q", buf))

	return buf, nil
}

// Close closes the underlying port. Close is idempotent.
func (t *Transport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	if err := t.port.Close(); err != nil {
		return fmt.Errorf("%w: close: %w", ErrIO, err)
	}

	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
