package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-igm401/logger"
	"go.bug.st/serial"
)

// Serial line defaults of the IGM401 RS485 interface.
const (
	DefaultBaudRate    = 19200
	DefaultReadTimeout = 500 * time.Millisecond
	DefaultDataBits    = 8
)

// Read timeout range limits.
const (
	MinReadTimeout = 50 * time.Millisecond
	MaxReadTimeout = 10 * time.Second
)

// Config holds the serial line configuration of a Transport.
type Config struct {
	baudRate    int
	dataBits    int
	parity      serial.Parity
	stopBits    serial.StopBits
	readTimeout time.Duration

	logger logger.Logger
}

// NewConfig creates a transport configuration with the gauge defaults (19200 8N1,
// 500ms read timeout) and applies opts in order.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		baudRate:    DefaultBaudRate,
		dataBits:    DefaultDataBits,
		parity:      serial.NoParity,
		stopBits:    serial.OneStopBit,
		readTimeout: DefaultReadTimeout,
		logger:      logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// BaudRate returns the configured baud rate.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// DataBits returns the configured number of data bits.
func (cfg *Config) DataBits() int { return cfg.dataBits }

// Parity returns the configured parity mode.
func (cfg *Config) Parity() serial.Parity { return cfg.parity }

// StopBits returns the configured stop bits.
func (cfg *Config) StopBits() serial.StopBits { return cfg.stopBits }

// ReadTimeout returns the default per-operation read timeout.
func (cfg *Config) ReadTimeout() time.Duration { return cfg.readTimeout }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

func (cfg *Config) mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: cfg.baudRate,
		DataBits: cfg.dataBits,
		Parity:   cfg.parity,
		StopBits: cfg.stopBits,
	}
}

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithBaudRate overrides the baud rate. The gauge itself only supports 19200.
func WithBaudRate(baud int) Option {
	return optFunc(func(cfg *Config) error {
		if baud <= 0 {
			return fmt.Errorf("transport: invalid baud rate %d", baud)
		}
		cfg.baudRate = baud

		return nil
	})
}

// WithDataBits sets the number of data bits, 5 to 8.
func WithDataBits(bits int) Option {
	return optFunc(func(cfg *Config) error {
		if bits < 5 || bits > 8 {
			return fmt.Errorf("transport: data bits %d out of range [5, 8]", bits)
		}
		cfg.dataBits = bits

		return nil
	})
}

// WithParity sets the parity mode.
func WithParity(p serial.Parity) Option {
	return optFunc(func(cfg *Config) error {
		cfg.parity = p

		return nil
	})
}

// WithStopBits sets the number of stop bits.
func WithStopBits(s serial.StopBits) Option {
	return optFunc(func(cfg *Config) error {
		cfg.stopBits = s

		return nil
	})
}

// WithReadTimeout sets the default per-operation read timeout.
func WithReadTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinReadTimeout || d > MaxReadTimeout {
			return fmt.Errorf("transport: read timeout %v out of range [%v, %v]", d, MinReadTimeout, MaxReadTimeout)
		}
		cfg.readTimeout = d

		return nil
	})
}

// WithLogger sets the logger for the transport.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("transport: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
