package igm401

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-igm401/logger"
)

// DefaultResponseTimeout bounds the wait for a reply.
const DefaultResponseTimeout = 500 * time.Millisecond

// Config holds the settings of a Gauge.
type Config struct {
	address         string
	strictAddress   bool
	responseTimeout time.Duration

	logger logger.Logger
}

func newConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		address:         DefaultAddress,
		strictAddress:   true,
		responseTimeout: DefaultResponseTimeout,
		logger:          logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Address returns the module address used in every command.
func (cfg *Config) Address() string { return cfg.address }

// StrictAddress reports whether replies from another address are rejected.
func (cfg *Config) StrictAddress() bool { return cfg.strictAddress }

// ResponseTimeout returns the per-call reply timeout.
func (cfg *Config) ResponseTimeout() time.Duration { return cfg.responseTimeout }

// Option is a functional option for configuring a Gauge.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithAddress sets the two digit module address. Defaults to "01".
func WithAddress(addr string) Option {
	return optFunc(func(cfg *Config) error {
		if len(addr) != 2 || !isDigits(addr) {
			return fmt.Errorf("igm401: address %q is not two digits", addr)
		}
		cfg.address = addr

		return nil
	})
}

// WithStrictAddress controls whether a reply carrying another address is
// rejected with ErrMalformedResponse. Enabled by default.
func WithStrictAddress(strict bool) Option {
	return optFunc(func(cfg *Config) error {
		cfg.strictAddress = strict

		return nil
	})
}

// WithResponseTimeout sets the per-call reply timeout.
func WithResponseTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("igm401: response timeout must be positive")
		}
		cfg.responseTimeout = d

		return nil
	})
}

// WithLogger sets the logger for the gauge.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("igm401: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
