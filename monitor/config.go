package monitor

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-igm401/logger"
)

// DefaultInterval is the polling period of the measurement loop.
const DefaultInterval = time.Second

// Config holds the settings of a Monitor.
type Config struct {
	interval             time.Duration
	iterations           int
	maxConsecutiveErrors int
	switchIonGauge       bool

	logger logger.Logger
}

func newConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		interval:       DefaultInterval,
		switchIonGauge: true,
		logger:         logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Option is a functional option for configuring a Monitor.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithInterval sets the polling period.
func WithInterval(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return errors.New("monitor: interval must be positive")
		}
		cfg.interval = d

		return nil
	})
}

// WithIterations limits the number of poll iterations. 0 polls until the
// context is cancelled.
func WithIterations(n int) Option {
	return optFunc(func(cfg *Config) error {
		if n < 0 {
			return fmt.Errorf("monitor: iterations %d must not be negative", n)
		}
		cfg.iterations = n

		return nil
	})
}

// WithMaxConsecutiveErrors stops the loop after n failed iterations in a
// row. 0 never stops on errors.
func WithMaxConsecutiveErrors(n int) Option {
	return optFunc(func(cfg *Config) error {
		if n < 0 {
			return fmt.Errorf("monitor: max consecutive errors %d must not be negative", n)
		}
		cfg.maxConsecutiveErrors = n

		return nil
	})
}

// WithIonGaugeControl controls whether the monitor switches the ion gauge
// on at startup and off at shutdown. Enabled by default.
func WithIonGaugeControl(enabled bool) Option {
	return optFunc(func(cfg *Config) error {
		cfg.switchIonGauge = enabled

		return nil
	})
}

// WithLogger sets the logger for the monitor.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("monitor: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
