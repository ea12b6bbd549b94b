// Package monitor runs a measurement loop against an IGM401 gauge.
//
// A Monitor reproduces the host-side procedure that drives the gauge from a
// polling loop: on startup it logs the firmware version and the cause of the
// last shutdown and switches the ion gauge on; every interval it reads the
// pressure, emission current and degas state and hands a Reading to the
// registered handlers; on stop it switches the ion gauge off.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-igm401/igm401"
	"github.com/arloliu/go-igm401/logger"
)

// ErrTooManyErrors is returned by Run when the configured number of
// consecutive failed iterations is reached.
var ErrTooManyErrors = errors.New("monitor: too many consecutive poll errors")

// Gauge is the subset of *igm401.Gauge used by the monitor.
type Gauge interface {
	Version() igm401.Version
	ModuleStatus() (igm401.ShutdownStatus, error)
	IonGaugeOn() error
	IonGaugeOff() error
	ReadPressure() (float64, error)
	EmissionCurrentStatus() (igm401.EmissionCurrent, error)
	DegasStatus() (igm401.SwitchState, error)
}

var _ Gauge = (*igm401.Gauge)(nil)

// Reading is the result of one poll iteration.
type Reading struct {
	Iteration int
	At        time.Time
	Pressure  float64
	Emission  igm401.EmissionCurrent
	Degas     igm401.SwitchState
	// Err is the first error of the iteration; the other fields are only
	// valid when Err is nil.
	Err error
}

// ReadingHandler receives every Reading, including failed ones.
type ReadingHandler func(Reading)

// Monitor polls a gauge. It owns the gauge for the duration of Run.
type Monitor struct {
	gauge    Gauge
	cfg      *Config
	logger   logger.Logger
	handlers []ReadingHandler
}

// New creates a Monitor for g.
func New(g Gauge, opts ...Option) (*Monitor, error) {
	if g == nil {
		return nil, errors.New("monitor: gauge is nil")
	}

	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Monitor{
		gauge:  g,
		cfg:    cfg,
		logger: cfg.logger,
	}, nil
}

// AddReadingHandler registers h. Handlers are called synchronously from the
// polling loop, in registration order. Add handlers before calling Run.
func (m *Monitor) AddReadingHandler(h ReadingHandler) {
	if h != nil {
		m.handlers = append(m.handlers, h)
	}
}

// Run performs the startup sequence and polls until ctx is done, the
// configured iteration count is reached, or too many consecutive iterations
// fail. The ion gauge is switched off before Run returns whenever startup
// switched it on.
//
// A cancelled ctx is a normal stop and returns nil.
func (m *Monitor) Run(ctx context.Context) (err error) {
	if err := m.startup(); err != nil {
		return err
	}
	defer func() {
		if offErr := m.shutdown(); offErr != nil && err == nil {
			err = offErr
		}
	}()

	m.logger.Info("monitor: starting loop", "iterations", m.cfg.iterations, "interval", m.cfg.interval)

	ticker := time.NewTicker(m.cfg.interval)
	defer ticker.Stop()

	consecutive := 0
	for i := 0; m.cfg.iterations == 0 || i < m.cfg.iterations; i++ {
		r := m.Poll(i)
		m.emit(r)

		if r.Err != nil {
			consecutive++
			m.logger.Warn("monitor: poll failed", "iteration", i, "consecutive", consecutive, "error", r.Err)

			if m.cfg.maxConsecutiveErrors > 0 && consecutive >= m.cfg.maxConsecutiveErrors {
				return fmt.Errorf("%w: %d in a row, last: %w", ErrTooManyErrors, consecutive, r.Err)
			}
		} else {
			consecutive = 0
		}

		if m.cfg.iterations != 0 && i+1 == m.cfg.iterations {
			break
		}

		// a pending tick must not win over cancellation
		if ctx.Err() != nil {
			m.logger.Warn("monitor: stop requested", "iteration", i)
			return nil
		}

		select {
		case <-ctx.Done():
			m.logger.Warn("monitor: stop requested", "iteration", i)
			return nil
		case <-ticker.C:
		}
	}

	m.logger.Info("monitor: finished measuring")

	return nil
}

// Poll performs one iteration: pressure, emission current and degas state.
// It stops at the first failing exchange.
func (m *Monitor) Poll(iteration int) Reading {
	r := Reading{Iteration: iteration, At: time.Now()}

	if r.Pressure, r.Err = m.gauge.ReadPressure(); r.Err != nil {
		return r
	}
	if r.Emission, r.Err = m.gauge.EmissionCurrentStatus(); r.Err != nil {
		return r
	}
	r.Degas, r.Err = m.gauge.DegasStatus()

	return r
}

func (m *Monitor) startup() error {
	v := m.gauge.Version()
	m.logger.Info("monitor: gauge connected", "partNumber", v.PartNumber, "revision", v.Revision)

	st, err := m.gauge.ModuleStatus()
	if err != nil {
		return fmt.Errorf("monitor: read shutdown status: %w", err)
	}
	m.logger.Info("monitor: last shutdown reason", "status", st)

	if !m.cfg.switchIonGauge {
		return nil
	}

	if err := m.gauge.IonGaugeOn(); err != nil {
		return fmt.Errorf("monitor: switch ion gauge on: %w", err)
	}

	return nil
}

func (m *Monitor) shutdown() error {
	if !m.cfg.switchIonGauge {
		return nil
	}

	if err := m.gauge.IonGaugeOff(); err != nil {
		m.logger.Error("monitor: switch ion gauge off failed", "error", err)
		return fmt.Errorf("monitor: switch ion gauge off: %w", err)
	}
	m.logger.Info("monitor: ion gauge off")

	return nil
}

func (m *Monitor) emit(r Reading) {
	if r.Err == nil {
		m.logger.Debug("monitor: reading",
			"iteration", r.Iteration,
			"pressure", r.Pressure,
			"emission", r.Emission,
			"degas", r.Degas,
		)
	}

	for _, h := range m.handlers {
		h(r)
	}
}
