package igm401

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-igm401/logger"
)

// Gauge drives one IGM401 module over an Exchanger.
//
// Every method performs a single blocking exchange: one command write and,
// except for Reset, one bounded read. Gauge is NOT goroutine-safe.
type Gauge struct {
	tr      Exchanger
	cfg     *Config
	logger  logger.Logger
	version Version
	metrics *ExchangeMetrics
}

// New creates a Gauge over tr and performs the version handshake.
//
// The firmware version is queried immediately and cached for the lifetime of
// the Gauge. If the handshake fails, New returns the wrapped cause and no
// Gauge.
func New(tr Exchanger, opts ...Option) (*Gauge, error) {
	if tr == nil {
		return nil, errors.New("igm401: exchanger is nil")
	}

	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	g := &Gauge{
		tr:      tr,
		cfg:     cfg,
		logger:  cfg.logger.With("address", cfg.address),
		metrics: newExchangeMetrics(),
	}

	v, err := g.ModuleVersion()
	if err != nil {
		return nil, fmt.Errorf("igm401: version handshake failed: %w", err)
	}
	g.version = v

	g.logger.Info("igm401: gauge ready", "partNumber", v.PartNumber, "revision", v.Revision)

	return g, nil
}

// Config returns the gauge configuration.
func (g *Gauge) Config() *Config { return g.cfg }

// Metrics returns the exchange counters of the gauge.
func (g *Gauge) Metrics() *ExchangeMetrics { return g.metrics }

// Version returns the firmware version captured by New.
func (g *Gauge) Version() Version { return g.version }

// HardwareVersion returns the firmware part number captured by New.
func (g *Gauge) HardwareVersion() string { return g.version.PartNumber }

// SoftwareVersion returns the firmware revision captured by New.
func (g *Gauge) SoftwareVersion() string { return g.version.Revision }

// ModuleStatus reads the cause of the last controller shutdown.
func (g *Gauge) ModuleStatus() (ShutdownStatus, error) {
	return query(g, OpModuleStatus, ParseStatus)
}

// ModuleVersion reads the part number and revision of the firmware.
// Unlike Version it always queries the device.
func (g *Gauge) ModuleVersion() (Version, error) {
	return query(g, OpModuleVersion, ParseVersion)
}

// ReadPressure reads the measured pressure.
func (g *Gauge) ReadPressure() (float64, error) {
	p, err := query(g, OpReadPressure, ParsePressure)
	if err != nil {
		return 0, err
	}
	g.metrics.setPressure(p)

	return p, nil
}

// IonGaugeStatus reports whether the filament is powered and the gauge is reading.
func (g *Gauge) IonGaugeStatus() (SwitchState, error) {
	return query(g, OpIonGaugeStatus, func(payload string) (SwitchState, error) {
		return ParseSwitchState(payload, ionGaugeTag)
	})
}

// IonGaugeOn turns the ion gauge on. It also switches a module in DIGI
// control mode to RS485 mode.
func (g *Gauge) IonGaugeOn() error {
	return g.command(OpIonGaugeOn)
}

// IonGaugeOff turns the ion gauge off.
func (g *Gauge) IonGaugeOff() error {
	return g.command(OpIonGaugeOff)
}

// SetIonGauge turns the ion gauge on or off.
func (g *Gauge) SetIonGauge(on bool) error {
	if on {
		return g.IonGaugeOn()
	}

	return g.IonGaugeOff()
}

// DegasStatus reports whether the module is degassing.
func (g *Gauge) DegasStatus() (SwitchState, error) {
	return query(g, OpDegasStatus, func(payload string) (SwitchState, error) {
		return ParseSwitchState(payload, degasTag)
	})
}

func (g *Gauge) DegasStart() error {
	return g.command(OpDegasOn)
}

func (g *Gauge) DegasOff() error {
	return g.command(OpDegasOff)
}

// SetDegas starts or stops degassing.
func (g *Gauge) SetDegas(on bool) error {
	if on {
		return g.DegasStart()
	}

	return g.DegasOff()
}

// EmissionCurrentStatus reads the emission current setting.
func (g *Gauge) EmissionCurrentStatus() (EmissionCurrent, error) {
	return query(g, OpEmissionStatus, ParseEmission)
}

func (g *Gauge) EmissionCurrent4mA() error {
	return g.command(OpEmission4mA)
}

func (g *Gauge) EmissionCurrent100uA() error {
	return g.command(OpEmission100uA)
}

// SetEmissionCurrent selects the emission current setting.
func (g *Gauge) SetEmissionCurrent(e EmissionCurrent) error {
	switch e {
	case Emission4mA:
		return g.EmissionCurrent4mA()
	case Emission100uA:
		return g.EmissionCurrent100uA()
	default:
		return fmt.Errorf("igm401: unknown emission current %v", e)
	}
}

// FilamentOne selects filament 1.
func (g *Gauge) FilamentOne() error {
	return g.command(OpFilamentOne)
}

// FilamentTwo selects filament 2.
func (g *Gauge) FilamentTwo() error {
	return g.command(OpFilamentTwo)
}

// SelectFilament selects filament 1 or 2.
func (g *Gauge) SelectFilament(n int) error {
	switch n {
	case 1:
		return g.FilamentOne()
	case 2:
		return g.FilamentTwo()
	default:
		return fmt.Errorf("igm401: filament %d does not exist", n)
	}
}

// Defaults returns all settings to their factory values.
func (g *Gauge) Defaults() error {
	return g.command(OpFactoryDefaults)
}

// Reset resets the module as if power was cycled. Some settings only take
// effect after a reset. The module does not reply, so only the write is
// performed; the reset also returns the module to DIGI control.
func (g *Gauge) Reset() error {
	g.metrics.incExchange(OpReset)

	if err := g.tr.Send(EncodeCommand(g.cfg.address, OpReset)); err != nil {
		return g.reject(OpReset, StateIdle, err)
	}

	g.metrics.incDecoded()
	g.logger.Debug("igm401: reset sent", "opcode", OpReset, "state", StateCommandSent)

	return nil
}
