// Package simulator implements the module side of the IGM401 RS485 protocol.
//
// It answers '#'-framed commands with 13 character replies the way the
// gauge does, keeps the switchable state (ion gauge, degas, emission,
// filament) and supports fault injection. It backs the driver tests and the
// program's simulate mode.
package simulator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"

	"github.com/arloliu/go-igm401/logger"
)

const (
	replyLen     = 13
	payloadWidth = 8

	ackPayload   = "PROGM OK"
	errorPayload = "SYNTX ER"

	// offScalePressure is reported while the ion gauge is off.
	offScalePressure = "9.90E+09"
)

// Device is a simulated IGM401 module. It is safe for concurrent use.
type Device struct {
	mu sync.Mutex

	address    string
	partNumber string
	revision   string

	pressure    float64
	status      string
	ionGauge    bool
	degas       bool
	emission4mA bool
	filament    int

	silent     bool
	errorReply bool
	nextRaw    []byte

	received []string
	logger   logger.Logger
}

// Option configures a Device.
type Option func(*Device)

// WithAddress sets the module address. Defaults to "01".
func WithAddress(addr string) Option {
	return func(d *Device) { d.address = addr }
}

// WithVersion sets the firmware part number and revision.
func WithVersion(part, rev string) Option {
	return func(d *Device) {
		d.partNumber = part
		d.revision = rev
	}
}

// WithPressure sets the pressure reported while the ion gauge is on.
func WithPressure(p float64) Option {
	return func(d *Device) { d.pressure = p }
}

// WithLogger sets the logger of the simulator.
func WithLogger(l logger.Logger) Option {
	return func(d *Device) { d.logger = l }
}

// NewDevice creates a simulated module with factory settings.
func NewDevice(opts ...Option) *Device {
	d := &Device{
		address:    "01",
		partNumber: "1104",
		revision:   "07",
		pressure:   5.23e-7,
		logger:     logger.GetLogger(),
	}
	d.factoryDefaults()

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Device) factoryDefaults() {
	d.status = "ST OK"
	d.ionGauge = false
	d.degas = false
	d.emission4mA = false
	d.filament = 1
}

// SetPressure changes the pressure reported while the ion gauge is on.
func (d *Device) SetPressure(p float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pressure = p
}

// SetStatus sets the raw shutdown status token returned by RS.
func (d *Device) SetStatus(token string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = token
}

// SetSilent makes the device ignore all commands, as in DIGI mode.
func (d *Device) SetSilent(silent bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.silent = silent
}

// SetErrorReply makes the device answer every command with a '?' reply.
func (d *Device) SetErrorReply(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errorReply = on
}

// SetNextRaw overrides the next reply with raw bytes.
func (d *Device) SetNextRaw(raw []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextRaw = append([]byte(nil), raw...)
}

// IonGauge reports whether the ion gauge is on.
func (d *Device) IonGauge() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ionGauge
}

// Degas reports whether degas is running.
func (d *Device) Degas() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.degas
}

// Emission4mA reports whether the 4 mA emission setting is selected.
func (d *Device) Emission4mA() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.emission4mA
}

// Filament returns the selected filament.
func (d *Device) Filament() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.filament
}

// Received returns the command frames received so far, without CR.
func (d *Device) Received() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.received...)
}

// Serve answers commands read from rw until ctx is done or rw fails.
// A closed connection ends Serve without error.
func (d *Device) Serve(ctx context.Context, rw io.ReadWriter) error {
	r := bufio.NewReader(rw)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frame, err := r.ReadString('\r')
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
				return nil
			}

			return fmt.Errorf("simulator: read: %w", err)
		}

		reply := d.Handle(frame)
		if reply == nil {
			continue
		}

		if _, err := rw.Write(reply); err != nil {
			if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, net.ErrClosed) {
				return nil
			}

			return fmt.Errorf("simulator: write: %w", err)
		}
	}
}

// Handle processes one command frame, CR included, and returns the reply
// bytes, or nil when the module would stay silent.
func (d *Device) Handle(frame string) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(frame) < 5 || frame[0] != '#' || frame[len(frame)-1] != '\r' {
		d.logger.Debug("simulator: ignoring garbage", "frame", frame)
		return nil
	}

	addr := frame[1:3]
	op := frame[3 : len(frame)-1]
	d.received = append(d.received, frame[:len(frame)-1])

	if addr != d.address || d.silent {
		return nil
	}

	if d.nextRaw != nil {
		raw := d.nextRaw
		d.nextRaw = nil

		return raw
	}

	if d.errorReply {
		return d.reply('?', errorPayload)
	}

	payload, ok := d.execute(op)
	if !ok {
		return d.reply('?', errorPayload)
	}
	if payload == "" {
		return nil
	}

	return d.reply('*', payload)
}

// execute applies op and returns the reply payload. An empty payload means
// no reply; ok is false for commands the module rejects.
func (d *Device) execute(op string) (payload string, ok bool) {
	switch op {
	case "RS":
		return d.status, true
	case "VER":
		return d.partNumber + "-" + d.revision, true
	case "RD":
		if !d.ionGauge {
			return offScalePressure, true
		}
		return strconv.FormatFloat(d.pressure, 'E', 2, 64), true
	case "RST":
		d.ionGauge = false
		d.degas = false
		return "", true
	case "FAC":
		d.factoryDefaults()
	case "IGS":
		return switchPayload(d.ionGauge, "IG"), true
	case "IG1":
		d.ionGauge = true
	case "IG0":
		d.ionGauge = false
		d.degas = false
	case "SES":
		if d.emission4mA {
			return "4.0MA EM", true
		}
		return "0.1MA EM", true
	case "SE1":
		d.emission4mA = true
	case "SE0":
		d.emission4mA = false
	case "DGS":
		return switchPayload(d.degas, "DG"), true
	case "DG1":
		if !d.ionGauge {
			return "", false
		}
		d.degas = true
	case "DG0":
		d.degas = false
	case "SF1":
		d.filament = 1
	case "SF2":
		d.filament = 2
	default:
		return "", false
	}

	return ackPayload, true
}

func (d *Device) reply(marker byte, payload string) []byte {
	return []byte(fmt.Sprintf("%c%s %-*.*s\r", marker, d.address, payloadWidth, payloadWidth, payload))
}

func switchPayload(on bool, tag string) string {
	if on {
		return "1 " + tag + " ON"
	}

	return "0 " + tag + " OFF"
}
