package igm401

import (
	"errors"
	"time"
)

// Exchanger is the byte-level link a Gauge drives. *transport.Transport
// implements it.
type Exchanger interface {
	// Send writes a complete command frame.
	Send(data []byte) error
	// Receive reads up to n bytes, stopping early after delim, and fails with
	// ErrTimeout when nothing arrives within timeout.
	Receive(n int, delim byte, timeout time.Duration) ([]byte, error)
}

// ExchangeState is the progress of a single command/response exchange.
type ExchangeState int

const (
	StateIdle ExchangeState = iota
	StateCommandSent
	StateResponseReceived
	StateDecoded
	StateRejected
)

func (s ExchangeState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateCommandSent:
		return "CommandSent"
	case StateResponseReceived:
		return "ResponseReceived"
	case StateDecoded:
		return "Decoded"
	case StateRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// exchange sends op and returns the validated reply envelope.
// Failures are recorded with the state the exchange reached.
func (g *Gauge) exchange(op Opcode) (Frame, error) {
	cmd := EncodeCommand(g.cfg.address, op)
	g.metrics.incExchange(op)

	if err := g.tr.Send(cmd); err != nil {
		return Frame{}, g.reject(op, StateIdle, err)
	}

	raw, err := g.tr.Receive(ResponseLength, CR, g.cfg.responseTimeout)
	if err != nil {
		return Frame{}, g.reject(op, StateCommandSent, err)
	}

	wantAddr := ""
	if g.cfg.strictAddress {
		wantAddr = g.cfg.address
	}

	frame, err := ParseFrame(raw, wantAddr)
	if err != nil {
		return Frame{}, g.reject(op, StateResponseReceived, withOpcode(err, op, string(raw)))
	}

	return frame, nil
}

// query performs one exchange and decodes its payload.
func query[T any](g *Gauge, op Opcode, decode func(payload string) (T, error)) (T, error) {
	var zero T

	frame, err := g.exchange(op)
	if err != nil {
		return zero, err
	}

	v, err := decode(frame.Payload)
	if err != nil {
		return zero, g.reject(op, StateResponseReceived, withOpcode(err, op, frame.Raw))
	}

	g.metrics.incDecoded()
	g.logger.Debug("igm401: exchange decoded", "opcode", op, "state", StateDecoded, "reply", frame.Raw)

	return v, nil
}

// command performs one exchange of an acknowledgement-only command.
func (g *Gauge) command(op Opcode) error {
	_, err := query(g, op, func(payload string) (struct{}, error) {
		return struct{}{}, ParseAck(payload)
	})

	return err
}

func (g *Gauge) reject(op Opcode, reached ExchangeState, err error) error {
	kind := errorKind(err)
	g.metrics.incRejected(kind)
	g.logger.Debug("igm401: exchange rejected",
		"opcode", op,
		"reached", reached,
		"state", StateRejected,
		"kind", kind,
		"error", err,
	)

	return err
}

// withOpcode fills the command and raw reply into a *DeviceError.
func withOpcode(err error, op Opcode, raw string) error {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return &DeviceError{Opcode: op, Raw: raw}
	}

	return err
}
