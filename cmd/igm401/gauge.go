package main

import (
	"context"
	"io"
	"net"

	"github.com/arloliu/go-igm401/igm401"
	"github.com/arloliu/go-igm401/internal/config"
	"github.com/arloliu/go-igm401/internal/simulator"
	"github.com/arloliu/go-igm401/transport"
)

// session is an open gauge with its transport.
type session struct {
	name      string
	gauge     *igm401.Gauge
	transport *transport.Transport
	closers   []io.Closer
	stop      context.CancelFunc
}

func (s *session) Close() error {
	var firstErr error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if s.stop != nil {
		s.stop()
	}

	return firstErr
}

// openSession opens the configured port, or a simulated module over an
// in-memory pipe, and performs the version handshake.
func openSession(cfg *config.Config, simulate bool) (*session, error) {
	trCfg, err := transport.NewConfig(
		transport.WithBaudRate(cfg.Serial.BaudRate),
		transport.WithReadTimeout(cfg.Serial.ReadTimeout()),
		transport.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	s := &session{}
	if simulate {
		s.name = "simulator"
		s.transport = s.startSimulator(cfg, trCfg)
	} else {
		name, err := resolvePort(cfg.Serial)
		if err != nil {
			return nil, err
		}

		if s.transport, err = transport.Open(name, trCfg); err != nil {
			return nil, err
		}
		s.name = name
	}
	s.closers = append([]io.Closer{s.transport}, s.closers...)

	s.gauge, err = igm401.New(s.transport,
		igm401.WithAddress(cfg.Gauge.Address),
		igm401.WithStrictAddress(cfg.Gauge.IsStrictAddress()),
		igm401.WithResponseTimeout(cfg.Gauge.ResponseTimeout()),
		igm401.WithLogger(log),
	)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	log.Info("gauge connected",
		"port", s.name,
		"address", cfg.Gauge.Address,
		"version", s.gauge.Version().String(),
	)

	return s, nil
}

func (s *session) startSimulator(cfg *config.Config, trCfg *transport.Config) *transport.Transport {
	local, remote := net.Pipe()
	dev := simulator.NewDevice(
		simulator.WithAddress(cfg.Gauge.Address),
		simulator.WithLogger(log.With("component", "simulator")),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := dev.Serve(ctx, remote); err != nil {
			log.Debug("simulator stopped", "error", err)
		}
	}()

	s.stop = cancel
	s.closers = append(s.closers, remote)
	log.Warn("using simulated gauge", "address", cfg.Gauge.Address)

	return transport.New(transport.NewConnPort(local), trCfg)
}
