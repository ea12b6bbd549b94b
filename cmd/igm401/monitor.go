package main

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/arloliu/go-igm401/internal/config"
	"github.com/arloliu/go-igm401/metrics"
	"github.com/arloliu/go-igm401/monitor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func runMonitor(ctx context.Context, cfg *config.Config, simulate bool) error {
	s, err := openSession(cfg, simulate)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Warn("failed to close port", "error", err)
		}
	}()

	if cfg.Metrics.Listen != "" {
		srv := serveMetrics(cfg.Metrics, s)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	m, err := monitor.New(s.gauge,
		monitor.WithInterval(cfg.Monitor.Interval()),
		monitor.WithIterations(cfg.Monitor.Iterations),
		monitor.WithMaxConsecutiveErrors(cfg.Monitor.MaxConsecutiveErrors),
		monitor.WithIonGaugeControl(cfg.Monitor.ControlsIonGauge()),
		monitor.WithLogger(log),
	)
	if err != nil {
		return err
	}

	m.AddReadingHandler(logReading)

	return m.Run(ctx)
}

func logReading(r monitor.Reading) {
	if r.Err != nil {
		log.Warn("reading failed", "iteration", r.Iteration, "error", r.Err)
		return
	}

	log.Info("reading",
		"iteration", r.Iteration,
		"pressure", strconv.FormatFloat(r.Pressure, 'E', 2, 64),
		"emission", r.Emission.String(),
		"degas", r.Degas.Label,
	)
}

// serveMetrics exposes the gauge and transport counters on /metrics.
func serveMetrics(c config.MetricsConfig, s *session) *http.Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.NewCollector(c.Namespace, s.gauge, s.transport.Metrics()),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              c.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("serving metrics", "listen", c.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()

	return srv
}
