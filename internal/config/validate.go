package config

import (
	"fmt"
	"strings"

	"github.com/arloliu/go-igm401/logger"
)

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	s := cfg.Serial
	if s.USBID != "" && !isUSBID(s.USBID) {
		return fmt.Errorf("serial.usb_id %q: expected VID:PID in hex, e.g. 0403:6001", s.USBID)
	}

	if s.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be positive, got %d", s.BaudRate)
	}

	if s.ReadTimeoutMs < 50 || s.ReadTimeoutMs > 10000 {
		return fmt.Errorf("serial.read_timeout_ms must be in [50, 10000], got %d", s.ReadTimeoutMs)
	}

	g := cfg.Gauge
	if len(g.Address) != 2 || !isDec(g.Address) {
		return fmt.Errorf("gauge.address %q: expected two decimal digits", g.Address)
	}

	if g.ResponseTimeoutMs <= 0 {
		return fmt.Errorf("gauge.response_timeout_ms must be positive, got %d", g.ResponseTimeoutMs)
	}

	m := cfg.Monitor
	if m.IntervalMs <= 0 {
		return fmt.Errorf("monitor.interval_ms must be positive, got %d", m.IntervalMs)
	}

	if m.Iterations < 0 {
		return fmt.Errorf("monitor.iterations must not be negative, got %d", m.Iterations)
	}

	if m.MaxConsecutiveErrors < 0 {
		return fmt.Errorf("monitor.max_consecutive_errors must not be negative, got %d", m.MaxConsecutiveErrors)
	}

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	switch strings.ToLower(cfg.Log.Format) {
	case "", string(logger.JSONFormat), string(logger.ConsoleFormat):
	default:
		return fmt.Errorf("log.format %q: expected json or console", cfg.Log.Format)
	}

	return nil
}

func isDec(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20 // lower-case letters
		if !(s[i] >= '0' && s[i] <= '9') && !(c >= 'a' && c <= 'f') {
			return false
		}
	}

	return true
}

func isUSBID(s string) bool {
	vid, pid, ok := strings.Cut(s, ":")
	return ok && len(vid) == 4 && len(pid) == 4 && isHex(vid) && isHex(pid)
}
