package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables overriding the file.
const (
	EnvPort      = "IGM401_PORT"
	EnvUSBID     = "IGM401_USB_ID"
	EnvBaudRate  = "IGM401_BAUD_RATE"
	EnvAddress   = "IGM401_ADDRESS"
	EnvLogLevel  = "IGM401_LOG_LEVEL"
	EnvLogFormat = "IGM401_LOG_FORMAT"
	EnvMetrics   = "IGM401_METRICS_LISTEN"
)

// ApplyEnv overrides cfg with the IGM401_* environment variables that are
// set, then re-validates and re-normalizes it.
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if val, ok := lookup(EnvPort); ok && val != "" {
		cfg.Serial.Port = val
	}

	if val, ok := lookup(EnvUSBID); ok && val != "" {
		cfg.Serial.USBID = val
	}

	if val, ok := lookup(EnvBaudRate); ok && val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvBaudRate, err)
		}
		cfg.Serial.BaudRate = n
	}

	if val, ok := lookup(EnvAddress); ok && val != "" {
		cfg.Gauge.Address = val
	}

	if val, ok := lookup(EnvLogLevel); ok && val != "" {
		cfg.Log.Level = val
	}

	if val, ok := lookup(EnvLogFormat); ok && val != "" {
		cfg.Log.Format = val
	}

	if val, ok := lookup(EnvMetrics); ok {
		cfg.Metrics.Listen = val
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	Normalize(cfg)

	return nil
}
