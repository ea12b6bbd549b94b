// Package config loads the YAML configuration of the igm401 program.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Gauge   GaugeConfig   `yaml:"gauge"`
	Monitor MonitorConfig `yaml:"monitor"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ---- SERIAL ----

type SerialConfig struct {
	// Port is the device name, e.g. /dev/ttyUSB0 or COM3.
	Port string `yaml:"port"`
	// USBID selects the port by "VID:PID" when Port is empty.
	USBID         string `yaml:"usb_id"`
	BaudRate      int    `yaml:"baud_rate"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
}

// ---- GAUGE ----

type GaugeConfig struct {
	Address string `yaml:"address"`
	// StrictAddress defaults to true when omitted.
	StrictAddress     *bool `yaml:"strict_address"`
	ResponseTimeoutMs int   `yaml:"response_timeout_ms"`
}

// ---- MONITOR ----

type MonitorConfig struct {
	IntervalMs int `yaml:"interval_ms"`
	// Iterations stops the monitor after that many readings, 0 runs until
	// interrupted.
	Iterations           int   `yaml:"iterations"`
	MaxConsecutiveErrors int   `yaml:"max_consecutive_errors"`
	IonGaugeControl      *bool `yaml:"ion_gauge_control"`
}

// ---- LOG ----

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---- METRICS ----

type MetricsConfig struct {
	// Listen is the address of the /metrics endpoint; empty disables it.
	Listen    string `yaml:"listen"`
	Namespace string `yaml:"namespace"`
}

// Default returns the configuration used for fields a file leaves out.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{
			BaudRate:      19200,
			ReadTimeoutMs: 500,
		},
		Gauge: GaugeConfig{
			Address:           "01",
			ResponseTimeoutMs: 500,
		},
		Monitor: MonitorConfig{
			IntervalMs:           1000,
			MaxConsecutiveErrors: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Namespace: "igm401",
		},
	}
}

// Load reads the file at path, validates it and normalizes it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes YAML on top of Default, then validates and normalizes.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	Normalize(cfg)

	return cfg, nil
}

// ReadTimeout returns the serial read timeout.
func (c *SerialConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMs) * time.Millisecond
}

// ResponseTimeout returns how long the driver waits for a reply.
func (c *GaugeConfig) ResponseTimeout() time.Duration {
	return time.Duration(c.ResponseTimeoutMs) * time.Millisecond
}

// IsStrictAddress reports whether replies from other addresses are rejected.
func (c *GaugeConfig) IsStrictAddress() bool {
	return c.StrictAddress == nil || *c.StrictAddress
}

// Interval returns the polling interval.
func (c *MonitorConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// ControlsIonGauge reports whether the monitor switches the ion gauge
// on at startup and off at shutdown. Defaults to true.
func (c *MonitorConfig) ControlsIonGauge() bool {
	return c.IonGaugeControl == nil || *c.IonGaugeControl
}
