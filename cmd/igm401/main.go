// Command igm401 monitors an IGM401 Hornet ion gauge over RS485.
//
// Usage:
//
//	igm401 [flags] [monitor|shell|ports]
//
// monitor (the default) switches the ion gauge on, logs a reading every
// interval and switches it off on exit. shell opens an interactive command
// prompt. ports lists the serial ports of the host.
//
// Flags:
//
//	-config    YAML configuration file (defaults are used when omitted)
//	-port      serial device, overrides serial.port
//	-simulate  talk to an in-process simulated module instead of a port
//
// Environment variables IGM401_PORT, IGM401_USB_ID, IGM401_BAUD_RATE,
// IGM401_ADDRESS, IGM401_LOG_LEVEL, IGM401_LOG_FORMAT and
// IGM401_METRICS_LISTEN override the configuration file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arloliu/go-igm401/internal/config"
	"github.com/arloliu/go-igm401/logger"
)

var log logger.Logger

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	portName := flag.String("port", "", "serial device, overrides serial.port")
	simulate := flag.Bool("simulate", false, "use an in-process simulated module")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [monitor|shell|ports]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *portName != "" {
		cfg.Serial.Port = *portName
	}

	log = newLogger(cfg.Log)
	logger.SetLogger(log)

	cmd := "monitor"
	if flag.NArg() > 0 {
		cmd = flag.Arg(0)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "monitor":
		err = runMonitor(ctx, cfg, *simulate)
	case "shell":
		err = runShell(cfg, *simulate)
	case "ports":
		err = listPorts(os.Stdout, cfg.Serial.USBID)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("igm401 failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	return cfg, nil
}

func newLogger(c config.LogConfig) logger.Logger {
	// Validate already rejected unknown levels
	level, _ := logger.ParseLevel(c.Level)

	return logger.NewSlog(level, level == logger.DebugLevel,
		logger.WithFormat(logger.Format(c.Format)),
		logger.WithOutput(os.Stderr),
	)
}
