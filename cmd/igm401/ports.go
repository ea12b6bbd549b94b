package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/arloliu/go-igm401/internal/config"
	"go.bug.st/serial/enumerator"
)

var errNoPort = errors.New("no serial port configured")

// resolvePort returns the configured port name, or looks up the USB adapter
// named by usb_id.
func resolvePort(c config.SerialConfig) (string, error) {
	if c.Port != "" {
		return c.Port, nil
	}

	if c.USBID == "" {
		return "", fmt.Errorf("%w: set serial.port, serial.usb_id or -port", errNoPort)
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("enumerate serial ports: %w", err)
	}

	return findUSBPort(ports, c.USBID)
}

// findUSBPort returns the first USB port whose VID:PID matches usbID.
func findUSBPort(ports []*enumerator.PortDetails, usbID string) (string, error) {
	for _, p := range ports {
		if p.IsUSB && strings.EqualFold(p.VID+":"+p.PID, usbID) {
			return p.Name, nil
		}
	}

	return "", fmt.Errorf("%w: no USB adapter with id %s", errNoPort, usbID)
}

func listPorts(w io.Writer, usbID string) error {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return fmt.Errorf("enumerate serial ports: %w", err)
	}

	return writePorts(w, ports, usbID)
}

func writePorts(w io.Writer, ports []*enumerator.PortDetails, usbID string) error {
	if len(ports) == 0 {
		_, err := fmt.Fprintln(w, "no serial ports found")
		return err
	}

	for _, p := range ports {
		mark := " "
		if usbID != "" && p.IsUSB && strings.EqualFold(p.VID+":"+p.PID, usbID) {
			mark = "*"
		}

		if !p.IsUSB {
			if _, err := fmt.Fprintf(w, "%s %s\n", mark, p.Name); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, "%s %s  %s:%s  %s  %s\n", mark, p.Name, p.VID, p.PID, p.SerialNumber, p.Product); err != nil {
			return err
		}
	}

	return nil
}
