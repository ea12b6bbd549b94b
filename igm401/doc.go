// Package igm401 implements the RS485 command/response protocol of the
// InstruTech IGM401 hot-cathode ionization vacuum gauge module.
//
// # Protocol Overview
//
// Every command is a single ASCII frame:
//
//	'#' + address(2 digits) + opcode + CR
//
// for example "#01RD\r" reads the pressure of the module at address 01.
// Every reply is exactly 13 characters:
//
//	marker(1) + address(2) + ' ' + payload(8, space padded) + CR
//
// where the marker is '*' for a normal reply and '?' for an error reply.
//
// # Usage
//
// A Gauge is composed over an Exchanger, normally a *transport.Transport:
//
//	tr, err := transport.Open("/dev/ttyUSB0", nil)
//	if err != nil { ... }
//	gauge, err := igm401.New(tr)
//	if err != nil { ... } // version handshake failed
//	p, err := gauge.ReadPressure()
//
// Each operation performs exactly one write followed by one bounded read.
// Nothing is retried; errors are classified by ErrTimeout,
// ErrMalformedResponse, ErrDeviceError and ErrUnexpectedResponse.
//
// The gauge must be in RS485 mode (IG CNTL = DIGI/RS485 in the SETUP UNIT
// menu). Sending IG1 or IG0 switches the module from DIGI to RS485 control;
// leaving RS485 requires Reset or a power cycle.
//
// A Gauge is NOT goroutine-safe. The device has no request identifiers, so
// the caller must serialize all calls on one link.
package igm401
