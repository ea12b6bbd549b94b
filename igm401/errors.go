package igm401

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-igm401/transport"
)

// Sentinel errors of the gauge protocol. Match them with errors.Is.
var (
	// ErrConnection reports that the serial port could not be opened.
	ErrConnection = transport.ErrConnection
	// ErrTimeout reports that no reply arrived within the read timeout.
	ErrTimeout = transport.ErrTimeout
	// ErrMalformedResponse reports a reply that fails structural validation:
	// wrong length, bad marker, address mismatch or field grammar mismatch.
	ErrMalformedResponse = errors.New("igm401: malformed response")
	// ErrDeviceError reports an error reply ('?' marker) or a missing
	// "PROGM OK" acknowledgement. The concrete error is a *DeviceError.
	ErrDeviceError = errors.New("igm401: device error")
	// ErrUnexpectedResponse reports a well-formed reply whose value is not
	// one the driver knows, such as an undocumented status token.
	ErrUnexpectedResponse = errors.New("igm401: unexpected response")
)

// DeviceError carries the raw reply of a command the device rejected.
type DeviceError struct {
	// Opcode is the command that was rejected. Empty for errors returned
	// by the pure parsing functions.
	Opcode Opcode
	// Raw is the raw reply frame, or the payload when produced by ParseAck.
	Raw string
}

func (e *DeviceError) Error() string {
	if e.Opcode == "" {
		return fmt.Sprintf("%s: reply %q", ErrDeviceError, e.Raw)
	}

	return fmt.Sprintf("%s: %s rejected, reply %q", ErrDeviceError, e.Opcode, e.Raw)
}

// Is reports whether target is ErrDeviceError.
func (e *DeviceError) Is(target error) bool {
	return target == ErrDeviceError
}

func malformed(reason string, got string) error {
	return fmt.Errorf("%w: %s: got %q", ErrMalformedResponse, reason, got)
}

func unexpected(what string, got string) error {
	return fmt.Errorf("%w: %s %q", ErrUnexpectedResponse, what, got)
}

// errorKind classifies err for metrics and logging.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrDeviceError):
		return "device"
	case errors.Is(err, ErrUnexpectedResponse):
		return "unexpected"
	default:
		return "io"
	}
}
