package igm401

// Opcode is the command mnemonic of a gauge function.
type Opcode string

// Opcodes understood by the IGM401 module.
const (
	OpModuleStatus    Opcode = "RS"  // cause of last shutdown
	OpModuleVersion   Opcode = "VER" // firmware part number and revision
	OpReset           Opcode = "RST" // reset as if power cycled, no reply
	OpFactoryDefaults Opcode = "FAC" // restore factory settings
	OpIonGaugeStatus  Opcode = "IGS"
	OpIonGaugeOn      Opcode = "IG1"
	OpIonGaugeOff     Opcode = "IG0"
	OpEmissionStatus  Opcode = "SES"
	OpEmission4mA     Opcode = "SE1"
	OpEmission100uA   Opcode = "SE0"
	OpDegasStatus     Opcode = "DGS"
	OpDegasOn         Opcode = "DG1"
	OpDegasOff        Opcode = "DG0"
	OpFilamentOne     Opcode = "SF1"
	OpFilamentTwo     Opcode = "SF2"
	OpReadPressure    Opcode = "RD"
)

// Framing characters.
const (
	CommandStart byte = '#'
	MarkerOK     byte = '*'
	MarkerError  byte = '?'
	CR           byte = '\r'
)

// DefaultAddress is the address of a module in a single-drop configuration.
const DefaultAddress = "01"

// ResponseLength is the fixed length of every reply, CR included.
const ResponseLength = 13

// Field offsets inside a reply frame.
const (
	addrOffset    = 1
	sepOffset     = 3
	payloadOffset = 4
	payloadEnd    = ResponseLength - 1
)

// PayloadWidth is the width of the space padded payload field.
const PayloadWidth = payloadEnd - payloadOffset

// EncodeCommand returns the wire frame of op for the module at address.
func EncodeCommand(address string, op Opcode) []byte {
	frame := make([]byte, 0, 1+len(address)+len(op)+1)
	frame = append(frame, CommandStart)
	frame = append(frame, address...)
	frame = append(frame, op...)

	return append(frame, CR)
}

// Frame is a structurally valid reply.
type Frame struct {
	Marker  byte
	Address string
	// Payload is the 8 character payload field, padding included.
	Payload string
	// Raw is the complete reply, CR included.
	Raw string
}

// ParseFrame validates the envelope of a reply.
//
// Validation order: length, terminator, marker, error marker, separator,
// address. A '?' reply always yields a *DeviceError, whatever its payload.
// When wantAddress is not empty the reply address must equal it.
func ParseFrame(raw []byte, wantAddress string) (Frame, error) {
	s := string(raw)

	if len(raw) != ResponseLength {
		return Frame{}, malformed("reply length is not 13", s)
	}
	if raw[ResponseLength-1] != CR {
		return Frame{}, malformed("reply not terminated by CR", s)
	}

	switch raw[0] {
	case MarkerOK:
	case MarkerError:
		return Frame{}, &DeviceError{Raw: s}
	default:
		return Frame{}, malformed("bad reply marker", s)
	}

	addr := s[addrOffset:sepOffset]
	if !isDigit(addr[0]) || !isDigit(addr[1]) {
		return Frame{}, malformed("address is not two digits", s)
	}
	if raw[sepOffset] != ' ' {
		return Frame{}, malformed("missing separator after address", s)
	}
	if wantAddress != "" && addr != wantAddress {
		return Frame{}, malformed("address mismatch, want "+wantAddress, s)
	}

	return Frame{
		Marker:  raw[0],
		Address: addr,
		Payload: s[payloadOffset:payloadEnd],
		Raw:     s,
	}, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}

	return true
}
