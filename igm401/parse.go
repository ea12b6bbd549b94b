package igm401

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Payload tokens.
const (
	ackToken      = "PROGM OK"
	emissionUnit  = "MA EM"
	labelOn       = "ON"
	labelOff      = "OFF"
	ionGaugeTag   = "IG"
	degasTag      = "DG"
	pressureWidth = 8 // d.ddE±dd
)

// The parsing functions below decode the payload field of a reply, as
// returned in Frame.Payload. Trailing space padding is accepted wherever the
// grammar is shorter than the field.

// ParseStatus decodes the reply of RS.
func ParseStatus(payload string) (ShutdownStatus, error) {
	token := trimPadding(payload)
	for s, t := range statusTokens {
		if token == t {
			return ShutdownStatus(s), nil
		}
	}

	return 0, unexpected("shutdown status", token)
}

// ParseVersion decodes "<part number>-<revision>", both digit sequences.
func ParseVersion(payload string) (Version, error) {
	token := trimPadding(payload)

	part, rev, ok := strings.Cut(token, "-")
	if !ok || !isDigits(part) || !isDigits(rev) {
		return Version{}, malformed("version is not <digits>-<digits>", payload)
	}

	return Version{PartNumber: part, Revision: rev}, nil
}

// ParseSwitchState decodes "<0|1> <tag> <ON|OFF>" where tag is "IG" for the
// ion gauge and "DG" for degas. The numeric flag and the label must agree.
func ParseSwitchState(payload string, tag string) (SwitchState, error) {
	fields := strings.Split(trimPadding(payload), " ")
	if len(fields) != 3 || fields[1] != tag {
		return SwitchState{}, malformed("state is not <0|1> "+tag+" <ON|OFF>", payload)
	}

	flag, label := fields[0], fields[2]
	if (flag != "0" && flag != "1") || (label != labelOn && label != labelOff) {
		return SwitchState{}, malformed("state is not <0|1> "+tag+" <ON|OFF>", payload)
	}

	on := flag == "1"
	if on != (label == labelOn) {
		return SwitchState{}, unexpected("state flag and label disagree", payload)
	}

	return SwitchState{On: on, Label: label}, nil
}

// ParseEmission decodes "<d.d>MA EM". Only the 0.1 and 4.0 mA levels exist.
func ParseEmission(payload string) (EmissionCurrent, error) {
	token := trimPadding(payload)
	if len(token) != 3+len(emissionUnit) || !strings.HasSuffix(token, emissionUnit) ||
		!isDigit(token[0]) || token[1] != '.' || !isDigit(token[2]) {
		return 0, malformed("emission is not <d.d>MA EM", payload)
	}

	switch token[:3] {
	case "0.1":
		return Emission100uA, nil
	case "4.0":
		return Emission4mA, nil
	default:
		return 0, unexpected("emission current level", token[:3])
	}
}

// ParsePressure decodes a pressure in the fixed scientific form d.ddE±dd,
// for example "5.23E-07". The value is mantissa × 10^exponent.
func ParsePressure(payload string) (float64, error) {
	if !isPressureField(payload) {
		return 0, malformed("pressure is not d.ddE±dd", payload)
	}

	v, err := strconv.ParseFloat(payload, 64)
	if err != nil {
		return 0, malformed("pressure: "+err.Error(), payload)
	}

	return v, nil
}

// ParseAck checks the "PROGM OK" acknowledgement of a setting command.
// Any other payload is reported as a *DeviceError.
func ParseAck(payload string) error {
	if payload != ackToken {
		return &DeviceError{Raw: payload}
	}

	return nil
}

// FormatPressure encodes v in the device pressure grammar d.ddE±dd.
// v must be positive and its decimal exponent within [-99, 99].
func FormatPressure(v float64) (string, error) {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("igm401: pressure %v is not a positive finite value", v)
	}

	s := strconv.FormatFloat(v, 'E', 2, 64)
	if !isPressureField(s) {
		return "", fmt.Errorf("igm401: pressure %v exponent out of range", v)
	}

	return s, nil
}

func isPressureField(s string) bool {
	return len(s) == pressureWidth &&
		isDigit(s[0]) && s[1] == '.' && isDigit(s[2]) && isDigit(s[3]) &&
		s[4] == 'E' && (s[5] == '+' || s[5] == '-') &&
		isDigit(s[6]) && isDigit(s[7])
}

func trimPadding(payload string) string {
	return strings.TrimRight(payload, " ")
}
