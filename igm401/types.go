package igm401

import "fmt"

// ShutdownStatus is the cause of the last controller shutdown reported by RS.
type ShutdownStatus int

const (
	// StatusOK means no fault; the device reports "ST OK".
	StatusOK ShutdownStatus = iota
	// StatusOverPressure means the gauge shut down on over-pressure ("OVPRS").
	StatusOverPressure
	// StatusEmissionFailure means emission could not be established ("EMISS").
	StatusEmissionFailure
	// StatusPowerFailure means a filament power failure ("POWER").
	StatusPowerFailure
	// StatusIonCurrentFailure means an ion current failure ("ION C").
	StatusIonCurrentFailure
)

var statusTokens = [...]string{
	StatusOK:                "ST OK",
	StatusOverPressure:      "OVPRS",
	StatusEmissionFailure:   "EMISS",
	StatusPowerFailure:      "POWER",
	StatusIonCurrentFailure: "ION C",
}

// Token returns the wire token of the status.
func (s ShutdownStatus) Token() string {
	if s < 0 || int(s) >= len(statusTokens) {
		return ""
	}

	return statusTokens[s]
}

func (s ShutdownStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusOverPressure:
		return "OverPressure"
	case StatusEmissionFailure:
		return "EmissionFailure"
	case StatusPowerFailure:
		return "PowerFailure"
	case StatusIonCurrentFailure:
		return "IonCurrentFailure"
	default:
		return fmt.Sprintf("ShutdownStatus(%d)", int(s))
	}
}

// SwitchState is the on/off state reported by IGS and DGS.
// Label is the textual part of the reply, "ON" or "OFF".
type SwitchState struct {
	On    bool
	Label string
}

func (s SwitchState) String() string { return s.Label }

// EmissionCurrent is one of the two emission current settings of the module.
type EmissionCurrent int

const (
	// Emission100uA is the 0.1 mA setting (SE0).
	Emission100uA EmissionCurrent = iota
	// Emission4mA is the 4.0 mA setting (SE1).
	Emission4mA
)

// MilliAmps returns the emission current in mA.
func (e EmissionCurrent) MilliAmps() float64 {
	if e == Emission4mA {
		return 4.0
	}

	return 0.1
}

func (e EmissionCurrent) String() string {
	switch e {
	case Emission100uA:
		return "0.1mA"
	case Emission4mA:
		return "4.0mA"
	default:
		return fmt.Sprintf("EmissionCurrent(%d)", int(e))
	}
}

// Version is the firmware identification of the module. The fields are kept
// as strings since they are identifiers, not quantities.
type Version struct {
	PartNumber string
	Revision   string
}

func (v Version) String() string {
	return v.PartNumber + "-" + v.Revision
}
