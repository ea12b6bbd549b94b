package igm401

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allOpcodes = []Opcode{
	OpModuleStatus, OpModuleVersion, OpReset, OpFactoryDefaults,
	OpIonGaugeStatus, OpIonGaugeOn, OpIonGaugeOff,
	OpEmissionStatus, OpEmission4mA, OpEmission100uA,
	OpDegasStatus, OpDegasOn, OpDegasOff,
	OpFilamentOne, OpFilamentTwo, OpReadPressure,
}

func TestEncodeCommand(t *testing.T) {
	for _, op := range allOpcodes {
		assert.Equal(t, "#01"+string(op)+"\r", string(EncodeCommand(DefaultAddress, op)))
	}

	assert.Equal(t, []byte("#12RD\r"), EncodeCommand("12", OpReadPressure))
}

func TestParseFrame_Success(t *testing.T) {
	f, err := ParseFrame([]byte("*01 5.23E-07\r"), "01")
	require.NoError(t, err)

	assert.Equal(t, MarkerOK, f.Marker)
	assert.Equal(t, "01", f.Address)
	assert.Equal(t, "5.23E-07", f.Payload)
	assert.Len(t, f.Payload, PayloadWidth)
	assert.Equal(t, "*01 5.23E-07\r", f.Raw)
}

func TestParseFrame_WrongLength(t *testing.T) {
	inputs := []string{
		"",
		"*",
		"*01 ST OK\r",
		"*01 5.2E-7\r",
		"*01 5.23E-07 \r",
		"*01 PROGM OK\r\r",
		"?01 PROGM O\r",
	}

	for _, in := range inputs {
		_, err := ParseFrame([]byte(in), "01")
		require.Error(t, err, "%q", in)
		assert.True(t, errors.Is(err, ErrMalformedResponse), "%q: %v", in, err)
	}
}

func TestParseFrame_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bad marker", "!01 PROGM OK\r"},
		{"no CR", "*01 PROGM OK\n"},
		{"non-digit address", "*0A PROGM OK\r"},
		{"missing separator", "*01-PROGM OK\r"},
		{"address mismatch", "*02 PROGM OK\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFrame([]byte(tt.raw), "01")
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedResponse))
			assert.False(t, errors.Is(err, ErrDeviceError))
		})
	}
}

func TestParseFrame_AddressNotChecked(t *testing.T) {
	f, err := ParseFrame([]byte("*02 PROGM OK\r"), "")
	require.NoError(t, err)
	assert.Equal(t, "02", f.Address)
}

func TestParseFrame_ErrorMarker(t *testing.T) {
	// A '?' reply is an error even when its payload would parse.
	for _, raw := range []string{"?01 PROGM OK\r", "?01 5.23E-07\r", "?01 ST OK   \r", "?99 SYNTX ER\r"} {
		_, err := ParseFrame([]byte(raw), "01")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDeviceError), raw)

		var devErr *DeviceError
		require.True(t, errors.As(err, &devErr))
		assert.Equal(t, raw, devErr.Raw)
	}
}
