package simulator

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_Replies(t *testing.T) {
	d := NewDevice()

	tests := []struct {
		cmd  string
		want string
	}{
		{"#01RS\r", "*01 ST OK   \r"},
		{"#01VER\r", "*01 1104-07 \r"},
		{"#01RD\r", "*01 9.90E+09\r"},
		{"#01IGS\r", "*01 0 IG OFF\r"},
		{"#01IG1\r", "*01 PROGM OK\r"},
		{"#01IGS\r", "*01 1 IG ON \r"},
		{"#01RD\r", "*01 5.23E-07\r"},
		{"#01SES\r", "*01 0.1MA EM\r"},
		{"#01SE1\r", "*01 PROGM OK\r"},
		{"#01SES\r", "*01 4.0MA EM\r"},
		{"#01DG1\r", "*01 PROGM OK\r"},
		{"#01DGS\r", "*01 1 DG ON \r"},
		{"#01SF2\r", "*01 PROGM OK\r"},
		{"#01XYZ\r", "?01 SYNTX ER\r"},
	}

	for _, tt := range tests {
		reply := d.Handle(tt.cmd)
		require.Len(t, reply, replyLen, tt.cmd)
		assert.Equal(t, tt.want, string(reply), tt.cmd)
	}

	assert.True(t, d.IonGauge())
	assert.True(t, d.Degas())
	assert.True(t, d.Emission4mA())
	assert.Equal(t, 2, d.Filament())
}

func TestHandle_NoReply(t *testing.T) {
	d := NewDevice()

	assert.Nil(t, d.Handle("#01RST\r"))
	assert.Nil(t, d.Handle("#02RD\r"), "other address")
	assert.Nil(t, d.Handle("garbage\r"))

	d.SetSilent(true)
	assert.Nil(t, d.Handle("#01RD\r"))

	assert.Equal(t, []string{"#01RST", "#02RD", "#01RD"}, d.Received())
}

func TestHandle_DegasRequiresIonGauge(t *testing.T) {
	d := NewDevice()

	assert.Equal(t, "?01 SYNTX ER\r", string(d.Handle("#01DG1\r")))
	assert.False(t, d.Degas())
}

func TestHandle_FaultInjection(t *testing.T) {
	d := NewDevice()

	d.SetNextRaw([]byte("*01 5.2E-7\r"))
	assert.Equal(t, "*01 5.2E-7\r", string(d.Handle("#01RD\r")))
	assert.Equal(t, "*01 9.90E+09\r", string(d.Handle("#01RD\r")))

	d.SetErrorReply(true)
	assert.Equal(t, "?01 SYNTX ER\r", string(d.Handle("#01RS\r")))
}

func TestHandle_FactoryDefaults(t *testing.T) {
	d := NewDevice()
	d.Handle("#01IG1\r")
	d.Handle("#01SF2\r")
	d.SetStatus("EMISS")

	assert.Equal(t, "*01 PROGM OK\r", string(d.Handle("#01FAC\r")))
	assert.False(t, d.IonGauge())
	assert.Equal(t, 1, d.Filament())
	assert.Equal(t, "*01 ST OK   \r", string(d.Handle("#01RS\r")))
}

func TestServe_OverPipe(t *testing.T) {
	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	d := NewDevice(WithAddress("07"), WithPressure(1.5e-9))

	done := make(chan error, 1)
	go func() {
		done <- d.Serve(context.Background(), remote)
	}()

	_, err := local.Write([]byte("#07IG1\r#07RD\r"))
	require.NoError(t, err)

	buf := make([]byte, 2*replyLen)
	require.NoError(t, local.SetReadDeadline(time.Now().Add(time.Second)))
	_, err = io.ReadFull(local, buf)
	require.NoError(t, err)
	assert.Equal(t, "*07 PROGM OK\r*07 1.50E-09\r", string(buf))

	require.NoError(t, local.Close())
	assert.NoError(t, <-done)
}
