package console

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/arloliu/go-igm401/igm401"
	"github.com/arloliu/go-igm401/internal/simulator"
	"github.com/arloliu/go-igm401/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimulatedConsole(t *testing.T) (*Console, *simulator.Device) {
	t.Helper()

	dev := simulator.NewDevice(simulator.WithPressure(2.5e-6))

	local, remote := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = local.Close()
		_ = remote.Close()
	})

	go func() {
		_ = dev.Serve(ctx, remote)
	}()

	cfg, err := transport.NewConfig(transport.WithReadTimeout(100 * time.Millisecond))
	require.NoError(t, err)

	g, err := igm401.New(transport.New(transport.NewConnPort(local), cfg),
		igm401.WithResponseTimeout(100*time.Millisecond))
	require.NoError(t, err)

	return New(g), dev
}

func TestExecute_Session(t *testing.T) {
	c, dev := newSimulatedConsole(t)

	steps := []struct {
		line string
		want string
	}{
		{"", ""},
		{"version", "part 1104, revision 07"},
		{"status", "OK (ST OK)"},
		{"ig", "OFF"},
		{"read", "9.90E+09"},
		{"IG on", "ig on"},
		{"ig", "ON"},
		{"read", "2.50E-06"},
		{"degas on", "degas on"},
		{"degas", "ON"},
		{"degas off", "degas off"},
		{"emission", "0.1mA"},
		{"emission 4mA", "emission current set to 4.0mA"},
		{"emission", "4.0mA"},
		{"filament 2", "filament 2 selected"},
		{"defaults", "factory defaults restored"},
	}

	for _, s := range steps {
		out, err := c.Execute(s.line)
		require.NoError(t, err, s.line)
		assert.Equal(t, s.want, out, s.line)
	}

	assert.Equal(t, 1, dev.Filament(), "defaults restore filament 1")
	assert.False(t, dev.IonGauge())
}

func TestExecute_Reset(t *testing.T) {
	c, dev := newSimulatedConsole(t)

	_, err := c.Execute("ig on")
	require.NoError(t, err)

	out, err := c.Execute("reset")
	require.NoError(t, err)
	assert.Equal(t, "reset sent", out)

	require.Eventually(t, func() bool { return !dev.IonGauge() }, time.Second, 5*time.Millisecond)
}

func TestExecute_DeviceError(t *testing.T) {
	c, _ := newSimulatedConsole(t)

	// degas needs the ion gauge on
	_, err := c.Execute("degas on")
	require.ErrorIs(t, err, igm401.ErrDeviceError)

	var devErr *igm401.DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Equal(t, igm401.OpDegasOn, devErr.Opcode)
}

func TestExecute_Timeout(t *testing.T) {
	c, dev := newSimulatedConsole(t)
	dev.SetSilent(true)

	_, err := c.Execute("read")
	require.ErrorIs(t, err, igm401.ErrTimeout)
}

func TestExecute_Usage(t *testing.T) {
	c, _ := newSimulatedConsole(t)

	tests := []struct {
		line string
		err  error
	}{
		{"bogus", ErrUnknownCommand},
		{"read now", ErrUsage},
		{"ig maybe", ErrUsage},
		{"ig on off", ErrUsage},
		{"degas 1", ErrUsage},
		{"emission 10mA", ErrUsage},
		{"filament", ErrUsage},
		{"filament 3", ErrUsage},
		{"filament x", ErrUsage},
		{"quit", ErrQuit},
		{"EXIT", ErrQuit},
	}

	for _, tt := range tests {
		_, err := c.Execute(tt.line)
		assert.ErrorIs(t, err, tt.err, tt.line)
	}
}

func TestHelpAndComplete(t *testing.T) {
	c, _ := newSimulatedConsole(t)

	out, err := c.Execute("help")
	require.NoError(t, err)
	for _, name := range []string{"version", "status", "read", "ig [on|off]", "filament <1|2>", "quit"} {
		assert.Contains(t, out, name)
	}

	assert.Equal(t, []string{"defaults", "degas"}, c.Complete("de"))
	assert.Equal(t, []string{"emission", "exit"}, c.Complete("E"))
	assert.Empty(t, c.Complete("zz"))
}

func TestRegister(t *testing.T) {
	c, _ := newSimulatedConsole(t)

	errBoom := errors.New("boom")
	c.Register(&Command{
		Name: "boom", Usage: "boom", MaxArgs: 0,
		Run: func(Gauge, []string) (string, error) { return "", errBoom },
	})

	_, err := c.Execute("boom")
	require.ErrorIs(t, err, errBoom)
	assert.Contains(t, c.Names(), "boom")
}
