// Package console implements the command set of the interactive shell.
//
// The shell itself (line editing, history) lives in the program; this
// package only maps a command line to gauge operations and renders the
// result as text.
package console

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/arloliu/go-igm401/igm401"
)

var (
	// ErrUnknownCommand is returned for a command name that is not registered.
	ErrUnknownCommand = errors.New("console: unknown command")
	// ErrUsage is returned when the argument count or an argument is invalid.
	ErrUsage = errors.New("console: usage")
	// ErrQuit is returned by "quit" and "exit".
	ErrQuit = errors.New("console: quit")
)

// Gauge is the part of *igm401.Gauge the shell drives.
type Gauge interface {
	ModuleStatus() (igm401.ShutdownStatus, error)
	ModuleVersion() (igm401.Version, error)
	ReadPressure() (float64, error)
	IonGaugeStatus() (igm401.SwitchState, error)
	SetIonGauge(on bool) error
	DegasStatus() (igm401.SwitchState, error)
	SetDegas(on bool) error
	EmissionCurrentStatus() (igm401.EmissionCurrent, error)
	SetEmissionCurrent(e igm401.EmissionCurrent) error
	SelectFilament(n int) error
	Defaults() error
	Reset() error
}

var _ Gauge = (*igm401.Gauge)(nil)

// Command is one shell command.
type Command struct {
	Name        string
	Usage       string
	Description string
	MinArgs     int
	MaxArgs     int
	Run         func(g Gauge, args []string) (string, error)
}

// Console dispatches command lines to a Gauge.
//
// It is NOT goroutine-safe, same as the gauge it drives.
type Console struct {
	gauge    Gauge
	commands map[string]*Command
}

// New creates a console with the built-in command set.
func New(g Gauge) *Console {
	c := &Console{
		gauge:    g,
		commands: make(map[string]*Command),
	}

	for _, cmd := range builtinCommands() {
		c.Register(cmd)
	}

	return c
}

// Register adds cmd, replacing a command with the same name.
func (c *Console) Register(cmd *Command) {
	c.commands[cmd.Name] = cmd
}

// Names returns the sorted command names, including help and quit.
func (c *Console) Names() []string {
	names := make([]string, 0, len(c.commands)+3)
	for name := range c.commands {
		names = append(names, name)
	}
	names = append(names, "help", "quit", "exit")
	sort.Strings(names)

	return names
}

// Complete returns the command names starting with prefix.
func (c *Console) Complete(prefix string) []string {
	prefix = strings.ToLower(prefix)

	var out []string
	for _, name := range c.Names() {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}

	return out
}

// Help returns one line per command.
func (c *Console) Help() string {
	var sb strings.Builder
	for _, name := range c.Names() {
		cmd, ok := c.commands[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "  %-24s %s\n", cmd.Usage, cmd.Description)
	}
	fmt.Fprintf(&sb, "  %-24s %s\n", "help", "Show this list")
	fmt.Fprintf(&sb, "  %-24s %s\n", "quit", "Leave the shell")

	return sb.String()
}

// Execute runs a command line and returns its output. An empty line is a
// no-op. "quit" and "exit" return ErrQuit.
func (c *Console) Execute(line string) (string, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return "", nil
	}

	name, args := strings.ToLower(tokens[0]), tokens[1:]
	switch name {
	case "help", "?":
		return c.Help(), nil
	case "quit", "exit":
		return "", ErrQuit
	}

	cmd, ok := c.commands[name]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownCommand, name)
	}

	if len(args) < cmd.MinArgs || len(args) > cmd.MaxArgs {
		return "", fmt.Errorf("%w: %s", ErrUsage, cmd.Usage)
	}

	return cmd.Run(c.gauge, args)
}

func builtinCommands() []*Command {
	return []*Command{
		{
			Name: "version", Usage: "version", Description: "Query the firmware version (VER)",
			Run: func(g Gauge, _ []string) (string, error) {
				v, err := g.ModuleVersion()
				if err != nil {
					return "", err
				}

				return fmt.Sprintf("part %s, revision %s", v.PartNumber, v.Revision), nil
			},
		},
		{
			Name: "status", Usage: "status", Description: "Read the last shutdown cause (RS)",
			Run: func(g Gauge, _ []string) (string, error) {
				s, err := g.ModuleStatus()
				if err != nil {
					return "", err
				}

				return fmt.Sprintf("%s (%s)", s, s.Token()), nil
			},
		},
		{
			Name: "read", Usage: "read", Description: "Read the pressure (RD)",
			Run: func(g Gauge, _ []string) (string, error) {
				p, err := g.ReadPressure()
				if err != nil {
					return "", err
				}

				return strconv.FormatFloat(p, 'E', 2, 64), nil
			},
		},
		{
			Name: "ig", Usage: "ig [on|off]", Description: "Show or switch the ion gauge (IGS/IG1/IG0)",
			MaxArgs: 1,
			Run: func(g Gauge, args []string) (string, error) {
				return switchCommand(args, "ig", g.IonGaugeStatus, g.SetIonGauge)
			},
		},
		{
			Name: "degas", Usage: "degas [on|off]", Description: "Show or switch degas (DGS/DG1/DG0)",
			MaxArgs: 1,
			Run: func(g Gauge, args []string) (string, error) {
				return switchCommand(args, "degas", g.DegasStatus, g.SetDegas)
			},
		},
		{
			Name: "emission", Usage: "emission [4ma|100ua]", Description: "Show or set the emission current (SES/SE1/SE0)",
			MaxArgs: 1,
			Run: func(g Gauge, args []string) (string, error) {
				if len(args) == 0 {
					e, err := g.EmissionCurrentStatus()
					if err != nil {
						return "", err
					}

					return e.String(), nil
				}

				var e igm401.EmissionCurrent
				switch strings.ToLower(args[0]) {
				case "4ma", "4", "4.0ma":
					e = igm401.Emission4mA
				case "100ua", "0.1ma", "0.1":
					e = igm401.Emission100uA
				default:
					return "", fmt.Errorf("%w: emission [4ma|100ua]", ErrUsage)
				}

				if err := g.SetEmissionCurrent(e); err != nil {
					return "", err
				}

				return "emission current set to " + e.String(), nil
			},
		},
		{
			Name: "filament", Usage: "filament <1|2>", Description: "Select the active filament (SF1/SF2)",
			MinArgs: 1, MaxArgs: 1,
			Run: func(g Gauge, args []string) (string, error) {
				n, err := strconv.Atoi(args[0])
				if err != nil || (n != 1 && n != 2) {
					return "", fmt.Errorf("%w: filament <1|2>", ErrUsage)
				}

				if err := g.SelectFilament(n); err != nil {
					return "", err
				}

				return fmt.Sprintf("filament %d selected", n), nil
			},
		},
		{
			Name: "defaults", Usage: "defaults", Description: "Restore factory settings (FAC)",
			Run: func(g Gauge, _ []string) (string, error) {
				if err := g.Defaults(); err != nil {
					return "", err
				}

				return "factory defaults restored", nil
			},
		},
		{
			Name: "reset", Usage: "reset", Description: "Reset the module, no reply expected (RST)",
			Run: func(g Gauge, _ []string) (string, error) {
				if err := g.Reset(); err != nil {
					return "", err
				}

				return "reset sent", nil
			},
		},
	}
}

func switchCommand(args []string, name string, status func() (igm401.SwitchState, error), set func(bool) error) (string, error) {
	if len(args) == 0 {
		s, err := status()
		if err != nil {
			return "", err
		}

		return s.Label, nil
	}

	var on bool
	switch strings.ToLower(args[0]) {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return "", fmt.Errorf("%w: %s [on|off]", ErrUsage, name)
	}

	if err := set(on); err != nil {
		return "", err
	}

	return name + " " + strings.ToLower(args[0]), nil
}
