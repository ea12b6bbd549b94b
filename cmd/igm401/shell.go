package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/go-igm401/internal/config"
	"github.com/arloliu/go-igm401/internal/console"
	"github.com/peterh/liner"
)

const historyFile = ".igm401_history"

func runShell(cfg *config.Config, simulate bool) error {
	s, err := openSession(cfg, simulate)
	if err != nil {
		return err
	}
	defer s.Close()

	c := console.New(s.gauge)

	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(c.Complete)

	history := historyPath()
	if f, err := os.Open(history); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("IGM401 %s on %s. Type \"help\" for commands, Ctrl-D to quit.\n", s.gauge.Version(), s.name)

	for {
		input, err := line.Prompt("igm401> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Println()
			break
		}
		if err != nil {
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		out, err := c.Execute(input)
		if errors.Is(err, console.ErrQuit) {
			break
		}
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		if out != "" {
			fmt.Println(strings.TrimRight(out, "\n"))
		}
	}

	if f, err := os.Create(history); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}

	return nil
}

func historyPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, historyFile)
	}

	return historyFile
}
