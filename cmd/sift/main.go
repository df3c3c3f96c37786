package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokinpui/sift/internal/cli"
	"github.com/sokinpui/sift/internal/model"
	"github.com/sokinpui/sift/internal/tui"
	"github.com/sokinpui/sift/sift"
)

func main() {
	cfg, err := cli.ParseFlags()
	if err != nil {
		// pflag already prints the error message.
		os.Exit(1)
	}

	app, err := sift.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if cfg.Interactive {
		p := tea.NewProgram(tui.New(app))
		if _, err := p.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
			os.Exit(1)
		}
		return
	}

	results, err := app.Execute()
	if err != nil {
		var detailed *sift.DetailedError
		if errors.As(err, &detailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n--- Stack Trace ---\n%s\n", err, detailed.Stack)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}

	if err := app.Report(results); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// exitCode distinguishes the error classes callers script against: 2 for
// malformed input, 3 for a blown time budget, 1 otherwise.
func exitCode(err error) int {
	var malformed *model.MalformedInputError
	if errors.As(err, &malformed) {
		return 2
	}
	var timeout *model.TimeoutError
	if errors.As(err, &timeout) {
		return 3
	}
	return 1
}
