package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
)

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(os.Stderr, "  "+format+"\n", a...)
}

// --- Summaries ---

// PairOutcome is the display record for one compared pair in batch mode.
type PairOutcome struct {
	Rel      string
	Keep     int
	Remove   int
	Filtered int
	Err      error
}

func PrintBatchSummary(outcomes []PairOutcome) {
	Header("\n--- Comparison Summary ---")

	if len(outcomes) == 0 {
		Info("No file pairs were compared.")
		return
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			continue
		}
		Success("%s: %d keep, %d remove, %d filtered", o.Rel, o.Keep, o.Remove, o.Filtered)
	}
	if failed > 0 {
		Error("Failed to compare %d pair(s):", failed)
		for _, o := range outcomes {
			if o.Err != nil {
				fmt.Printf("  - %s: %v\n", o.Rel, o.Err)
			}
		}
	}
}
