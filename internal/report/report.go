// Package report serializes resolved decisions.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sokinpui/sift/internal/model"
)

// Formats accepted by the CLI.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Write emits the result in the requested format.
func Write(w io.Writer, res *model.Result, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, res)
	case FormatText:
		return writeText(w, res)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

type jsonReport struct {
	Source    string           `json:"source"`
	Target    string           `json:"target"`
	Decisions []model.Decision `json:"decisions"`
	Warnings  []string         `json:"warnings,omitempty"`
}

func writeJSON(w io.Writer, res *model.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Source:    res.SourcePath,
		Target:    res.TargetPath,
		Decisions: res.Decisions,
		Warnings:  res.Warnings,
	})
}

func writeText(w io.Writer, res *model.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s\n", res.SourcePath, res.TargetPath)
	for _, d := range res.Decisions {
		fmt.Fprintf(&b, "  %-6s %4d  %-8s  %s\n", d.Variant, d.LineIndex, d.Verdict, d.Provenance)
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", warn)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Tally counts verdicts for summary display.
func Tally(res *model.Result) (keep, remove, filtered int) {
	for _, d := range res.Decisions {
		switch d.Verdict {
		case model.Keep.String():
			keep++
		case model.Remove.String():
			remove++
		case model.Filtered.String():
			filtered++
		}
	}
	return
}
