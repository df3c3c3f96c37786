package sift

import (
	"context"

	"github.com/sokinpui/sift/internal/cli"
	"github.com/sokinpui/sift/internal/marker"
	"github.com/sokinpui/sift/internal/rules"
	"github.com/sokinpui/sift/internal/scan"
)

// Config for using sift as a library.
type Config struct {
	// RulesPath optionally points to a YAML marker-grammar file.
	RulesPath string
}

// Decision is the public per-line verdict record.
type Decision struct {
	Variant    string `json:"variant"`
	LineIndex  int    `json:"lineIndex"`
	Verdict    string `json:"verdict"`
	Provenance string `json:"provenance"`
}

// Compare runs the full pipeline on two in-memory variants and returns the
// per-line decisions plus any directive-conflict warnings.
func Compare(sourceContent, targetContent string, config Config) ([]Decision, []string, error) {
	app, err := New(&cli.Config{RulesPath: config.RulesPath, Format: "text"})
	if err != nil {
		return nil, nil, err
	}

	res, err := app.comparePair(context.Background(), "source", sourceContent, "target", targetContent)
	if err != nil {
		return nil, nil, err
	}

	decisions := make([]Decision, len(res.Decisions))
	for i, d := range res.Decisions {
		decisions[i] = Decision{
			Variant:    string(d.Variant),
			LineIndex:  d.LineIndex,
			Verdict:    d.Verdict,
			Provenance: d.Provenance,
		}
	}
	return decisions, res.Warnings, nil
}

// Directives returns the marker directives of a single snapshot, mainly for
// callers that want the annotation layer without a comparison.
func Directives(content string, config Config) ([]string, error) {
	r := rules.Default()
	if config.RulesPath != "" {
		loaded, err := rules.Load(config.RulesPath)
		if err != nil {
			return nil, err
		}
		r = loaded
	}

	snap, err := scan.Normalize("input", content, r.Syntax())
	if err != nil {
		return nil, err
	}

	var out []string
	for _, d := range marker.Classify(snap, r) {
		out = append(out, d.Kind.String()+": "+d.Text)
	}
	return out, nil
}
