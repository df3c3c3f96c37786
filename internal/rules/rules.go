// Package rules holds the configurable marker-matching grammar.
//
// The fixture corpus is inconsistent about directive phrasing ("THIS ONE
// SHOULD STAY" vs "This one should stay!" vs a bare "STAY"), so the grammar
// is data, not code: a rule file can widen or tighten the match mode per
// pattern without touching the classifier.
package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sokinpui/sift/internal/model"
	"github.com/sokinpui/sift/internal/scan"
)

// Match modes for a marker pattern.
const (
	MatchSubstring = "substring"
	MatchWord      = "word"
	MatchLine      = "line"
)

// Marker maps a comment pattern to a directive kind. Matching is always
// case-insensitive; Mode defaults to substring.
type Marker struct {
	Pattern string `yaml:"pattern"`
	Kind    string `yaml:"kind"`
	Mode    string `yaml:"mode,omitempty"`
}

// Comment configures the comment tokens recognized by the normalizer.
type Comment struct {
	Line       []string `yaml:"line"`
	BlockOpen  string   `yaml:"block_open"`
	BlockClose string   `yaml:"block_close"`
}

// Rules is a full marker-grammar configuration.
type Rules struct {
	Markers []Marker `yaml:"markers"`
	Comment Comment  `yaml:"comment"`
}

// Default returns the grammar the variant fixtures use. Longer patterns come
// first so a comment matching several is tagged by the most specific one.
func Default() *Rules {
	return &Rules{
		Markers: []Marker{
			{Pattern: "should stay", Kind: "must-stay"},
			{Pattern: "might be removed", Kind: "may-remove"},
			{Pattern: "may be removed", Kind: "may-remove"},
			{Pattern: "should be filtered", Kind: "must-filter"},
			{Pattern: "filtered", Kind: "must-filter"},
			{Pattern: "stay", Kind: "must-stay"},
		},
		Comment: Comment{
			Line:       []string{"//"},
			BlockOpen:  "/*",
			BlockClose: "*/",
		},
	}
}

// Load reads and validates a rule file. Omitted sections fall back to the
// defaults, so a file may override only the markers or only the comment
// syntax.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	r := &Rules{}
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	def := Default()
	if len(r.Markers) == 0 {
		r.Markers = def.Markers
	}
	if len(r.Comment.Line) == 0 && r.Comment.BlockOpen == "" {
		r.Comment = def.Comment
	}
	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return r, nil
}

func (r *Rules) validate() error {
	for _, m := range r.Markers {
		if m.Pattern == "" {
			return fmt.Errorf("marker with empty pattern")
		}
		if _, err := KindOf(m.Kind); err != nil {
			return err
		}
		switch m.Mode {
		case "", MatchSubstring, MatchWord, MatchLine:
		default:
			return fmt.Errorf("unknown match mode %q", m.Mode)
		}
	}
	return nil
}

// KindOf maps a rule-file kind name to its directive kind.
func KindOf(name string) (model.DirectiveKind, error) {
	switch name {
	case "must-stay":
		return model.MustStay, nil
	case "may-remove":
		return model.MayRemove, nil
	case "must-filter":
		return model.MustFilter, nil
	default:
		return 0, fmt.Errorf("unknown directive kind %q", name)
	}
}

// Syntax converts the comment configuration for the normalizer.
func (r *Rules) Syntax() scan.Syntax {
	return scan.Syntax{
		LineComments: r.Comment.Line,
		BlockOpen:    r.Comment.BlockOpen,
		BlockClose:   r.Comment.BlockClose,
	}
}
