// Package marker scans comment lines for filtering directives.
package marker

import (
	"strings"

	"github.com/sokinpui/sift/internal/model"
	"github.com/sokinpui/sift/internal/rules"
)

// Classify returns the directives embedded in a snapshot's comments, in file
// order. A directive's scope is the contiguous run of non-blank non-comment
// lines that follows it; intervening comment lines are skipped so stacked
// markers annotate the same code run. A marker with nothing but blanks or
// end-of-file below it scopes the line it sits on. Comment text matching no
// rule is ignored. Classification is deterministic: the same snapshot always
// yields the same directive sequence.
func Classify(snap *model.FileSnapshot, r *rules.Rules) []model.Directive {
	if r == nil {
		r = rules.Default()
	}
	syntax := r.Syntax()

	var dirs []model.Directive
	for _, line := range snap.Lines {
		if !line.IsComment || line.IsBlank {
			continue
		}
		kind, text, ok := match(line.Raw, r, syntax.LineComments)
		if !ok {
			continue
		}
		start, end := scopeOf(snap, line.Index)
		dirs = append(dirs, model.Directive{
			Kind:        kind,
			MarkerIndex: line.Index,
			ScopeStart:  start,
			ScopeEnd:    end,
			Text:        text,
		})
	}
	return dirs
}

// match tests a comment line against the marker rules, first rule wins.
func match(raw string, r *rules.Rules, lineComments []string) (model.DirectiveKind, string, bool) {
	text := commentBody(raw, lineComments)
	folded := strings.ToLower(text)

	for _, m := range r.Markers {
		pattern := strings.ToLower(m.Pattern)
		var hit bool
		switch m.Mode {
		case rules.MatchLine:
			hit = strings.TrimRight(folded, "!.") == pattern
		case rules.MatchWord:
			hit = containsWord(folded, pattern)
		default:
			hit = strings.Contains(folded, pattern)
		}
		if hit {
			kind, err := rules.KindOf(m.Kind)
			if err != nil {
				continue
			}
			return kind, text, true
		}
	}
	return 0, "", false
}

// commentBody strips the leading comment token and surrounding whitespace.
func commentBody(raw string, lineComments []string) string {
	text := strings.TrimSpace(raw)
	for _, tok := range lineComments {
		if strings.HasPrefix(text, tok) {
			text = strings.TrimSpace(strings.TrimPrefix(text, tok))
			break
		}
	}
	return text
}

func containsWord(text, word string) bool {
	for _, f := range strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	}) {
		if f == word {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return r == '-' || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// scopeOf finds the code run a marker annotates. Comments below the marker
// are skipped, a blank line or end-of-file before any code makes the marker
// self-scoped, and the run ends at the first blank or comment line.
func scopeOf(snap *model.FileSnapshot, markerIndex int) (int, int) {
	i := markerIndex + 1
	for i < snap.Len() && snap.Lines[i].IsComment && !snap.Lines[i].IsBlank {
		i++
	}
	if i >= snap.Len() || snap.Lines[i].IsBlank {
		return markerIndex, markerIndex
	}

	start := i
	for i < snap.Len() && !snap.Lines[i].IsBlank && !snap.Lines[i].IsComment {
		i++
	}
	return start, i - 1
}
