// Package scan turns raw file content into an immutable line snapshot.
package scan

import (
	"strings"
	"unicode/utf8"

	"github.com/sokinpui/sift/internal/model"
)

// Syntax describes the comment tokens recognized during normalization.
type Syntax struct {
	LineComments []string
	BlockOpen    string
	BlockClose   string
}

// DefaultSyntax matches C-family sources, which is what the variant fixtures use.
func DefaultSyntax() Syntax {
	return Syntax{
		LineComments: []string{"//"},
		BlockOpen:    "/*",
		BlockClose:   "*/",
	}
}

// Normalize splits content into logical lines, classifying comments and
// blanks. The raw text of every line is preserved verbatim, indentation
// included. It fails with a MalformedInputError on invalid UTF-8 or
// unbalanced block comments.
func Normalize(name, content string, syn Syntax) (*model.FileSnapshot, error) {
	if !utf8.ValidString(content) {
		return nil, &model.MalformedInputError{
			File:   name,
			Line:   firstInvalidLine(content),
			Reason: "content is not valid UTF-8",
		}
	}

	raw := strings.Split(content, "\n")
	// A trailing newline produces one empty pseudo-line; drop it.
	if n := len(raw); n > 0 && raw[n-1] == "" {
		raw = raw[:n-1]
	}

	snap := &model.FileSnapshot{Name: name, Lines: make([]model.LogicalLine, 0, len(raw))}
	inBlock := false
	blockStart := 0

	for i, text := range raw {
		trimmed := strings.TrimSpace(text)

		line := model.LogicalLine{Index: i, Raw: text}
		if inBlock {
			line.IsComment = true
			line.IsBlank = trimmed == ""
		} else {
			line.IsComment = startsComment(trimmed, syn)
			line.IsBlank = isBlank(trimmed, syn)
		}

		wasInBlock := inBlock
		var err error
		inBlock, err = trackBlock(name, i, trimmed, syn, inBlock)
		if err != nil {
			return nil, err
		}
		if inBlock && !wasInBlock {
			blockStart = i
		}

		snap.Lines = append(snap.Lines, line)
	}

	if inBlock {
		return nil, &model.MalformedInputError{
			File:   name,
			Line:   blockStart,
			Reason: "unterminated block comment",
		}
	}
	return snap, nil
}

func startsComment(trimmed string, syn Syntax) bool {
	for _, tok := range syn.LineComments {
		if strings.HasPrefix(trimmed, tok) {
			return true
		}
	}
	return syn.BlockOpen != "" && strings.HasPrefix(trimmed, syn.BlockOpen)
}

// isBlank covers whitespace-only lines and bare comment tokens with no
// remaining content ("//" on its own line).
func isBlank(trimmed string, syn Syntax) bool {
	if trimmed == "" {
		return true
	}
	for _, tok := range syn.LineComments {
		if trimmed == tok {
			return true
		}
	}
	return false
}

// trackBlock advances the block-comment state across one line and rejects a
// close token that has no matching open.
func trackBlock(name string, index int, trimmed string, syn Syntax, inBlock bool) (bool, error) {
	if syn.BlockOpen == "" || syn.BlockClose == "" {
		return false, nil
	}
	rest := trimmed
	for {
		if inBlock {
			at := strings.Index(rest, syn.BlockClose)
			if at < 0 {
				return true, nil
			}
			inBlock = false
			rest = rest[at+len(syn.BlockClose):]
			continue
		}
		open := strings.Index(rest, syn.BlockOpen)
		stray := strings.Index(rest, syn.BlockClose)
		// A line-comment token outside a block comments out the remainder of
		// the line, so block tokens after it do not count.
		if lc := lineCommentIndex(rest, syn); lc >= 0 && (open < 0 || lc < open) && (stray < 0 || lc < stray) {
			return false, nil
		}
		if stray >= 0 && (open < 0 || stray < open) {
			return false, &model.MalformedInputError{
				File:   name,
				Line:   index,
				Reason: "block comment close without matching open",
			}
		}
		if open < 0 {
			return false, nil
		}
		inBlock = true
		rest = rest[open+len(syn.BlockOpen):]
	}
}

// lineCommentIndex returns the earliest position of any line-comment token in
// s, or -1.
func lineCommentIndex(s string, syn Syntax) int {
	at := -1
	for _, tok := range syn.LineComments {
		if i := strings.Index(s, tok); i >= 0 && (at < 0 || i < at) {
			at = i
		}
	}
	return at
}

func firstInvalidLine(content string) int {
	for i, line := range strings.Split(content, "\n") {
		if !utf8.ValidString(line) {
			return i
		}
	}
	return -1
}
