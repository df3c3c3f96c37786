package source

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock is a fenced code block pulled from a markdown document.
type CodeBlock struct {
	// Hint is the content of the paragraph immediately preceding the block.
	Hint string
	// Lang is the language identifier of the block (e.g., "c").
	Lang string
	// Content is the raw text inside the block.
	Content string
}

// VariantPair is a source/target input pair extracted from markdown.
type VariantPair struct {
	SourceName    string
	SourceContent string
	TargetName    string
	TargetContent string
}

// ExtractCodeBlocks walks a markdown AST and collects all fenced code blocks
// together with the preceding paragraph, which is treated as a hint.
func ExtractCodeBlocks(source []byte) ([]CodeBlock, error) {
	var blocks []CodeBlock
	parser := goldmark.DefaultParser()
	root := parser.Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		fencedCodeBlock, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var block CodeBlock
		if fencedCodeBlock.Info != nil {
			block.Lang = string(fencedCodeBlock.Info.Text(source))
		}

		var content bytes.Buffer
		lines := fencedCodeBlock.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(source))
		}
		block.Content = content.String()

		if prev := fencedCodeBlock.PreviousSibling(); prev != nil {
			if p, ok := prev.(*ast.Paragraph); ok {
				block.Hint = strings.TrimSpace(string(p.Text(source)))
			}
		}

		blocks = append(blocks, block)
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}

	return blocks, nil
}

var nameInHintRegex = regexp.MustCompile("`([^`\n]+)`")

// VariantsFromMarkdown extracts a comparison pair from a markdown document:
// the first fenced code block is the source variant, the second the target.
// A backticked name in the hint paragraph labels the block, otherwise a
// positional name is used.
func VariantsFromMarkdown(doc string) (*VariantPair, error) {
	blocks, err := ExtractCodeBlocks([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse markdown: %w", err)
	}
	if len(blocks) < 2 {
		return nil, fmt.Errorf("expected two fenced code blocks, found %d", len(blocks))
	}

	pair := &VariantPair{
		SourceName:    nameFromHint(blocks[0].Hint, "source"),
		SourceContent: blocks[0].Content,
		TargetName:    nameFromHint(blocks[1].Hint, "target"),
		TargetContent: blocks[1].Content,
	}
	return pair, nil
}

func nameFromHint(hint, fallback string) string {
	if match := nameInHintRegex.FindStringSubmatch(hint); len(match) > 1 {
		name := strings.TrimSpace(match[1])
		if name != "" && !strings.Contains(name, " ") {
			return name
		}
	}
	return fallback
}
