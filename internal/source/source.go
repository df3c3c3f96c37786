package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/sokinpui/sift/internal/ui"
)

// Provider retrieves raw comparison input.
type Provider struct{}

// New creates a new Provider.
func New() *Provider {
	return &Provider{}
}

// ReadFile loads one variant file from disk.
func (p *Provider) ReadFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(content), nil
}

// GetDocument retrieves a markdown document from stdin (if piped) or the
// clipboard. Used by the --from-markdown input mode.
func (p *Provider) GetDocument() (string, error) {
	stat, _ := os.Stdin.Stat()
	isPiped := (stat.Mode() & os.ModeCharDevice) == 0

	if isPiped {
		ui.Header("--- Reading from stdin ---")
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(content), nil
	}

	ui.Header("--- Reading from clipboard ---")
	content, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read from clipboard: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		ui.Warning("Clipboard is empty. Nothing to compare.")
		return "", nil
	}
	return content, nil
}
