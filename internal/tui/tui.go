package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/sift/internal/model"
)

// --- Styles ---
var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")) // Mauve
	keepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))            // Green
	removeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))           // Red
	filteredStyle = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
)

// Comparer is the slice of the application the viewer drives.
type Comparer interface {
	Execute() ([]*model.Result, error)
}

// --- Messages ---
type resultsMsg struct {
	results []*model.Result
}

type errorMsg struct{ err error }

func (e errorMsg) Error() string { return e.err.Error() }

// --- Model ---
type Model struct {
	app      Comparer
	spinner  spinner.Model
	viewport viewport.Model
	state    state
	results  []*model.Result
	err      error
	ready    bool
}

type state int

const (
	stateComparing state = iota
	stateBrowsing
	stateError
)

func New(app Comparer) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		app:     app,
		spinner: s,
		state:   stateComparing,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runComparison)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		if m.state == stateBrowsing {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		headerHeight := 2
		m.viewport = viewport.New(msg.Width, msg.Height-headerHeight)
		m.ready = true
		if m.state == stateBrowsing {
			m.viewport.SetContent(m.renderDecisions())
		}
		return m, nil

	case resultsMsg:
		m.state = stateBrowsing
		m.results = msg.results
		if m.ready {
			m.viewport.SetContent(m.renderDecisions())
		}
		return m, nil

	case errorMsg:
		m.state = stateError
		m.err = msg
		return m, tea.Quit

	default:
		var cmd tea.Cmd
		if m.state == stateComparing {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	switch m.state {
	case stateComparing:
		return fmt.Sprintf("%s Comparing...", m.spinner.View())
	case stateError:
		return errorStyle.Render("Error: ", m.err.Error())
	case stateBrowsing:
		if !m.ready {
			return "Loading..."
		}
		header := headerStyle.Render("Decisions") + faintStyle.Render("  (j/k to scroll, q to quit)") + "\n\n"
		return header + m.viewport.View()
	default:
		return ""
	}
}

func (m *Model) renderDecisions() string {
	var b strings.Builder

	if len(m.results) == 0 {
		b.WriteString(faintStyle.Render("Nothing to compare."))
		return b.String()
	}

	for _, res := range m.results {
		b.WriteString(headerStyle.Render(fmt.Sprintf("%s -> %s", res.SourcePath, res.TargetPath)))
		b.WriteString("\n")
		for _, d := range res.Decisions {
			line := fmt.Sprintf("  %-6s %4d  %-8s  %s", d.Variant, d.LineIndex, d.Verdict, d.Provenance)
			switch d.Verdict {
			case model.Keep.String():
				b.WriteString(keepStyle.Render(line))
			case model.Remove.String():
				b.WriteString(removeStyle.Render(line))
			default:
				b.WriteString(filteredStyle.Render(line))
			}
			b.WriteString("\n")
		}
		for _, warn := range res.Warnings {
			b.WriteString(errorStyle.Render("  warning: " + warn))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) runComparison() tea.Msg {
	results, err := m.app.Execute()
	if err != nil {
		return errorMsg{err}
	}
	return resultsMsg{results: results}
}
