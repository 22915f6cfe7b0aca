package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"gitbulk/internal/domain"
	"gitbulk/internal/ui/logic"
)

// LogPaneHeight is the number of log lines shown when the log pane is open
const LogPaneHeight = 8

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width  int
	Height int

	Rows           []logic.Row
	Expanded       map[string]bool
	SelectedIndex  int
	ViewportOffset int
	ViewportHeight int
	Loaded         bool

	Root    string
	Count   int
	Filters domain.Filters

	Processing    bool
	ProcessingFor string
	Spinner       string
	StatusMessage string

	ShowLog  bool
	LogLines []string

	// InputPrompt is set while a text mode is active
	InputPrompt string
	TextInput   string

	HelpModel help.Model
	Keys      help.KeyMap
}

// Renderer handles all view rendering
type Renderer struct {
	styles     *Styles
	repoRender *RepositoryRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:     styles,
		repoRender: NewRepositoryRenderer(styles),
	}
}

// Styles exposes the style set
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// ChromeHeight is the number of lines around the tree for the given state
func ChromeHeight(showLog bool) int {
	// title, filters, blank line, status line, help line
	h := 5
	if showLog {
		h += LogPaneHeight + 2 // border
	}
	return h
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	width := state.Width
	if width <= 0 {
		width = 80
	}

	content := &strings.Builder{}
	content.WriteString(r.renderTitle(state, width))
	content.WriteString("\n")
	content.WriteString(r.renderFilters(state.Filters))
	content.WriteString("\n\n")

	content.WriteString(r.renderTree(state, width-2))

	if state.ShowLog {
		content.WriteString("\n")
		content.WriteString(r.renderLog(state.LogLines, width-2))
	}

	content.WriteString("\n")
	content.WriteString(r.renderStatus(state))
	content.WriteString("\n")
	content.WriteString(state.HelpModel.View(state.Keys))

	main := r.styles.Main.MaxHeight(state.Height).Render(content.String())

	if state.InputPrompt != "" {
		popup := r.styles.Popup.Render(state.InputPrompt + "\n\n" + state.TextInput + "\n\n" + r.styles.Help.Render("enter: confirm • esc: cancel"))
		return lipgloss.Place(width, state.Height, lipgloss.Center, lipgloss.Center, popup)
	}
	return main
}

func (r *Renderer) renderTitle(state ViewState, width int) string {
	left := r.styles.Title.Render("gitbulk") + " " + r.styles.Root.Render(state.Root)

	right := ""
	if state.Processing {
		right = r.styles.Processing.Render(fmt.Sprintf(" %s %s ", state.ProcessingFor, state.Spinner))
	}

	padding := width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return left + strings.Repeat(" ", padding) + right
}

func (r *Renderer) renderFilters(f domain.Filters) string {
	box := func(on bool, label string) string {
		if on {
			return r.styles.Filter.Render("[x] " + label)
		}
		return r.styles.FilterOff.Render("[ ] " + label)
	}
	return "Filter by: " + strings.Join([]string{
		box(f.Dirty, "Dirty (*)"),
		box(f.Behind, "Behind (↓)"),
		box(f.Error, "Error"),
	}, "  ")
}

func (r *Renderer) renderTree(state ViewState, width int) string {
	height := state.ViewportHeight
	if height < 1 {
		height = 1
	}

	lines := make([]string, 0, height)
	switch {
	case !state.Loaded:
		lines = append(lines, r.styles.Dim.Render("Looking for repositories..."))
	case len(state.Rows) == 0 && state.Count == 0:
		lines = append(lines, r.styles.Dim.Render("No repositories found. Press ^O to change the base directory."))
	case len(state.Rows) == 0:
		lines = append(lines, r.styles.Dim.Render("No repository matches the active filters."))
	default:
		end := state.ViewportOffset + height
		if end > len(state.Rows) {
			end = len(state.Rows)
		}
		for i := state.ViewportOffset; i < end; i++ {
			row := state.Rows[i]
			expanded := row.Kind == logic.RowRepository && state.Expanded[row.Node.Path()]
			lines = append(lines, r.repoRender.RenderRow(row, expanded, i == state.SelectedIndex, width))
		}
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (r *Renderer) renderLog(all []string, width int) string {
	start := len(all) - LogPaneHeight
	if start < 0 {
		start = 0
	}

	lines := make([]string, 0, LogPaneHeight)
	for _, line := range all[start:] {
		switch {
		case strings.Contains(line, " - Error: "):
			line = r.styles.LogError.Render(line)
		case strings.Contains(line, " - Warning: "), strings.Contains(line, "No repositories found!"):
			line = r.styles.LogWarning.Render(line)
		}
		lines = append(lines, line)
	}
	for len(lines) < LogPaneHeight {
		lines = append(lines, "")
	}

	return r.styles.LogBox.Width(width - 2).MaxHeight(LogPaneHeight + 2).Render(strings.Join(lines, "\n"))
}

func (r *Renderer) renderStatus(state ViewState) string {
	if state.StatusMessage != "" {
		return r.styles.Dim.Render(state.StatusMessage)
	}
	if !state.Loaded {
		return ""
	}
	msg := fmt.Sprintf("%d repositories", state.Count)
	if len(state.Rows) > 0 && state.ViewportOffset+state.ViewportHeight < len(state.Rows) {
		msg += "  ↓ more below"
	}
	return r.styles.Scroll.Render(msg)
}
