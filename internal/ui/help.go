package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"gitbulk/internal/domain"
	"gitbulk/internal/orchestrator"
	"gitbulk/internal/ui/input/modes"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginTop(1)

	keyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	descStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

// RenderHelpContent lists every command of the catalogue with its key, grouped by target
func RenderHelpContent(keys modes.KeyMap) string {
	var help strings.Builder

	help.WriteString(titleStyle.Render("gitbulk Help"))
	help.WriteString("\n")

	sections := []struct {
		title  string
		target orchestrator.Target
	}{
		{"Branch", orchestrator.TargetBranch},
		{"Repository", orchestrator.TargetRepository},
		{"All repositories", orchestrator.TargetTree},
		{"General", orchestrator.TargetTree | orchestrator.TargetLog},
	}

	for _, section := range sections {
		help.WriteString(sectionStyle.Render(section.title))
		help.WriteString("\n")
		for _, c := range orchestrator.Commands {
			if c.Target != section.target {
				continue
			}
			writeKey(&help, keys.Commands[c.Type].Help().Key, c.Description)
		}
	}

	help.WriteString(sectionStyle.Render("Navigation & filters"))
	help.WriteString("\n")
	for _, binding := range []key.Binding{
		keys.Up, keys.Down, keys.PageUp, keys.PageDown, keys.Home, keys.End, keys.Collapse, keys.Expand,
		keys.FilterDirty, keys.FilterBehind, keys.FilterError, keys.ClearFilters, keys.Quit,
	} {
		writeKey(&help, binding.Help().Key, binding.Help().Desc)
	}

	return help.String()
}

func writeKey(b *strings.Builder, k, desc string) {
	fmt.Fprintf(b, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-8s", k)), descStyle.Render(desc))
}

// RenderChanges renders the changed paths of a repository followed by their patches
func RenderChanges(name string, items []domain.ChangedItem) string {
	var out strings.Builder

	out.WriteString(titleStyle.Render(fmt.Sprintf("Changes in %s", name)))
	out.WriteString("\n")
	for _, item := range items {
		out.WriteString("  ")
		out.WriteString(item.String())
		out.WriteString("\n")
	}

	for _, item := range items {
		if item.Patch == "" {
			continue
		}
		out.WriteString("\n")
		out.WriteString(sectionStyle.Render(item.String()))
		out.WriteString("\n")
		for _, line := range strings.Split(strings.TrimRight(item.Patch, "\n"), "\n") {
			out.WriteString(colorPatchLine(line))
			out.WriteString("\n")
		}
	}
	return out.String()
}

func colorPatchLine(line string) string {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return line
	case strings.HasPrefix(line, "@@"):
		return hunkStyle.Render(line)
	case strings.HasPrefix(line, "+"):
		return addedStyle.Render(line)
	case strings.HasPrefix(line, "-"):
		return removedStyle.Render(line)
	}
	return line
}

// PagerOps shows long content in the ov pager
type PagerOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewPagerOps creates a new pager operations instance
func NewPagerOps(program *tea.Program) *PagerOps {
	return &PagerOps{program: program}
}

// Show hands the terminal to ov until the pager exits
func (p *PagerOps) Show(content string) error {
	if p == nil || p.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// let ov leave the alternate screen first
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
