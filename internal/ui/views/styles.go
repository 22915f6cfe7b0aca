package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title          lipgloss.Style
	Root           lipgloss.Style
	Dim            lipgloss.Style
	Filter         lipgloss.Style
	FilterOff      lipgloss.Style
	LogBox         lipgloss.Style
	LogError       lipgloss.Style
	LogWarning     lipgloss.Style
	Popup          lipgloss.Style
	Help           lipgloss.Style
	Main           lipgloss.Style
	Scroll         lipgloss.Style
	Processing     lipgloss.Style
	SelectionBg    lipgloss.Style
	StatusError    lipgloss.Style
	StatusDirty    lipgloss.Style
	StatusBehind   lipgloss.Style
	StatusUpdating lipgloss.Style
	StatusClean    lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")),
		Root:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Dim:       lipgloss.NewStyle().Faint(true),
		Filter:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		FilterOff: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		LogBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		LogError:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		LogWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Popup: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(1, 2),
		Help:           lipgloss.NewStyle().Faint(true),
		Main:           lipgloss.NewStyle().Padding(0, 1),
		Scroll:         lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
		Processing:     lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")),
		SelectionBg:    lipgloss.NewStyle().Background(lipgloss.Color("238")),
		StatusError:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		StatusDirty:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // yellow
		StatusBehind:   lipgloss.NewStyle().Foreground(lipgloss.Color("33")),  // blue
		StatusUpdating: lipgloss.NewStyle().Foreground(lipgloss.Color("51")),  // cyan
		StatusClean:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}

// GetBranchColor returns the appropriate color for a git branch
func GetBranchColor(branchName string) string {
	switch branchName {
	case "main", "master":
		return "78" // green
	case "develop", "dev":
		return "33" // blue
	default:
		if branchName == "" || branchName == "HEAD" {
			return "203" // red
		}
		return "214" // yellow for feature branches
	}
}
