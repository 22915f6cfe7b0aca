package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gitbulk/internal/domain"
	"gitbulk/internal/ui/logic"
)

// RepositoryRenderer renders repository and branch rows
type RepositoryRenderer struct {
	styles *Styles
}

// NewRepositoryRenderer creates a new repository renderer
func NewRepositoryRenderer(styles *Styles) *RepositoryRenderer {
	return &RepositoryRenderer{styles: styles}
}

// RenderRow renders one tree row
func (r *RepositoryRenderer) RenderRow(row logic.Row, expanded, selected bool, width int) string {
	var line string
	if row.Kind == logic.RowBranch {
		line = r.renderBranch(row.Branch)
	} else {
		line = r.renderRepository(row.Node, expanded)
	}

	if selected {
		pad := width - lipgloss.Width(line)
		if pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		return r.styles.SelectionBg.Render(line)
	}
	return line
}

func (r *RepositoryRenderer) renderRepository(node *domain.RepositoryNode, expanded bool) string {
	marker := "▸ "
	if expanded {
		marker = "▾ "
	}
	return marker + r.statusStyle(node).Render(node.Text())
}

func (r *RepositoryRenderer) statusStyle(node *domain.RepositoryNode) lipgloss.Style {
	switch {
	case node.HasError():
		return r.styles.StatusError
	case node.IsUpdating():
		return r.styles.StatusUpdating
	case node.IsDirty():
		return r.styles.StatusDirty
	case node.IsHeadBehind():
		return r.styles.StatusBehind
	}
	return r.styles.StatusClean
}

func (r *RepositoryRenderer) renderBranch(b domain.BranchNode) string {
	style := lipgloss.NewStyle()
	if b.IsCurrentHead {
		style = style.Foreground(lipgloss.Color(GetBranchColor(b.FriendlyName))).Bold(true)
	} else if b.IsGone {
		style = r.styles.Dim
	}
	return "    " + style.Render(b.Text())
}
