package modes

import (
	"github.com/charmbracelet/bubbles/key"

	"gitbulk/internal/orchestrator"
)

// KeyMap holds every key binding of the repository window
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Collapse key.Binding
	Expand   key.Binding

	FilterDirty  key.Binding
	FilterBehind key.Binding
	FilterError  key.Binding
	ClearFilters key.Binding

	Quit key.Binding

	Commands map[orchestrator.CommandType]key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	cmd := func(c orchestrator.CommandType, help string, keys ...string) key.Binding {
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, c.String()))
	}

	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "Move up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "Move down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("PgUp", "Page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("PgDn", "Page down")),
		Home:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("Home/g", "Go to top")),
		End:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("End/G", "Go to bottom")),
		Collapse: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "Collapse repository")),
		Expand:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "Expand repository")),

		FilterDirty:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "Filter by dirty (*)")),
		FilterBehind: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "Filter by behind (↓)")),
		FilterError:  key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "Filter by error")),
		ClearFilters: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "Clear filters")),

		Quit: key.NewBinding(key.WithKeys("q", "ctrl+q", "ctrl+c"), key.WithHelp("^Q", "Quit")),

		Commands: map[orchestrator.CommandType]key.Binding{
			orchestrator.CommandCopyPath:       cmd(orchestrator.CommandCopyPath, "^Y", "ctrl+y"),
			orchestrator.CommandCheckoutBranch: cmd(orchestrator.CommandCheckoutBranch, "c", "c"),
			orchestrator.CommandResetBranch:    cmd(orchestrator.CommandResetBranch, "r", "r"),
			orchestrator.CommandDeleteBranch:   cmd(orchestrator.CommandDeleteBranch, "d", "d"),
			orchestrator.CommandStatus:         cmd(orchestrator.CommandStatus, "s", "s"),
			orchestrator.CommandFetch:          cmd(orchestrator.CommandFetch, "f", "f"),
			orchestrator.CommandPull:           cmd(orchestrator.CommandPull, "p", "p"),
			orchestrator.CommandUpdate:         cmd(orchestrator.CommandUpdate, "y", "y"),
			orchestrator.CommandViewChanges:    cmd(orchestrator.CommandViewChanges, "v", "v"),
			orchestrator.CommandToggleExpand:   cmd(orchestrator.CommandToggleExpand, "e/enter", "e", "enter"),
			orchestrator.CommandStatusAll:      cmd(orchestrator.CommandStatusAll, "S", "S"),
			orchestrator.CommandFetchAll:       cmd(orchestrator.CommandFetchAll, "F", "F"),
			orchestrator.CommandPullAll:        cmd(orchestrator.CommandPullAll, "P", "P"),
			orchestrator.CommandUpdateAll:      cmd(orchestrator.CommandUpdateAll, "Y", "Y"),
			orchestrator.CommandLoad:           cmd(orchestrator.CommandLoad, "F5", "f5"),
			orchestrator.CommandExpandAll:      cmd(orchestrator.CommandExpandAll, "^E", "ctrl+e"),
			// terminals cannot tell ctrl+shift+e from ctrl+e
			orchestrator.CommandCollapseAll:   cmd(orchestrator.CommandCollapseAll, "E", "E"),
			orchestrator.CommandToggleLog:     cmd(orchestrator.CommandToggleLog, "^L", "ctrl+l"),
			orchestrator.CommandResetLog:      cmd(orchestrator.CommandResetLog, "^J", "ctrl+j"),
			orchestrator.CommandChangeBaseDir: cmd(orchestrator.CommandChangeBaseDir, "^O", "ctrl+o"),
			orchestrator.CommandHelp:          cmd(orchestrator.CommandHelp, "^H/?", "ctrl+h", "?"),
		},
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Commands[orchestrator.CommandHelp]}
}

// FullHelp implements help.KeyMap, one column per command target
func (k KeyMap) FullHelp() [][]key.Binding {
	columns := map[orchestrator.Target][]key.Binding{}
	var order []orchestrator.Target
	for _, c := range orchestrator.Commands {
		if _, seen := columns[c.Target]; !seen {
			order = append(order, c.Target)
		}
		columns[c.Target] = append(columns[c.Target], k.Commands[c.Type])
	}

	out := make([][]key.Binding, 0, len(order)+1)
	for _, t := range order {
		out = append(out, columns[t])
	}
	out = append(out, []key.Binding{k.FilterDirty, k.FilterBehind, k.FilterError, k.ClearFilters, k.Quit})
	return out
}
