package modes

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"gitbulk/internal/orchestrator"
	"gitbulk/internal/ui/input/types"
)

type NormalMode struct {
	keys KeyMap
}

func NewNormalMode(keys KeyMap) *NormalMode {
	return &NormalMode{keys: keys}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return []types.Action{types.QuitAction{}}, true
	case key.Matches(msg, k.Up):
		return navigate("up"), true
	case key.Matches(msg, k.Down):
		return navigate("down"), true
	case key.Matches(msg, k.PageUp):
		return navigate("pageup"), true
	case key.Matches(msg, k.PageDown):
		return navigate("pagedown"), true
	case key.Matches(msg, k.Home):
		return navigate("home"), true
	case key.Matches(msg, k.End):
		return navigate("end"), true
	case key.Matches(msg, k.Collapse):
		return navigate("left"), true
	case key.Matches(msg, k.Expand):
		return navigate("right"), true
	case key.Matches(msg, k.FilterDirty):
		return []types.Action{types.ToggleFilterAction{Filter: "dirty"}}, true
	case key.Matches(msg, k.FilterBehind):
		return []types.Action{types.ToggleFilterAction{Filter: "behind"}}, true
	case key.Matches(msg, k.FilterError):
		return []types.Action{types.ToggleFilterAction{Filter: "error"}}, true
	case key.Matches(msg, k.ClearFilters):
		return []types.Action{types.ClearFiltersAction{}}, true
	}

	for _, c := range orchestrator.Commands {
		if !key.Matches(msg, k.Commands[c.Type]) {
			continue
		}
		if !applies(c.Target, ctx) {
			return nil, false
		}
		if c.Type == orchestrator.CommandChangeBaseDir {
			return []types.Action{types.ChangeModeAction{Mode: types.ModeBaseDir}}, true
		}
		return []types.Action{types.CommandAction{Command: c.Type}}, true
	}
	return nil, false
}

// applies reports whether a command targeting target can run on the current row
func applies(target orchestrator.Target, ctx types.Context) bool {
	switch {
	case target&orchestrator.TargetTree != 0:
		return true
	case target&orchestrator.TargetBranch != 0:
		return ctx.IsOnBranch()
	case target&orchestrator.TargetRepository != 0:
		return ctx.IsOnRepository()
	}
	return false
}

func navigate(direction string) []types.Action {
	return []types.Action{types.NavigateAction{Direction: direction}}
}
