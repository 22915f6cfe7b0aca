package modes

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"gitbulk/internal/ui/input/types"
)

// TextInputMode is a base for modes that accept text input
type TextInputMode struct {
	mode      types.Mode
	name      string
	textInput *textinput.Model
	initial   func(ctx types.Context) string
}

func NewTextInputMode(mode types.Mode, name string, ti *textinput.Model, initial func(ctx types.Context) string) TextInputMode {
	return TextInputMode{
		mode:      mode,
		name:      name,
		textInput: ti,
		initial:   initial,
	}
}

// NewBaseDirMode asks for a new root directory, prefilled with the current one
func NewBaseDirMode(ti *textinput.Model) TextInputMode {
	return NewTextInputMode(types.ModeBaseDir, "base-dir", ti, func(ctx types.Context) string {
		return ctx.BaseDir()
	})
}

func (m TextInputMode) Name() string {
	return m.name
}

func (m TextInputMode) Enter(ctx types.Context) []types.Action {
	if m.textInput != nil {
		m.textInput.Reset()
		m.textInput.Prompt = "" // rendered by the popup
		if m.initial != nil {
			m.textInput.SetValue(m.initial(ctx))
			m.textInput.CursorEnd()
		}
		m.textInput.Focus()
	}
	return nil
}

func (m TextInputMode) Exit(ctx types.Context) []types.Action {
	if m.textInput != nil {
		m.textInput.Blur()
		m.textInput.Reset()
	}
	return nil
}

func (m TextInputMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.String() {
	case "ctrl+c":
		return []types.Action{types.QuitAction{}}, true
	case "esc":
		return []types.Action{
			types.CancelTextAction{},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	case "enter":
		text := ""
		if m.textInput != nil {
			text = m.textInput.Value()
		}
		return []types.Action{
			types.SubmitTextAction{Text: text, Mode: m.mode},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	default:
		// the handler forwards it to the text input
		return nil, false
	}
}
