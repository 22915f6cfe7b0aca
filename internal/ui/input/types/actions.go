package types

import "gitbulk/internal/orchestrator"

// NavigateAction moves the selection
type NavigateAction struct {
	Direction string // "up", "down", "pageup", "pagedown", "home", "end", "left", "right"
}

func (a NavigateAction) Type() string { return "navigate" }

// CommandAction runs an entry of the command catalogue
type CommandAction struct {
	Command orchestrator.CommandType
}

func (a CommandAction) Type() string { return "command" }

// ToggleFilterAction flips one filter predicate
type ToggleFilterAction struct {
	Filter string // "dirty", "behind", "error"
}

func (a ToggleFilterAction) Type() string { return "toggle_filter" }

// ClearFiltersAction turns every predicate off
type ClearFiltersAction struct{}

func (a ClearFiltersAction) Type() string { return "clear_filters" }

// ChangeModeAction switches the input mode
type ChangeModeAction struct {
	Mode Mode
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// SubmitTextAction carries the text entered in a text mode
type SubmitTextAction struct {
	Text string
	Mode Mode // Which mode submitted the text
}

func (a SubmitTextAction) Type() string { return "submit_text" }

type CancelTextAction struct{}

func (a CancelTextAction) Type() string { return "cancel_text" }

type QuitAction struct{}

func (a QuitAction) Type() string { return "quit" }
