package handlers

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"gitbulk/internal/domain"
	"gitbulk/internal/eventbus"
	"gitbulk/internal/ui/state"
)

// Hooks are the model callbacks the event handler drives
type Hooks struct {
	// Lookup finds a node of the canonical list by path
	Lookup func(path string) *domain.RepositoryNode
	// LoadBranches returns a command computing the branch rows of node
	LoadBranches func(node *domain.RepositoryNode) tea.Cmd
	// Rebuild recomputes the displayed rows
	Rebuild func()
	// StartSpinner returns the command animating the processing label
	StartSpinner func() tea.Cmd
}

// EventHandler handles domain events and updates state
type EventHandler struct {
	state *state.AppState
	hooks Hooks
}

// NewEventHandler creates a new event handler
func NewEventHandler(appState *state.AppState, hooks Hooks) *EventHandler {
	return &EventHandler{state: appState, hooks: hooks}
}

// HandleEvent processes domain events and returns any necessary commands
func (h *EventHandler) HandleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case domain.ScanStartedEvent:
		h.state.StatusMessage = fmt.Sprintf("Scanning %s...", e.Root)

	case domain.ScanCompletedEvent:
		h.state.StatusMessage = ""

	case domain.TreeLoadedEvent:
		h.state.ResetTree()
		h.state.Loaded = true
		h.state.Root = e.Root
		h.state.Count = e.Count
		h.hooks.Rebuild()

	case domain.NodeUpdatedEvent:
		h.hooks.Rebuild()
		if !h.state.Expanded[e.Path] {
			return nil
		}
		// branches are read once the node is released
		node := h.hooks.Lookup(e.Path)
		if node == nil || node.IsUpdating() {
			return nil
		}
		return h.hooks.LoadBranches(node)

	case domain.FiltersChangedEvent:
		h.state.Filters = e.Filters
		h.hooks.Rebuild()

	case domain.ProcessingStartedEvent:
		h.state.Processing = true
		h.state.ProcessingFor = e.Description
		h.state.StatusMessage = ""
		return h.hooks.StartSpinner()

	case domain.ProcessingFinishedEvent:
		h.state.Processing = false
		h.state.ProcessingFor = ""
		h.hooks.Rebuild()

	case domain.ErrorEvent:
		h.state.StatusMessage = fmt.Sprintf("Error: %s", e.Message)
	}

	return nil
}
