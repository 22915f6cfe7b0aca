package state

import (
	"gitbulk/internal/domain"
)

// AppState contains the presentation state. Repository data itself lives in
// the orchestrator's node list.
type AppState struct {
	// Expanded repository rows by path
	Expanded map[string]bool
	// Branch rows last computed per repository path
	Branches map[string][]domain.BranchNode

	// Filters mirrors the orchestrator's active predicates
	Filters domain.Filters

	// UI state
	Loaded        bool // a load finished at least once
	ShowLog       bool
	Processing    bool
	ProcessingFor string // description of the running command
	StatusMessage string
	Root          string
	Count         int
}

// NewAppState creates a new application state
func NewAppState() *AppState {
	return &AppState{
		Expanded: make(map[string]bool),
		Branches: make(map[string][]domain.BranchNode),
	}
}

// Toggle flips the expansion of a repository row and reports the new state
func (s *AppState) Toggle(path string) bool {
	if s.Expanded[path] {
		delete(s.Expanded, path)
		return false
	}
	s.Expanded[path] = true
	return true
}

// ExpandAll expands every listed repository
func (s *AppState) ExpandAll(nodes []*domain.RepositoryNode) {
	for _, n := range nodes {
		s.Expanded[n.Path()] = true
	}
}

// CollapseAll collapses every repository
func (s *AppState) CollapseAll() {
	clear(s.Expanded)
}

// SetBranches stores freshly computed branch rows
func (s *AppState) SetBranches(path string, branches []domain.BranchNode) {
	s.Branches[path] = branches
}

// ResetTree forgets per-repository state after the node list was replaced
func (s *AppState) ResetTree() {
	clear(s.Expanded)
	clear(s.Branches)
}
