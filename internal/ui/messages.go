package ui

import (
	"gitbulk/internal/domain"
	"gitbulk/internal/eventbus"
	"gitbulk/internal/orchestrator"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// logChangedMsg signals that the rendered log lines changed
type logChangedMsg struct{}

// commandDoneMsg reports the end of a dispatched command
type commandDoneMsg struct {
	command orchestrator.CommandType
	err     error
}

// branchesMsg carries freshly computed branch rows of a repository
type branchesMsg struct {
	path     string
	branches []domain.BranchNode
	err      error
}

// changesMsg carries the uncommitted changes of a repository
type changesMsg struct {
	node  *domain.RepositoryNode
	items []domain.ChangedItem
	err   error
}

// pagerMsg contains the result of a pager run
type pagerMsg struct {
	err error
}

// clearStatusMsg clears the status line
type clearStatusMsg struct{}
