package handlers_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"gitbulk/internal/domain"
	"gitbulk/internal/testutil"
	"gitbulk/internal/ui/handlers"
	"gitbulk/internal/ui/state"
)

type spy struct {
	rebuilds int
	loaded   []string
	spinning int
	nodes    map[string]*domain.RepositoryNode
}

func (s *spy) hooks() handlers.Hooks {
	return handlers.Hooks{
		Lookup: func(path string) *domain.RepositoryNode { return s.nodes[path] },
		LoadBranches: func(node *domain.RepositoryNode) tea.Cmd {
			s.loaded = append(s.loaded, node.Path())
			return func() tea.Msg { return nil }
		},
		Rebuild: func() { s.rebuilds++ },
		StartSpinner: func() tea.Cmd {
			s.spinning++
			return func() tea.Msg { return nil }
		},
	}
}

func newHandler() (*handlers.EventHandler, *state.AppState, *spy) {
	s := &spy{nodes: map[string]*domain.RepositoryNode{}}
	st := state.NewAppState()
	return handlers.NewEventHandler(st, s.hooks()), st, s
}

func TestHandleEvent(t *testing.T) {
	t.Parallel()

	t.Run("should reset the tree state when a tree is loaded", func(t *testing.T) {
		t.Parallel()

		// given
		h, st, s := newHandler()
		st.Expanded["/old"] = true
		st.Branches["/old"] = []domain.BranchNode{{FriendlyName: "main"}}

		// when
		h.HandleEvent(domain.TreeLoadedEvent{Root: "/src", Count: 3})

		// then
		assert.Empty(t, st.Expanded)
		assert.Empty(t, st.Branches)
		assert.True(t, st.Loaded)
		assert.Equal(t, "/src", st.Root)
		assert.Equal(t, 3, st.Count)
		assert.Equal(t, 1, s.rebuilds)
	})

	t.Run("should reload branches of an expanded node once it is released", func(t *testing.T) {
		t.Parallel()

		// given
		h, st, s := newHandler()
		node := domain.NewRepositoryNode(testutil.NewFakeRepository("/src/alpha"))
		s.nodes[node.Path()] = node
		st.Expanded[node.Path()] = true

		// when: still updating
		node.TryAcquire()
		cmd := h.HandleEvent(domain.NodeUpdatedEvent{Path: node.Path()})

		// then
		assert.Nil(t, cmd)
		assert.Empty(t, s.loaded)

		// when: released
		node.Release()
		cmd = h.HandleEvent(domain.NodeUpdatedEvent{Path: node.Path()})

		// then
		assert.NotNil(t, cmd)
		assert.Equal(t, []string{"/src/alpha"}, s.loaded)
		assert.Equal(t, 2, s.rebuilds)
	})

	t.Run("should not load branches of a collapsed node", func(t *testing.T) {
		t.Parallel()

		h, _, s := newHandler()
		s.nodes["/src/alpha"] = domain.NewRepositoryNode(testutil.NewFakeRepository("/src/alpha"))

		cmd := h.HandleEvent(domain.NodeUpdatedEvent{Path: "/src/alpha"})

		assert.Nil(t, cmd)
		assert.Empty(t, s.loaded)
		assert.Equal(t, 1, s.rebuilds)
	})

	t.Run("should track the processing label", func(t *testing.T) {
		t.Parallel()

		h, st, s := newHandler()

		cmd := h.HandleEvent(domain.ProcessingStartedEvent{Description: "Fetch for all repositories"})

		assert.NotNil(t, cmd)
		assert.True(t, st.Processing)
		assert.Equal(t, "Fetch for all repositories", st.ProcessingFor)
		assert.Equal(t, 1, s.spinning)

		h.HandleEvent(domain.ProcessingFinishedEvent{Description: "Fetch for all repositories"})

		assert.False(t, st.Processing)
		assert.Empty(t, st.ProcessingFor)
	})

	t.Run("should show scan progress and errors on the status line", func(t *testing.T) {
		t.Parallel()

		h, st, _ := newHandler()

		h.HandleEvent(domain.ScanStartedEvent{Root: "/src"})
		assert.Equal(t, "Scanning /src...", st.StatusMessage)

		h.HandleEvent(domain.ScanCompletedEvent{Root: "/src", ReposFound: 2})
		assert.Empty(t, st.StatusMessage)

		h.HandleEvent(domain.ErrorEvent{Message: "boom"})
		assert.Equal(t, "Error: boom", st.StatusMessage)
	})

	t.Run("should mirror filter changes", func(t *testing.T) {
		t.Parallel()

		h, st, s := newHandler()

		h.HandleEvent(domain.FiltersChangedEvent{Filters: domain.Filters{Behind: true}})

		assert.Equal(t, domain.Filters{Behind: true}, st.Filters)
		assert.Equal(t, 1, s.rebuilds)
	})
}
