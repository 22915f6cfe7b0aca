package logic

import (
	"slices"
	"sync"

	"gitbulk/internal/domain"
)

// MemoryNodeStore is an in-memory implementation of NodeStore
type MemoryNodeStore struct {
	mu     sync.RWMutex
	nodes  []*domain.RepositoryNode
	byPath map[string]*domain.RepositoryNode
}

var _ NodeStore = (*MemoryNodeStore)(nil)

// NewMemoryNodeStore creates an empty node store
func NewMemoryNodeStore() *MemoryNodeStore {
	return &MemoryNodeStore{
		byPath: make(map[string]*domain.RepositoryNode),
	}
}

// Replace swaps in a new canonical list, keeping its order
func (s *MemoryNodeStore) Replace(nodes []*domain.RepositoryNode) {
	byPath := make(map[string]*domain.RepositoryNode, len(nodes))
	for _, n := range nodes {
		byPath[n.Path()] = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes = slices.Clone(nodes)
	s.byPath = byPath
}

// Nodes returns a snapshot of the canonical list. Later Replace calls do not
// affect a snapshot already taken.
func (s *MemoryNodeStore) Nodes() []*domain.RepositoryNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.nodes)
}

func (s *MemoryNodeStore) Get(path string) *domain.RepositoryNode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byPath[path]
}

func (s *MemoryNodeStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}
