package logic

import "gitbulk/internal/domain"

// NodeStore holds the canonical repository node list. The list is replaced
// wholesale on load; nodes themselves are mutated in place by operations.
type NodeStore interface {
	Replace(nodes []*domain.RepositoryNode)
	Nodes() []*domain.RepositoryNode
	Get(path string) *domain.RepositoryNode
	Len() int
}
