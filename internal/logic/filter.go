package logic

import "gitbulk/internal/domain"

// Apply returns the subsequence of nodes matching every active predicate.
// The result is a fresh slice; the canonical list is never modified.
func Apply(nodes []*domain.RepositoryNode, filters domain.Filters) []*domain.RepositoryNode {
	view := make([]*domain.RepositoryNode, 0, len(nodes))
	for _, n := range nodes {
		if MatchesFilters(n, filters) {
			view = append(view, n)
		}
	}
	return view
}

// MatchesFilters checks a node against the conjunction of active predicates.
// A node without status is not dirty.
func MatchesFilters(node *domain.RepositoryNode, filters domain.Filters) bool {
	if filters.Dirty && !node.IsDirty() {
		return false
	}
	if filters.Behind && !node.IsHeadBehind() {
		return false
	}
	if filters.Error && !node.HasError() {
		return false
	}
	return true
}
