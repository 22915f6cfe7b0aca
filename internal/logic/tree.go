package logic

import (
	"cmp"
	"path/filepath"
	"slices"

	"gitbulk/internal/domain"
)

// Populate creates one node per distinct handle path, sorted ascending by
// name with the path as tie-break.
func Populate(handles []domain.Repository) []*domain.RepositoryNode {
	seen := make(map[string]struct{}, len(handles))
	nodes := make([]*domain.RepositoryNode, 0, len(handles))
	for _, h := range handles {
		key := filepath.Clean(h.Path())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		nodes = append(nodes, domain.NewRepositoryNode(h))
	}

	slices.SortStableFunc(nodes, func(a, b *domain.RepositoryNode) int {
		return cmp.Or(cmp.Compare(a.Name(), b.Name()), cmp.Compare(a.Path(), b.Path()))
	})
	return nodes
}

// ComputeBranches lists the local branches of a node: current head first,
// then ascending by name. Remote-tracking branches are excluded. The head
// branch carries the status snapshot read once at the start.
func ComputeBranches(node *domain.RepositoryNode) ([]domain.BranchNode, error) {
	status := node.Status()

	infos, err := node.Handle().Branches()
	if err != nil {
		return nil, err
	}

	branches := make([]domain.BranchNode, 0, len(infos))
	for _, info := range infos {
		if info.IsRemote {
			continue
		}
		b := domain.BranchNode{
			FriendlyName:  info.Name,
			IsCurrentHead: info.IsCurrentHead,
			IsGone:        info.HasUpstream && info.UpstreamGone,
			Tracking:      info.Tracking,
		}
		if info.IsCurrentHead && status != nil {
			snapshot := *status
			b.Status = &snapshot
		}
		branches = append(branches, b)
	}

	slices.SortFunc(branches, func(a, b domain.BranchNode) int {
		switch {
		case a.IsCurrentHead && !b.IsCurrentHead:
			return -1
		case b.IsCurrentHead && !a.IsCurrentHead:
			return 1
		}
		return cmp.Compare(a.FriendlyName, b.FriendlyName)
	})
	return branches, nil
}

// FindBranch returns the named local branch of node, if present
func FindBranch(node *domain.RepositoryNode, name string) (domain.BranchNode, bool, error) {
	branches, err := ComputeBranches(node)
	if err != nil {
		return domain.BranchNode{}, false, err
	}
	for _, b := range branches {
		if b.FriendlyName == name {
			return b, true, nil
		}
	}
	return domain.BranchNode{}, false, nil
}
