package logic

import (
	"gitbulk/internal/domain"
)

// RowKind distinguishes repository rows from branch rows
type RowKind int

const (
	RowRepository RowKind = iota
	RowBranch
)

// Row is one line of the repository tree
type Row struct {
	Kind   RowKind
	Node   *domain.RepositoryNode
	Branch domain.BranchNode // set for branch rows
}

// Key identifies the row across rebuilds
func (r Row) Key() string {
	if r.Kind == RowBranch {
		return r.Node.Path() + "\x00" + r.Branch.FriendlyName
	}
	return r.Node.Path()
}

// BuildRows flattens the filtered view into display rows. Expanded
// repositories are followed by their branches as found in branches; a
// repository with no entry there shows no branch rows yet.
func BuildRows(view []*domain.RepositoryNode, expanded map[string]bool, branches map[string][]domain.BranchNode) []Row {
	rows := make([]Row, 0, len(view))
	for _, node := range view {
		rows = append(rows, Row{Kind: RowRepository, Node: node})
		if !expanded[node.Path()] {
			continue
		}
		for _, b := range branches[node.Path()] {
			rows = append(rows, Row{Kind: RowBranch, Node: node, Branch: b})
		}
	}
	return rows
}

// Navigator handles selection and viewport management over a row list
type Navigator struct {
	selectedIndex  int
	viewportOffset int
	viewportHeight int
	total          int
}

// NewNavigator creates a new navigator
func NewNavigator() *Navigator {
	return &Navigator{viewportHeight: 20}
}

// Selected returns the current selected index
func (n *Navigator) Selected() int {
	return n.selectedIndex
}

// Offset returns the first visible row
func (n *Navigator) Offset() int {
	return n.viewportOffset
}

// Height returns the number of visible rows
func (n *Navigator) Height() int {
	return n.viewportHeight
}

// SetHeight changes the number of visible rows
func (n *Navigator) SetHeight(height int) {
	if height < 1 {
		height = 1
	}
	n.viewportHeight = height
	n.ensureSelectedVisible()
}

// SetTotal updates the row count, clamping the selection
func (n *Navigator) SetTotal(total int) {
	n.total = total
	n.Select(n.selectedIndex)
}

// Select moves the selection to index, clamped to the rows
func (n *Navigator) Select(index int) {
	if index > n.total-1 {
		index = n.total - 1
	}
	if index < 0 {
		index = 0
	}
	n.selectedIndex = index
	n.ensureSelectedVisible()
}

// Move moves the selection by delta rows
func (n *Navigator) Move(delta int) {
	n.Select(n.selectedIndex + delta)
}

// PageUp moves the selection up by one page
func (n *Navigator) PageUp() {
	n.Move(-n.pageSize())
}

// PageDown moves the selection down by one page
func (n *Navigator) PageDown() {
	n.Move(n.pageSize())
}

// Home selects the first row
func (n *Navigator) Home() {
	n.Select(0)
}

// End selects the last row
func (n *Navigator) End() {
	n.Select(n.total - 1)
}

// Reselect keeps the selection on the row with key after the rows changed,
// falling back to the same index
func (n *Navigator) Reselect(rows []Row, key string) {
	n.total = len(rows)
	for i, r := range rows {
		if r.Key() == key {
			n.Select(i)
			return
		}
	}
	n.Select(n.selectedIndex)
}

func (n *Navigator) pageSize() int {
	// leave one row of overlap
	if n.viewportHeight > 2 {
		return n.viewportHeight - 1
	}
	return 1
}

func (n *Navigator) ensureSelectedVisible() {
	if n.selectedIndex < n.viewportOffset {
		n.viewportOffset = n.selectedIndex
	}
	if n.selectedIndex >= n.viewportOffset+n.viewportHeight {
		n.viewportOffset = n.selectedIndex - n.viewportHeight + 1
	}

	maxOffset := n.total - n.viewportHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	if n.viewportOffset > maxOffset {
		n.viewportOffset = maxOffset
	}
	if n.viewportOffset < 0 {
		n.viewportOffset = 0
	}
}
