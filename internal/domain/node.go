package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"unicode/utf8"
)

const (
	maxErrorMessageLength = 50
	errorEllipsis         = "..."
)

// RepositoryNode is a repository row of the tree. Its name and handle are
// fixed at creation; the remaining fields are written only by the operation
// holding the updating flag and may be read at any time.
type RepositoryNode struct {
	name   string
	handle Repository

	status   atomic.Pointer[RepoStatus]
	tracking atomic.Pointer[Tracking]
	fault    atomic.Pointer[string]
	updating atomic.Bool
}

// NewRepositoryNode creates a node for the given handle
func NewRepositoryNode(handle Repository) *RepositoryNode {
	return &RepositoryNode{
		name:   filepath.Base(filepath.Clean(handle.Path())),
		handle: handle,
	}
}

func (n *RepositoryNode) Name() string { return n.name }

func (n *RepositoryNode) Path() string { return n.handle.Path() }

func (n *RepositoryNode) Handle() Repository { return n.handle }

// Status returns the last refreshed status, or nil before the first refresh.
// The returned value must not be modified.
func (n *RepositoryNode) Status() *RepoStatus {
	return n.status.Load()
}

func (n *RepositoryNode) SetStatus(status RepoStatus) {
	n.status.Store(&status)
}

// Tracking returns the head branch tracking observed by the last operation, or nil
func (n *RepositoryNode) Tracking() *Tracking {
	return n.tracking.Load()
}

func (n *RepositoryNode) SetTracking(tracking Tracking) {
	n.tracking.Store(&tracking)
}

func (n *RepositoryNode) IsUpdating() bool {
	return n.updating.Load()
}

// TryAcquire marks the node as updating. It returns false if another
// operation already holds it.
func (n *RepositoryNode) TryAcquire() bool {
	return n.updating.CompareAndSwap(false, true)
}

// Release clears the updating flag
func (n *RepositoryNode) Release() {
	n.updating.Store(false)
}

func (n *RepositoryNode) HasError() bool {
	return n.fault.Load() != nil
}

// ErrorMessage returns the display (truncated) error message
func (n *RepositoryNode) ErrorMessage() string {
	if msg := n.fault.Load(); msg != nil {
		return *msg
	}
	return ""
}

// SetError records a failure; the stored message is truncated for display
func (n *RepositoryNode) SetError(message string) {
	trimmed := TrimErrorMessage(message)
	n.fault.Store(&trimmed)
}

func (n *RepositoryNode) ClearError() {
	n.fault.Store(nil)
}

// IsDirty reports the dirty flag of the last status; false before the first refresh
func (n *RepositoryNode) IsDirty() bool {
	status := n.Status()
	return status != nil && status.IsDirty
}

// IsHeadBehind reports whether the checked-out branch is behind its upstream
func (n *RepositoryNode) IsHeadBehind() bool {
	tracking := n.Tracking()
	return tracking != nil && tracking.BehindBy > 0
}

// Text is the single-line summary shown in the repository tree
func (n *RepositoryNode) Text() string {
	var b strings.Builder
	b.WriteString(n.name)
	if n.IsHeadBehind() {
		b.WriteString(" ↓")
	}
	if n.IsDirty() {
		b.WriteString(" *")
	}
	if n.IsUpdating() {
		b.WriteString(" ♦")
	}
	if msg := n.fault.Load(); msg != nil {
		fmt.Fprintf(&b, " [%s]", *msg)
	}
	return b.String()
}

// TrimErrorMessage truncates message to 50 characters, ending in "..." when cut
func TrimErrorMessage(message string) string {
	if utf8.RuneCountInString(message) <= maxErrorMessageLength {
		return message
	}
	runes := []rune(message)
	return string(runes[:maxErrorMessageLength-len(errorEllipsis)]) + errorEllipsis
}

// BranchNode is a branch row. It is recomputed from the repository on every access.
type BranchNode struct {
	FriendlyName  string
	IsCurrentHead bool
	IsGone        bool
	Tracking      Tracking
	Status        *RepoStatus // only set for the current head
}

// Text is the single-line summary shown under the repository row
func (b BranchNode) Text() string {
	status := ""
	if b.IsCurrentHead && b.Status != nil && b.Status.IsDirty {
		status = fmt.Sprintf(" +%d ~%d -%d", b.Status.Added, b.Status.Modified, b.Status.Removed)
	}

	symbol := ""
	switch {
	case b.IsGone:
		symbol = " ≠"
	case b.IsCurrentHead && b.Status != nil && !b.Status.IsDirty:
		symbol = " ≡"
	}

	return fmt.Sprintf("%s%s%s ↓%d ↑%d", b.FriendlyName, status, symbol, b.Tracking.BehindBy, b.Tracking.AheadBy)
}
