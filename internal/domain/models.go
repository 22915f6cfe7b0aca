package domain

import (
	"context"
	"fmt"
	"time"
)

// Repository is a handle to one on-disk repository. It is owned by the
// repository engine; callers hold it by reference and never copy it.
type Repository interface {
	Path() string
	Branches() ([]BranchInfo, error)
	Status() (RepoStatus, error)
	HeadTracking() (Tracking, error)
	Fetch(ctx context.Context) error
	Pull(ctx context.Context) error
	ResetHard(branch string) error
	Checkout(branch string) error
	DeleteBranch(branch string) error
	Changes() ([]ChangedItem, error)
}

// RepoStatus is the working tree and index state of a repository
type RepoStatus struct {
	IsDirty   bool
	Added     int // new in index
	Modified  int // modified in working directory
	Removed   int // deleted from index
	Staged    int
	Untracked int
	Missing   int
}

// Tracking holds the commit distance between a branch and its upstream
type Tracking struct {
	BehindBy int
	AheadBy  int
}

// BranchInfo is a branch as reported by the repository engine
type BranchInfo struct {
	Name          string
	IsCurrentHead bool
	IsRemote      bool
	HasUpstream   bool
	UpstreamGone  bool // upstream configured but no longer resolves
	Tracking      Tracking
}

// ChangeKind is the kind of a path-level difference
type ChangeKind int

const (
	ChangeUnmodified ChangeKind = iota
	ChangeAdded
	ChangeModified
	ChangeDeleted
	ChangeRenamed
	ChangeCopied
	ChangeTypeChanged
	ChangeIgnored
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdded:
		return "Added"
	case ChangeModified:
		return "Modified"
	case ChangeDeleted:
		return "Deleted"
	case ChangeRenamed:
		return "Renamed"
	case ChangeCopied:
		return "Copied"
	case ChangeTypeChanged:
		return "TypeChanged"
	case ChangeIgnored:
		return "Ignored"
	default:
		return "Unmodified"
	}
}

// Tag returns the short list prefix for the kind, e.g. "(M) "
func (k ChangeKind) Tag() string {
	switch k {
	case ChangeRenamed:
		return "(R) "
	case ChangeDeleted:
		return "(D) "
	case ChangeModified:
		return "(M) "
	case ChangeAdded:
		return "(A) "
	case ChangeCopied:
		return "(C) "
	case ChangeIgnored:
		return "(I) "
	case ChangeTypeChanged:
		return "(T) "
	default:
		return ""
	}
}

// ChangedItem is one path that differs between HEAD and the index plus working directory
type ChangedItem struct {
	Path  string
	Kind  ChangeKind
	Patch string
}

func (c ChangedItem) String() string {
	return c.Kind.Tag() + c.Path
}

// Severity of a log entry
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "WARN"
	case SeverityError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// LogEntry is one user-visible log line
type LogEntry struct {
	Timestamp time.Time
	Severity  Severity
	Message   string
}

// LogTimeLayout is the timestamp layout used when rendering log lines
const LogTimeLayout = "2006-01-02 15:04:05.0000"

// Line renders the entry as a single log line
func (e LogEntry) Line() string {
	return fmt.Sprintf("%s %s", e.Timestamp.Format(LogTimeLayout), e.Message)
}

// Filters holds the boolean predicates of the repository filter
type Filters struct {
	Dirty  bool
	Behind bool
	Error  bool
}

// Active reports whether any predicate is set
func (f Filters) Active() bool {
	return f.Dirty || f.Behind || f.Error
}
