package orchestrator

import (
	"fmt"
	"time"

	"gitbulk/internal/domain"
)

// Op identifies a single-repository operation
type Op string

const (
	OpStatus   Op = "Retrieve status"
	OpFetch    Op = "Fetch"
	OpPull     Op = "Pull"
	OpCheckout Op = "Checkout branch"
	OpDelete   Op = "Delete branch"
	OpReset    Op = "Reset branch"
)

func (o Op) String() string { return string(o) }

// Outcome of one operation on one node
type Outcome int

const (
	Succeeded Outcome = iota
	Failed
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Failed:
		return "failed"
	case Rejected:
		return "rejected"
	default:
		return "succeeded"
	}
}

// Result is the tagged outcome of a single operation
type Result struct {
	Node    *domain.RepositoryNode
	Op      Op
	Branch  string
	Outcome Outcome
	Elapsed time.Duration
	Err     error
}

// BulkResult collects the per-node results of a bulk call
type BulkResult struct {
	Op      Op
	Results []Result
	Elapsed time.Duration
}

// Count returns how many results have the given outcome
func (b BulkResult) Count(outcome Outcome) int {
	n := 0
	for _, r := range b.Results {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}

// FormatElapsed renders a duration as hh:mm:ss.ffff
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%02d:%02d:%02d.%04d", int64(h), int64(m), int64(s), int64(d/(100*time.Microsecond)))
}
