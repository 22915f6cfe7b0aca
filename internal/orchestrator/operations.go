package orchestrator

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"gitbulk/internal/domain"
	"gitbulk/internal/logic"
)

// operation describes one single-node operation run through the state machine
type operation struct {
	op     Op
	branch string
	// guard runs before the node is acquired; a non-nil error rejects
	guard  func() error
	action func(ctx context.Context) error
}

func (s operation) subject(node *domain.RepositoryNode) string {
	if s.branch != "" {
		return fmt.Sprintf("%s %s in %s", s.op, s.branch, node.Name())
	}
	return fmt.Sprintf("%s for %s", s.op, node.Name())
}

// RefreshStatus reads the working tree status and head tracking of a node
func (o *Orchestrator) RefreshStatus(ctx context.Context, node *domain.RepositoryNode) Result {
	return o.run(ctx, node, operation{
		op: OpStatus,
		action: func(context.Context) error {
			return refreshSnapshot(node)
		},
	})
}

// Fetch fetches from the remote and updates the head tracking of a node
func (o *Orchestrator) Fetch(ctx context.Context, node *domain.RepositoryNode) Result {
	return o.run(ctx, node, operation{
		op: OpFetch,
		action: func(ctx context.Context) error {
			if err := node.Handle().Fetch(ctx); err != nil {
				return err
			}
			return refreshTracking(node)
		},
	})
}

// Pull fast-forwards the checked-out branch. It is refused for dirty nodes,
// nodes not behind their upstream and nodes already in error.
func (o *Orchestrator) Pull(ctx context.Context, node *domain.RepositoryNode) Result {
	task := operation{op: OpPull}
	task.guard = func() error {
		switch {
		case node.IsDirty():
			o.log.Error("%s - Error: Repository is dirty", task.subject(node))
			return rejected("repository is dirty")
		case !node.IsHeadBehind():
			return rejected("not behind upstream")
		case node.HasError():
			return rejected("repository has an error")
		}
		return nil
	}
	task.action = func(ctx context.Context) error {
		if err := node.Handle().Pull(ctx); err != nil {
			return err
		}
		return refreshTracking(node)
	}
	return o.run(ctx, node, task)
}

// Update fetches then pulls a node
func (o *Orchestrator) Update(ctx context.Context, node *domain.RepositoryNode) (Result, Result) {
	fetch := o.Fetch(ctx, node)
	return fetch, o.Pull(ctx, node)
}

// Checkout switches the node to branch. visible tells whether the branch row
// is shown under an expanded repository row.
func (o *Orchestrator) Checkout(ctx context.Context, node *domain.RepositoryNode, branch string, visible bool) Result {
	task := operation{op: OpCheckout, branch: branch}
	task.guard = o.branchGuard(node, &task, visible, func(b domain.BranchNode) error {
		if b.IsCurrentHead {
			o.log.Error("%s - Error: Branch already checked-out", task.subject(node))
			return rejected("branch already checked-out")
		}
		return nil
	})
	task.action = func(context.Context) error {
		if err := node.Handle().Checkout(branch); err != nil {
			return err
		}
		return refreshSnapshot(node)
	}
	return o.run(ctx, node, task)
}

// DeleteBranch removes a branch that is not the current head
func (o *Orchestrator) DeleteBranch(ctx context.Context, node *domain.RepositoryNode, branch string, visible bool) Result {
	task := operation{op: OpDelete, branch: branch}
	task.guard = o.branchGuard(node, &task, visible, func(b domain.BranchNode) error {
		if b.IsCurrentHead {
			o.log.Error("%s - Error: Cannot delete branch while it is the repository HEAD", task.subject(node))
			return rejected("cannot delete HEAD branch")
		}
		return nil
	})
	task.action = func(context.Context) error {
		return node.Handle().DeleteBranch(branch)
	}
	return o.run(ctx, node, task)
}

// ResetBranch hard resets the current head branch to its tip and refreshes
// the node status before releasing it.
func (o *Orchestrator) ResetBranch(ctx context.Context, node *domain.RepositoryNode, branch string, visible bool) Result {
	task := operation{op: OpReset, branch: branch}
	task.guard = o.branchGuard(node, &task, visible, func(b domain.BranchNode) error {
		if !b.IsCurrentHead {
			o.log.Error("%s - Error: Only the checked-out branch can be reset", task.subject(node))
			return rejected("branch is not checked-out")
		}
		return nil
	})
	task.action = func(context.Context) error {
		if err := node.Handle().ResetHard(branch); err != nil {
			return err
		}
		return refreshSnapshot(node)
	}
	return o.run(ctx, node, task)
}

// Changes lists the uncommitted changes of a node, sorted by path. It never
// changes the node.
func (o *Orchestrator) Changes(node *domain.RepositoryNode) ([]domain.ChangedItem, error) {
	items, err := node.Handle().Changes()
	if err != nil {
		o.log.Error("View changes for %s - Error: %v", node.Name(), err)
		return nil, err
	}
	slices.SortFunc(items, func(a, b domain.ChangedItem) int {
		return strings.Compare(a.Path, b.Path)
	})
	return items, nil
}

func (o *Orchestrator) branchGuard(node *domain.RepositoryNode, task *operation, visible bool, check func(domain.BranchNode) error) func() error {
	return func() error {
		if !visible {
			return rejected("branch is not visible")
		}
		b, ok, err := logic.FindBranch(node, task.branch)
		if err != nil {
			o.log.Error("%s - Error: %v", task.subject(node), err)
			return rejected(err.Error())
		}
		if !ok {
			o.log.Error("%s - Error: Branch not found", task.subject(node))
			return rejected("branch not found")
		}
		return check(b)
	}
}

// run drives one operation through Idle -> Updating -> Idle
func (o *Orchestrator) run(ctx context.Context, node *domain.RepositoryNode, task operation) Result {
	res := Result{Node: node, Op: task.op, Branch: task.branch}

	if node.IsUpdating() {
		return o.busy(node, task, res)
	}
	if err := checkGuard(task); err != nil {
		res.Outcome = Rejected
		res.Err = err
		return res
	}
	if !node.TryAcquire() {
		return o.busy(node, task, res)
	}

	start := time.Now()
	res.Err = o.execute(ctx, node, task)
	res.Elapsed = time.Since(start)

	if res.Err != nil {
		res.Outcome = Failed
		o.log.Error("%s - Error: %v", task.subject(node), res.Err)
	} else {
		res.Outcome = Succeeded
		o.logSuccess(node, task, res.Elapsed)
	}
	o.notify(node)
	return res
}

// execute runs the action while holding the node. The error is recorded on
// the node and the node released on every exit path, panics included.
func (o *Orchestrator) execute(ctx context.Context, node *domain.RepositoryNode, task operation) (err error) {
	defer node.Release()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			node.SetError(err.Error())
		}
	}()

	node.ClearError()
	o.notify(node)

	return task.action(ctx)
}

func (o *Orchestrator) busy(node *domain.RepositoryNode, task operation, res Result) Result {
	o.log.Warn("%s - Warning: Operation already in progress", task.subject(node))
	res.Outcome = Rejected
	res.Err = ErrNodeBusy
	return res
}

func (o *Orchestrator) logSuccess(node *domain.RepositoryNode, task operation, elapsed time.Duration) {
	if task.branch != "" {
		o.log.Info("%s - Completed", task.subject(node))
		return
	}
	o.log.Info("%s - Complete: %s", task.subject(node), FormatElapsed(elapsed))
}

func checkGuard(task operation) (err error) {
	if task.guard == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = rejected(fmt.Sprint(r))
		}
	}()
	return task.guard()
}

func refreshSnapshot(node *domain.RepositoryNode) error {
	status, err := node.Handle().Status()
	if err != nil {
		return err
	}
	tracking, err := node.Handle().HeadTracking()
	if err != nil {
		return err
	}
	node.SetStatus(status)
	node.SetTracking(tracking)
	return nil
}

func refreshTracking(node *domain.RepositoryNode) error {
	tracking, err := node.Handle().HeadTracking()
	if err != nil {
		return err
	}
	node.SetTracking(tracking)
	return nil
}
