package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gitbulk/internal/domain"
)

// StatusAll refreshes the status of every node
func (o *Orchestrator) StatusAll(ctx context.Context) (BulkResult, error) {
	return o.fanOut(ctx, OpStatus, o.RefreshStatus)
}

// FetchAll fetches every node
func (o *Orchestrator) FetchAll(ctx context.Context) (BulkResult, error) {
	return o.fanOut(ctx, OpFetch, o.Fetch)
}

// PullAll pulls every node; the pull guard decides per node
func (o *Orchestrator) PullAll(ctx context.Context) (BulkResult, error) {
	return o.fanOut(ctx, OpPull, o.Pull)
}

// UpdateAll clears the log, fetches every node then pulls every node.
// Interactive callers run it through Dispatch.
func (o *Orchestrator) UpdateAll(ctx context.Context) (fetch BulkResult, pull BulkResult, err error) {
	o.clearLog()

	fetch, err = o.FetchAll(ctx)
	if err != nil {
		return fetch, pull, err
	}
	pull, err = o.PullAll(ctx)
	return fetch, pull, err
}

// fanOut runs single concurrently for every node of the canonical list as it
// is at dispatch time and waits for all of them. Node failures stay in their
// Result; only a failure of the dispatch itself is returned.
func (o *Orchestrator) fanOut(ctx context.Context, op Op, single func(context.Context, *domain.RepositoryNode) Result) (res BulkResult, err error) {
	res.Op = op
	defer func() {
		if r := recover(); r != nil {
			err = &AggregateError{Op: op, Cause: r}
			o.log.Error("%s for all repositories - Error: %v", op, r)
		}
	}()

	o.log.Info("%s for all repositories - Started", op)
	start := time.Now()

	nodes := o.store.Nodes()
	if len(nodes) == 0 {
		o.log.Warn("%s for all repositories - Nothing to do", op)
		return res, nil
	}

	results := make([]Result, len(nodes))
	var wg sync.WaitGroup
	for i, node := range nodes {
		wg.Add(1)
		go func(i int, node *domain.RepositoryNode) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = Result{Node: node, Op: op, Outcome: Failed, Err: fmt.Errorf("panic: %v", r)}
				}
			}()
			results[i] = single(ctx, node)
		}(i, node)
	}
	wg.Wait()

	res.Results = results
	res.Elapsed = time.Since(start)
	o.log.Info("%s for all repositories - Complete: %d repositories in %s", op, len(nodes), FormatElapsed(res.Elapsed))
	return res, nil
}
