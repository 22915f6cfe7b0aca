// Package orchestrator runs repository operations against the canonical
// node list, individually or fanned out over every node, recording failures
// on the node they belong to.
package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	logger "github.com/sirupsen/logrus"

	"gitbulk/internal/discovery"
	"gitbulk/internal/domain"
	"gitbulk/internal/eventbus"
	"gitbulk/internal/logic"
)

// LogSink receives user-visible log lines
type LogSink interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	Reset()
}

// Orchestrator owns the canonical node list and the processing flag
type Orchestrator struct {
	discovery discovery.DiscoveryService
	store     logic.NodeStore
	log       LogSink
	bus       eventbus.EventBus

	processing atomic.Bool

	mu      sync.RWMutex
	root    string
	filters domain.Filters
}

// New creates an orchestrator
func New(disc discovery.DiscoveryService, store logic.NodeStore, log LogSink, bus eventbus.EventBus) *Orchestrator {
	return &Orchestrator{
		discovery: disc,
		store:     store,
		log:       log,
		bus:       bus,
	}
}

// Load clears the log, discovers repositories under root, replaces the
// canonical list and refreshes the status of every node. When nothing
// qualifies the list is emptied and ErrDiscoveryEmpty is returned.
// Interactive callers run it through Dispatch.
func (o *Orchestrator) Load(ctx context.Context, root string) (int, error) {
	o.clearLog()
	o.log.Info("Load all repositories from %s - Started", root)
	start := time.Now()

	handles, err := o.discovery.Discover(ctx, root)
	if err != nil {
		o.log.Error("Load repositories from %s - Error: %v", root, err)
		return 0, err
	}

	o.setRoot(root)

	if len(handles) == 0 {
		o.log.Warn("Load repositories from %s - No repositories found!", root)
		o.store.Replace(nil)
		o.bus.Publish(domain.TreeLoadedEvent{Root: root})
		return 0, ErrDiscoveryEmpty
	}

	nodes := logic.Populate(handles)
	suffix := "ies"
	if len(nodes) == 1 {
		suffix = "y"
	}
	o.log.Info("Load repositories from %s - Complete: %d repositor%s in %s", root, len(nodes), suffix, FormatElapsed(time.Since(start)))

	o.store.Replace(nodes)
	o.bus.Publish(domain.TreeLoadedEvent{Root: root, Count: len(nodes)})

	if _, err := o.StatusAll(ctx); err != nil {
		return len(nodes), err
	}
	return len(nodes), nil
}

// Reload loads again from the last root
func (o *Orchestrator) Reload(ctx context.Context) (int, error) {
	return o.Load(ctx, o.Root())
}

// Root is the directory of the last load
func (o *Orchestrator) Root() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.root
}

func (o *Orchestrator) setRoot(root string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.root = root
}

// Nodes returns a snapshot of the canonical list
func (o *Orchestrator) Nodes() []*domain.RepositoryNode {
	return o.store.Nodes()
}

// Node looks up a node by path
func (o *Orchestrator) Node(path string) *domain.RepositoryNode {
	return o.store.Get(path)
}

// Filters returns the active predicates
func (o *Orchestrator) Filters() domain.Filters {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.filters
}

// SetFilters replaces the active predicates
func (o *Orchestrator) SetFilters(filters domain.Filters) {
	o.mu.Lock()
	o.filters = filters
	o.mu.Unlock()

	o.bus.Publish(domain.FiltersChangedEvent{Filters: filters})
}

// View recomputes the filtered projection of the canonical list
func (o *Orchestrator) View() []*domain.RepositoryNode {
	return logic.Apply(o.store.Nodes(), o.Filters())
}

// Processing reports whether a top-level command is running
func (o *Orchestrator) Processing() bool {
	return o.processing.Load()
}

// Dispatch runs fn as a top-level command. Only one command runs at a time;
// a second one is refused with ErrBusy.
func (o *Orchestrator) Dispatch(ctx context.Context, cmd CommandType, fn func(ctx context.Context) error) error {
	if !o.processing.CompareAndSwap(false, true) {
		return ErrBusy
	}
	o.bus.Publish(domain.ProcessingStartedEvent{Description: cmd.String()})

	defer func() {
		o.processing.Store(false)
		o.bus.Publish(domain.ProcessingFinishedEvent{Description: cmd.String()})
	}()

	return fn(ctx)
}

// ResetLog clears the log. It is refused while a command is running.
func (o *Orchestrator) ResetLog() error {
	if !o.processing.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer o.processing.Store(false)

	o.log.Reset()
	return nil
}

// clearLog resets the log unless a node operation is still writing to it
func (o *Orchestrator) clearLog() {
	for _, node := range o.store.Nodes() {
		if node.IsUpdating() {
			logger.Debugf("Log kept: %s is updating", node.Name())
			return
		}
	}
	o.log.Reset()
}

func (o *Orchestrator) notify(node *domain.RepositoryNode) {
	o.bus.Publish(domain.NodeUpdatedEvent{Path: node.Path()})
}
