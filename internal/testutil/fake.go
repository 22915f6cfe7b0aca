// Package testutil provides test doubles and repository fixtures shared by
// package tests. The doubles are hand-written; no mock frameworks.
package testutil

import (
	"context"
	"slices"
	"sync"

	"gitbulk/internal/domain"
)

// FakeRepository implements domain.Repository as a configurable spy.
// Configure the response fields before handing it to the code under test,
// then inspect the call counters. It is safe for concurrent use.
type FakeRepository struct {
	mu   sync.Mutex
	path string

	// --- Branches ---
	BranchList  []domain.BranchInfo
	BranchesErr error

	// --- Status ---
	StatusValue domain.RepoStatus
	StatusErr   error

	// --- HeadTracking ---
	TrackingValue domain.Tracking
	TrackingErr   error

	// --- mutating operations ---
	FetchErr    error
	PullErr     error
	ResetErr    error
	CheckoutErr error
	DeleteErr   error

	// --- Changes ---
	ChangeList []domain.ChangedItem
	ChangesErr error

	// PanicOn makes the named operation ("fetch", "pull", "status", ...) panic
	PanicOn string
	// Hook runs at the start of every operation with its name
	Hook func(op string)

	calls map[string]int
	args  map[string][]string
}

var _ domain.Repository = (*FakeRepository)(nil)

// NewFakeRepository returns a clean, tracking fake with a single "main" head branch
func NewFakeRepository(path string) *FakeRepository {
	return &FakeRepository{
		path: path,
		BranchList: []domain.BranchInfo{
			{Name: "main", IsCurrentHead: true, HasUpstream: true},
		},
		calls: make(map[string]int),
		args:  make(map[string][]string),
	}
}

// Calls returns how many times op was invoked
func (f *FakeRepository) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// Args returns the branch arguments op was invoked with, in call order
func (f *FakeRepository) Args(op string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.args[op])
}

// Set mutates the fake under its lock, for tests that change behaviour
// while operations are in flight.
func (f *FakeRepository) Set(fn func(f *FakeRepository)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *FakeRepository) enter(op string, arg ...string) {
	f.mu.Lock()
	f.calls[op]++
	f.args[op] = append(f.args[op], arg...)
	hook := f.Hook
	panicking := f.PanicOn == op
	f.mu.Unlock()

	if hook != nil {
		hook(op)
	}
	if panicking {
		panic("fake repository: " + op)
	}
}

func (f *FakeRepository) Path() string { return f.path }

func (f *FakeRepository) Branches() ([]domain.BranchInfo, error) {
	f.enter("branches")
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.BranchList), f.BranchesErr
}

func (f *FakeRepository) Status() (domain.RepoStatus, error) {
	f.enter("status")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.StatusValue, f.StatusErr
}

func (f *FakeRepository) HeadTracking() (domain.Tracking, error) {
	f.enter("tracking")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.TrackingValue, f.TrackingErr
}

func (f *FakeRepository) Fetch(_ context.Context) error {
	f.enter("fetch")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.FetchErr
}

func (f *FakeRepository) Pull(_ context.Context) error {
	f.enter("pull")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PullErr
}

func (f *FakeRepository) ResetHard(branch string) error {
	f.enter("reset", branch)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ResetErr
}

// Checkout moves the current-head flag to branch on success
func (f *FakeRepository) Checkout(branch string) error {
	f.enter("checkout", branch)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CheckoutErr != nil {
		return f.CheckoutErr
	}
	for i := range f.BranchList {
		if !f.BranchList[i].IsRemote {
			f.BranchList[i].IsCurrentHead = f.BranchList[i].Name == branch
		}
	}
	return nil
}

// DeleteBranch removes branch from BranchList on success
func (f *FakeRepository) DeleteBranch(branch string) error {
	f.enter("delete", branch)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.BranchList = slices.DeleteFunc(f.BranchList, func(b domain.BranchInfo) bool {
		return !b.IsRemote && b.Name == branch
	})
	return nil
}

func (f *FakeRepository) Changes() ([]domain.ChangedItem, error) {
	f.enter("changes")
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ChangeList), f.ChangesErr
}
