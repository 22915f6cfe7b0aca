package git

import (
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"gitbulk/internal/domain"
)

// DefaultRemote is the remote fetched when none is configured
const DefaultRemote = "origin"

// Opener creates repository handles that share the same options
type Opener struct {
	opts Options
}

// NewOpener creates an opener. An empty remote name means DefaultRemote.
func NewOpener(opts Options) *Opener {
	if opts.RemoteName == "" {
		opts.RemoteName = DefaultRemote
	}
	return &Opener{opts: opts}
}

// Open opens the repository rooted at path and checks that it can be managed.
// It returns an error wrapping domain.ErrNotRepository when path is not a
// repository root and one wrapping domain.ErrNotQualified when it is a
// repository that cannot be managed.
func (o *Opener) Open(path string) (domain.Repository, error) {
	repo, err := o.OpenRepository(path)
	if err != nil {
		return nil, err
	}
	if err := repo.Qualify(); err != nil {
		return nil, err
	}
	return repo, nil
}

// OpenRepository opens path without qualification checks
func (o *Opener) OpenRepository(path string) (*Repository, error) {
	repo, err := gogit.PlainOpen(path)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotRepository)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &Repository{path: path, repo: repo, opts: o.opts}, nil
}

// Qualify reports why the repository cannot be managed, or nil. A manageable
// repository has a working directory and a HEAD that is attached to a local
// branch with a configured upstream.
func (r *Repository) Qualify() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.repo.Worktree(); errors.Is(err, gogit.ErrIsBareRepository) {
		return fmt.Errorf("%s is bare: %w", r.path, domain.ErrNotQualified)
	} else if err != nil {
		return err
	}

	symbolic, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return fmt.Errorf("failed to read HEAD: %w", err)
	}
	if symbolic.Type() != plumbing.SymbolicReference {
		return fmt.Errorf("%s has a detached HEAD: %w", r.path, domain.ErrNotQualified)
	}
	if !symbolic.Target().IsBranch() {
		return fmt.Errorf("%s HEAD is not a local branch: %w", r.path, domain.ErrNotQualified)
	}

	if _, err := r.repo.Reference(symbolic.Target(), false); errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("%s has no commits: %w", r.path, domain.ErrNotQualified)
	} else if err != nil {
		return err
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return err
	}
	if _, ok := upstreamOf(cfg, symbolic.Target().Short()); !ok {
		return fmt.Errorf("%s branch %s has no upstream: %w", r.path, symbolic.Target().Short(), domain.ErrNotQualified)
	}

	return nil
}
