package git

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	logger "github.com/sirupsen/logrus"

	"gitbulk/internal/domain"
)

// CredentialSource resolves basic auth credentials for a remote URL
type CredentialSource interface {
	Lookup(ctx context.Context, rawURL string) (username, password string, err error)
}

// Options configure every handle created by an Opener
type Options struct {
	RemoteName  string
	Credentials CredentialSource
}

// Repository is the go-git backed handle for one working directory.
// Calls on the same handle are serialized.
type Repository struct {
	path string
	repo *gogit.Repository
	opts Options
	mu   sync.Mutex
}

var _ domain.Repository = (*Repository)(nil)

func (r *Repository) Path() string { return r.path }

// Branches lists local branches with their tracking state followed by
// remote-tracking branches.
func (r *Repository) Branches() ([]domain.BranchInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	headName, err := r.headName()
	if err != nil {
		return nil, err
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	refs, err := r.repo.References()
	if err != nil {
		return nil, fmt.Errorf("failed to list references: %w", err)
	}
	defer refs.Close()

	var locals, remotes []domain.BranchInfo
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}

		switch {
		case ref.Name().IsBranch():
			info := domain.BranchInfo{
				Name:          ref.Name().Short(),
				IsCurrentHead: ref.Name() == headName,
			}
			upstream, ok := upstreamOf(cfg, info.Name)
			if ok {
				info.HasUpstream = true
				upstreamRef, err := r.repo.Reference(upstream, true)
				if err != nil {
					info.UpstreamGone = true
				} else {
					info.Tracking, err = r.distance(ref.Hash(), upstreamRef.Hash())
					if err != nil {
						return fmt.Errorf("failed to compare %s with %s: %w", info.Name, upstream.Short(), err)
					}
				}
			}
			locals = append(locals, info)
		case ref.Name().IsRemote():
			remotes = append(remotes, domain.BranchInfo{Name: ref.Name().Short(), IsRemote: true})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return append(locals, remotes...), nil
}

// Status summarizes the index and working directory
func (r *Repository) Status() (domain.RepoStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wt, err := r.repo.Worktree()
	if err != nil {
		return domain.RepoStatus{}, err
	}
	st, err := wt.Status()
	if err != nil {
		return domain.RepoStatus{}, fmt.Errorf("failed to read status: %w", err)
	}

	tree, err := r.headTree()
	if err != nil {
		return domain.RepoStatus{}, err
	}

	var status domain.RepoStatus
	for path, fs := range st {
		if untrackedInHead(tree, path, fs) {
			status.Removed++
			continue
		}
		switch fs.Staging {
		case gogit.Added:
			status.Added++
		case gogit.Deleted:
			status.Removed++
		case gogit.Modified, gogit.Renamed, gogit.Copied:
			status.Staged++
		}
		switch fs.Worktree {
		case gogit.Modified:
			status.Modified++
		case gogit.Deleted:
			status.Missing++
		case gogit.Untracked:
			status.Untracked++
		}
	}
	status.IsDirty = !st.IsClean()

	return status, nil
}

// HeadTracking returns ahead/behind of the checked-out branch against its
// upstream. A branch without a resolvable upstream reports zero distance.
func (r *Repository) HeadTracking() (domain.Tracking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.headTracking()
}

func (r *Repository) headTracking() (domain.Tracking, error) {
	head, err := r.repo.Head()
	if err != nil {
		return domain.Tracking{}, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return domain.Tracking{}, nil
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return domain.Tracking{}, err
	}
	upstream, ok := upstreamOf(cfg, head.Name().Short())
	if !ok {
		return domain.Tracking{}, nil
	}
	upstreamRef, err := r.repo.Reference(upstream, true)
	if err != nil {
		return domain.Tracking{}, nil
	}

	return r.distance(head.Hash(), upstreamRef.Hash())
}

// headName returns the branch HEAD points at, or an empty name when HEAD is unborn
func (r *Repository) headName() (plumbing.ReferenceName, error) {
	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	return head.Name(), nil
}

// distance counts the commits on each side since their merge base. Only
// the commits between each tip and the base are walked.
func (r *Repository) distance(local, upstream plumbing.Hash) (domain.Tracking, error) {
	if local == upstream {
		return domain.Tracking{}, nil
	}

	localCommit, err := r.repo.CommitObject(local)
	if err != nil {
		return domain.Tracking{}, err
	}
	upstreamCommit, err := r.repo.CommitObject(upstream)
	if err != nil {
		return domain.Tracking{}, err
	}

	bases, err := localCommit.MergeBase(upstreamCommit)
	if err != nil {
		return domain.Tracking{}, fmt.Errorf("failed to find merge base: %w", err)
	}
	stop := make([]plumbing.Hash, 0, len(bases))
	for _, b := range bases {
		stop = append(stop, b.Hash)
	}

	var tracking domain.Tracking
	if tracking.AheadBy, err = countUntil(localCommit, stop); err != nil {
		return domain.Tracking{}, err
	}
	if tracking.BehindBy, err = countUntil(upstreamCommit, stop); err != nil {
		return domain.Tracking{}, err
	}
	return tracking, nil
}

// countUntil counts the commits reachable from tip without passing through
// any of the stop commits
func countUntil(tip *object.Commit, stop []plumbing.Hash) (int, error) {
	iter := object.NewCommitPreorderIter(tip, nil, stop)
	defer iter.Close()

	n := 0
	err := iter.ForEach(func(*object.Commit) error {
		n++
		return nil
	})
	return n, err
}

// upstreamOf resolves the remote-tracking reference configured for a local branch
func upstreamOf(cfg *config.Config, branch string) (plumbing.ReferenceName, bool) {
	b, ok := cfg.Branches[branch]
	if !ok || b.Remote == "" || b.Merge == "" {
		return "", false
	}
	if b.Remote == "." {
		return b.Merge, true
	}
	return plumbing.NewRemoteReferenceName(b.Remote, b.Merge.Short()), true
}

func (r *Repository) logf(format string, args ...any) {
	logger.WithField("repo", r.path).Debugf(format, args...)
}
