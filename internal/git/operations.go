package git

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	logger "github.com/sirupsen/logrus"
)

// Fetch downloads objects and refs from the configured remote using its
// refspecs, pruning stale remote-tracking branches.
func (r *Repository) Fetch(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	remote, err := r.repo.Remote(r.opts.RemoteName)
	if err != nil {
		return fmt.Errorf("remote %q: %w", r.opts.RemoteName, err)
	}
	rc := remote.Config()

	auth := r.auth(ctx, rc.URLs)

	err = r.repo.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: rc.Name,
		RefSpecs:   rc.Fetch,
		Auth:       auth,
		Tags:       gogit.TagFollowing,
		Prune:      true,
	})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		r.logf("fetch: already up to date")
		return nil
	}
	if err != nil {
		return err
	}

	r.logf("fetched from %s", rc.Name)
	return nil
}

// Pull fetches the upstream of the checked-out branch and fast-forwards it
func (r *Repository) Pull(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return err
	}
	remoteName := r.opts.RemoteName
	var merge plumbing.ReferenceName
	if b, ok := cfg.Branches[head.Name().Short()]; ok && b.Remote != "" && b.Merge != "" {
		remoteName = b.Remote
		merge = b.Merge
	}

	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return fmt.Errorf("remote %q: %w", remoteName, err)
	}
	auth := r.auth(ctx, remote.Config().URLs)

	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}

	err = wt.PullContext(ctx, &gogit.PullOptions{
		RemoteName:    remoteName,
		ReferenceName: merge,
		Auth:          auth,
	})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		r.logf("pull: already up to date")
		return nil
	}
	if err != nil {
		return err
	}

	r.logf("pulled %s", head.Name().Short())
	return nil
}

// ResetHard moves HEAD, index and working directory to the tip of branch
func (r *Repository) ResetHard(branch string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return fmt.Errorf("branch %s: %w", branch, err)
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}

	return wt.Reset(&gogit.ResetOptions{
		Commit: ref.Hash(),
		Mode:   gogit.HardReset,
	})
}

// Checkout switches HEAD to a local branch. Uncommitted changes to tracked
// files abort the checkout.
func (r *Repository) Checkout(branch string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wt, err := r.repo.Worktree()
	if err != nil {
		return err
	}

	return wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
	})
}

// DeleteBranch removes a local branch reference and its config section
func (r *Repository) DeleteBranch(branch string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := plumbing.NewBranchReferenceName(branch)
	if _, err := r.repo.Reference(name, false); err != nil {
		return fmt.Errorf("branch %s: %w", branch, err)
	}

	if err := r.repo.Storer.RemoveReference(name); err != nil {
		return err
	}
	if err := r.repo.DeleteBranch(branch); err != nil && !errors.Is(err, gogit.ErrBranchNotFound) {
		return err
	}

	r.logf("deleted branch %s", branch)
	return nil
}

// auth returns basic auth for http(s) remotes when the credential source
// knows the host. Other transports use their own defaults.
func (r *Repository) auth(ctx context.Context, urls []string) transport.AuthMethod {
	if r.opts.Credentials == nil || len(urls) == 0 {
		return nil
	}

	u, err := url.Parse(urls[0])
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil
	}

	username, password, err := r.opts.Credentials.Lookup(ctx, urls[0])
	if err != nil {
		logger.WithError(err).WithField("host", u.Host).Warn("credential lookup failed, continuing without credentials")
		return nil
	}
	if username == "" && password == "" {
		return nil
	}

	return &githttp.BasicAuth{Username: username, Password: password}
}
