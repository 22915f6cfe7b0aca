package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// DefaultBranch is the branch every fixture repository starts on
const DefaultBranch = "main"

// RepoOption configures repository creation
type RepoOption func(*repoOptions)

type repoOptions struct {
	files     map[string]string // filename -> contents
	dirty     bool
	untracked bool
	tracking  bool
	behind    int
	ahead     int
	branches  []string
	remoteURL string
}

// WithFiles commits extra files in the initial commit
func WithFiles(files map[string]string) RepoOption {
	return func(opts *repoOptions) {
		opts.files = files
	}
}

// WithDirtyState leaves an uncommitted modification to README.md
func WithDirtyState() RepoOption {
	return func(opts *repoOptions) {
		opts.dirty = true
	}
}

// WithUntracked leaves an untracked file in the working directory
func WithUntracked() RepoOption {
	return func(opts *repoOptions) {
		opts.untracked = true
	}
}

// WithTracking adds an "origin" remote and makes main track origin/main
func WithTracking() RepoOption {
	return func(opts *repoOptions) {
		opts.tracking = true
	}
}

// WithRemoteURL sets the URL of the origin remote. Implies WithTracking.
func WithRemoteURL(url string) RepoOption {
	return func(opts *repoOptions) {
		opts.tracking = true
		opts.remoteURL = url
	}
}

// WithBehind puts origin/main n commits ahead of main. Implies WithTracking.
func WithBehind(n int) RepoOption {
	return func(opts *repoOptions) {
		opts.tracking = true
		opts.behind = n
	}
}

// WithAhead puts main n commits ahead of origin/main. Implies WithTracking.
func WithAhead(n int) RepoOption {
	return func(opts *repoOptions) {
		opts.tracking = true
		opts.ahead = n
	}
}

// WithBranches creates extra local branches at the initial commit
func WithBranches(names ...string) RepoOption {
	return func(opts *repoOptions) {
		opts.branches = append(opts.branches, names...)
	}
}

// CreateRepository initializes a repository at dir on branch main with one
// commit and applies the options. No network or git binary is involved.
func CreateRepository(t testing.TB, dir string, options ...RepoOption) *gogit.Repository {
	t.Helper()

	opts := &repoOptions{}
	for _, opt := range options {
		opt(opts)
	}

	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch)},
	})
	require.NoError(t, err)

	files := map[string]string{"README.md": fmt.Sprintf("# %s\n", filepath.Base(dir))}
	for name, content := range opts.files {
		files[name] = content
	}
	initial := CommitFiles(t, repo, files, "Initial commit")

	for _, name := range opts.branches {
		ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), initial)
		require.NoError(t, repo.Storer.SetReference(ref))
	}

	if opts.tracking {
		url := opts.remoteURL
		if url == "" {
			url = "https://git.example.invalid/" + filepath.Base(dir) + ".git"
		}
		_, err = repo.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{url}})
		require.NoError(t, err)
		require.NoError(t, repo.CreateBranch(&config.Branch{
			Name:   DefaultBranch,
			Remote: "origin",
			Merge:  plumbing.NewBranchReferenceName(DefaultBranch),
		}))
		setRemoteTip(t, repo, initial)
	}

	if opts.behind > 0 {
		for i := 0; i < opts.behind; i++ {
			AppendCommit(t, repo, "README.md", fmt.Sprintf("upstream %d\n", i), fmt.Sprintf("Upstream commit %d", i))
		}
		setRemoteTip(t, repo, head(t, repo))
		wt, err := repo.Worktree()
		require.NoError(t, err)
		require.NoError(t, wt.Reset(&gogit.ResetOptions{Commit: initial, Mode: gogit.HardReset}))
	}

	for i := 0; i < opts.ahead; i++ {
		AppendCommit(t, repo, "LOCAL.md", fmt.Sprintf("local %d\n", i), fmt.Sprintf("Local commit %d", i))
	}

	if opts.dirty {
		WriteFile(t, dir, "README.md", "uncommitted changes\n")
	}
	if opts.untracked {
		WriteFile(t, dir, "scratch.txt", "untracked\n")
	}

	return repo
}

// CommitFiles writes files into the working directory, stages and commits them
func CommitFiles(t testing.TB, repo *gogit.Repository, files map[string]string, message string) plumbing.Hash {
	t.Helper()

	wt, err := repo.Worktree()
	require.NoError(t, err)

	for name, content := range files {
		WriteFile(t, wt.Filesystem.Root(), name, content)
		_, err = wt.Add(name)
		require.NoError(t, err)
	}

	hash, err := wt.Commit(message, &gogit.CommitOptions{Author: Signature()})
	require.NoError(t, err)
	return hash
}

// AppendCommit appends content to a file and commits it
func AppendCommit(t testing.TB, repo *gogit.Repository, name, content, message string) plumbing.Hash {
	t.Helper()

	wt, err := repo.Worktree()
	require.NoError(t, err)

	existing, err := os.ReadFile(filepath.Join(wt.Filesystem.Root(), name))
	if err != nil && !os.IsNotExist(err) {
		require.NoError(t, err)
	}
	return CommitFiles(t, repo, map[string]string{name: string(existing) + content}, message)
}

// WriteFile writes a file relative to dir, creating parent directories
func WriteFile(t testing.TB, dir, name, content string) {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// Signature returns the deterministic author used by fixtures
func Signature() *object.Signature {
	return &object.Signature{Name: "gitbulk test", Email: "test@gitbulk.test", When: time.Now()}
}

// DetachHead points HEAD directly at the current commit
func DetachHead(t testing.TB, repo *gogit.Repository) {
	t.Helper()
	require.NoError(t, repo.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, head(t, repo))))
}

// RequireGitBinary skips the test when git is not installed. go-git's file
// transport shells out to git-upload-pack for local remotes.
func RequireGitBinary(t testing.TB) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// CloneRepository clones a local origin into dir. The clone's main tracks origin/main.
func CloneRepository(t testing.TB, origin, dir string) *gogit.Repository {
	t.Helper()

	repo, err := gogit.PlainClone(dir, false, &gogit.CloneOptions{
		URL:           origin,
		ReferenceName: plumbing.NewBranchReferenceName(DefaultBranch),
	})
	require.NoError(t, err)
	return repo
}

// HeadBranch returns the short name of the branch HEAD points at
func HeadBranch(t testing.TB, repo *gogit.Repository) string {
	t.Helper()

	ref, err := repo.Head()
	require.NoError(t, err)
	return strings.TrimPrefix(ref.Name().String(), "refs/heads/")
}

func head(t testing.TB, repo *gogit.Repository) plumbing.Hash {
	t.Helper()

	ref, err := repo.Head()
	require.NoError(t, err)
	return ref.Hash()
}

func setRemoteTip(t testing.TB, repo *gogit.Repository, hash plumbing.Hash) {
	t.Helper()

	ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName("origin", DefaultBranch), hash)
	require.NoError(t, repo.Storer.SetReference(ref))
}
