//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// RepoOption is a function that configures repository creation
type RepoOption func(*repoOptions)

type repoOptions struct {
	noRemote bool
	dirty    bool
	branches []string
	files    map[string]string // filename -> contents
}

// WithoutRemote leaves main without an upstream, so gitbulk does not list it
func WithoutRemote() RepoOption {
	return func(opts *repoOptions) {
		opts.noRemote = true
	}
}

// WithDirtyState creates the repository with uncommitted changes
func WithDirtyState() RepoOption {
	return func(opts *repoOptions) {
		opts.dirty = true
	}
}

// WithBranches creates extra local branches at the initial commit
func WithBranches(names ...string) RepoOption {
	return func(opts *repoOptions) {
		opts.branches = append(opts.branches, names...)
	}
}

// WithFiles commits extra files in the initial commit
func WithFiles(files map[string]string) RepoOption {
	return func(opts *repoOptions) {
		opts.files = files
	}
}

// CreateTestWorkspace creates a temporary directory for test repositories
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tmpDir := tf.t.TempDir()
	tf.workspace = tmpDir
	return tmpDir, nil
}

// remotePath is where the bare origin of a test repository lives. The
// directory is hidden, so discovery never lists it.
func (tf *TUITestFramework) remotePath(name string) string {
	return filepath.Join(tf.workspace, ".remotes", name+".git")
}

// CreateTestRepo creates a repository on main with one commit, tracking a
// bare origin in the workspace
func (tf *TUITestFramework) CreateTestRepo(name string, options ...RepoOption) (string, error) {
	if tf.workspace == "" {
		return "", fmt.Errorf("workspace not created")
	}

	opts := &repoOptions{}
	for _, opt := range options {
		opt(opts)
	}

	repoPath := filepath.Join(tf.workspace, name)
	if err := os.MkdirAll(repoPath, 0755); err != nil {
		return "", err
	}

	if err := tf.runGitCommand(repoPath, "init", "-b", "main"); err != nil {
		return "", err
	}

	files := map[string]string{
		"README.md": fmt.Sprintf("# %s\n\nTest repository for gitbulk testing.\n", name),
	}
	for filename, content := range opts.files {
		files[filename] = content
	}
	for filename, content := range files {
		if err := os.WriteFile(filepath.Join(repoPath, filename), []byte(content), 0644); err != nil {
			return "", err
		}
	}
	if err := tf.runGitCommand(repoPath, "add", "."); err != nil {
		return "", err
	}
	if err := tf.runGitCommand(repoPath, "commit", "-m", "Initial commit"); err != nil {
		return "", err
	}

	for _, branch := range opts.branches {
		if err := tf.runGitCommand(repoPath, "branch", branch); err != nil {
			return "", err
		}
	}

	if !opts.noRemote {
		remote := tf.remotePath(name)
		if err := tf.runGitCommand("", "init", "--bare", "-b", "main", remote); err != nil {
			return "", err
		}
		if err := tf.runGitCommand(repoPath, "remote", "add", "origin", remote); err != nil {
			return "", err
		}
		if err := tf.runGitCommand(repoPath, "push", "-u", "origin", "main"); err != nil {
			return "", err
		}
	}

	if opts.dirty {
		if err := os.WriteFile(filepath.Join(repoPath, "README.md"), []byte("Uncommitted changes\n"), 0644); err != nil {
			return "", err
		}
	}

	return repoPath, nil
}

// PushUpstreamCommit adds a commit to the origin of name through a second
// clone, leaving the test repository one commit behind after a fetch
func (tf *TUITestFramework) PushUpstreamCommit(name, message string) error {
	clone := filepath.Join(tf.t.TempDir(), name)
	if err := tf.runGitCommand("", "clone", tf.remotePath(name), clone); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(clone, "UPSTREAM.md"), []byte(message+"\n"), 0644); err != nil {
		return err
	}
	if err := tf.runGitCommand(clone, "add", "."); err != nil {
		return err
	}
	if err := tf.runGitCommand(clone, "commit", "-m", message); err != nil {
		return err
	}
	return tf.runGitCommand(clone, "push", "origin", "main")
}

func (tf *TUITestFramework) runGitCommand(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	// Set deterministic git environment
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=gitbulk Test",
		"GIT_AUTHOR_EMAIL=test@gitbulk.test",
		"GIT_COMMITTER_NAME=gitbulk Test",
		"GIT_COMMITTER_EMAIL=test@gitbulk.test",
		"GIT_CONFIG_GLOBAL=/dev/null", // ignore user ~/.gitconfig
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %v failed: %v; out=%s", args, err, out)
	}
	return nil
}
