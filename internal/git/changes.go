package git

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pmezard/go-difflib/difflib"

	"gitbulk/internal/domain"
)

const devNull = "/dev/null"

// Changes lists the paths that differ between the HEAD tree and the index
// plus working directory, sorted by path, each with a unified patch.
// Untracked files are not included.
func (r *Repository) Changes() ([]domain.ChangedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tree, err := r.headTree()
	if err != nil {
		return nil, err
	}

	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, err
	}
	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %w", err)
	}

	items := make([]domain.ChangedItem, 0, len(st))
	for path, fs := range st {
		kind := changeKind(fs)
		if untrackedInHead(tree, path, fs) {
			kind = domain.ChangeDeleted
		}
		if kind == domain.ChangeUnmodified {
			continue
		}

		oldPath := path
		if kind == domain.ChangeRenamed && fs.Extra != "" {
			oldPath = fs.Extra
		}

		var before, after []byte
		if kind != domain.ChangeAdded {
			if before, err = treeContent(tree, oldPath); err != nil {
				return nil, err
			}
		}
		if kind != domain.ChangeDeleted {
			if after, err = worktreeContent(wt.Filesystem, path); err != nil {
				return nil, err
			}
		}

		patch, err := unifiedPatch(kind, oldPath, path, before, after)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.ChangedItem{Path: path, Kind: kind, Patch: patch})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items, nil
}

func changeKind(fs *gogit.FileStatus) domain.ChangeKind {
	switch {
	case fs.Staging == gogit.Untracked || fs.Worktree == gogit.Untracked:
		return domain.ChangeUnmodified
	case fs.Staging == gogit.Added && fs.Worktree == gogit.Deleted:
		// added to the index then removed from disk: nothing relative to HEAD
		return domain.ChangeUnmodified
	case fs.Staging == gogit.Added:
		return domain.ChangeAdded
	case fs.Staging == gogit.Deleted || fs.Worktree == gogit.Deleted:
		return domain.ChangeDeleted
	case fs.Staging == gogit.Renamed:
		return domain.ChangeRenamed
	case fs.Staging == gogit.Copied:
		return domain.ChangeCopied
	case fs.Staging == gogit.Modified || fs.Worktree == gogit.Modified,
		fs.Staging == gogit.UpdatedButUnmerged || fs.Worktree == gogit.UpdatedButUnmerged:
		return domain.ChangeModified
	default:
		return domain.ChangeUnmodified
	}
}

func (r *Repository) headTree() (*object.Tree, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, err
	}
	return commit.Tree()
}

// untrackedInHead reports a path removed from the index but left on disk.
// Relative to HEAD it is a deletion.
func untrackedInHead(tree *object.Tree, path string, fs *gogit.FileStatus) bool {
	if tree == nil || fs.Staging != gogit.Untracked {
		return false
	}
	_, err := tree.FindEntry(path)
	return err == nil
}

func treeContent(tree *object.Tree, path string) ([]byte, error) {
	f, err := tree.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	contents, err := f.Contents()
	if err != nil {
		return nil, err
	}
	return []byte(contents), nil
}

func worktreeContent(fs billy.Filesystem, path string) ([]byte, error) {
	data, err := util.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func unifiedPatch(kind domain.ChangeKind, oldPath, newPath string, before, after []byte) (string, error) {
	from, to := "a/"+oldPath, "b/"+newPath
	switch kind {
	case domain.ChangeAdded:
		from = devNull
	case domain.ChangeDeleted:
		to = devNull
	}

	if isBinary(before) || isBinary(after) {
		return fmt.Sprintf("Binary files %s and %s differ\n", from, to), nil
	}

	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(before),
		B:        splitLines(after),
		FromFile: from,
		ToFile:   to,
		Context:  3,
	})
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	return difflib.SplitLines(string(data))
}

func isBinary(data []byte) bool {
	return bytes.IndexByte(data, 0) >= 0
}
