package logic_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitbulk/internal/domain"
	"gitbulk/internal/logic"
	"gitbulk/internal/testutil"
)

func names(nodes []*domain.RepositoryNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Name())
	}
	return out
}

func TestPopulate(t *testing.T) {
	t.Parallel()

	t.Run("should sort nodes by name", func(t *testing.T) {
		t.Parallel()

		// given
		handles := []domain.Repository{
			testutil.NewFakeRepository("/src/zeta"),
			testutil.NewFakeRepository("/src/Alpha"),
			testutil.NewFakeRepository("/src/beta"),
		}

		// when
		nodes := logic.Populate(handles)

		// then
		assert.Equal(t, []string{"Alpha", "beta", "zeta"}, names(nodes))
		for _, n := range nodes {
			assert.Nil(t, n.Status())
			assert.False(t, n.IsUpdating())
		}
	})

	t.Run("should drop duplicate paths and break name ties by path", func(t *testing.T) {
		t.Parallel()

		handles := []domain.Repository{
			testutil.NewFakeRepository("/work/b/app"),
			testutil.NewFakeRepository("/work/a/app"),
			testutil.NewFakeRepository("/work/a/app/"),
		}

		nodes := logic.Populate(handles)

		require.Len(t, nodes, 2)
		assert.Equal(t, "/work/a/app", nodes[0].Path())
		assert.Equal(t, "/work/b/app", nodes[1].Path())
	})

	t.Run("should return an empty list for no handles", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, logic.Populate(nil))
	})
}

func TestComputeBranches(t *testing.T) {
	t.Parallel()

	t.Run("should list head first then by name without remotes", func(t *testing.T) {
		t.Parallel()

		// given
		repo := testutil.NewFakeRepository("/src/alpha")
		repo.BranchList = []domain.BranchInfo{
			{Name: "zeta"},
			{Name: "origin/main", IsRemote: true},
			{Name: "develop", IsCurrentHead: true, HasUpstream: true, Tracking: domain.Tracking{BehindBy: 2}},
			{Name: "alpha", HasUpstream: true, UpstreamGone: true},
		}
		node := domain.NewRepositoryNode(repo)
		node.SetStatus(domain.RepoStatus{IsDirty: true, Modified: 1})

		// when
		branches, err := logic.ComputeBranches(node)

		// then
		require.NoError(t, err)
		require.Len(t, branches, 3)
		assert.Equal(t, "develop", branches[0].FriendlyName)
		assert.Equal(t, "alpha", branches[1].FriendlyName)
		assert.Equal(t, "zeta", branches[2].FriendlyName)

		assert.Equal(t, 2, branches[0].Tracking.BehindBy)
		require.NotNil(t, branches[0].Status)
		assert.True(t, branches[0].Status.IsDirty)
		assert.True(t, branches[1].IsGone)
		assert.Nil(t, branches[1].Status)
		assert.Nil(t, branches[2].Status)
	})

	t.Run("should copy the status so later refreshes do not change it", func(t *testing.T) {
		t.Parallel()

		node := domain.NewRepositoryNode(testutil.NewFakeRepository("/src/alpha"))
		node.SetStatus(domain.RepoStatus{IsDirty: true, Added: 1})

		branches, err := logic.ComputeBranches(node)
		require.NoError(t, err)
		node.SetStatus(domain.RepoStatus{})

		assert.Equal(t, 1, branches[0].Status.Added)
	})

	t.Run("should recompute on every call", func(t *testing.T) {
		t.Parallel()

		repo := testutil.NewFakeRepository("/src/alpha")
		node := domain.NewRepositoryNode(repo)

		first, err := logic.ComputeBranches(node)
		require.NoError(t, err)
		repo.Set(func(f *testutil.FakeRepository) {
			f.BranchList = append(f.BranchList, domain.BranchInfo{Name: "feature"})
		})
		second, err := logic.ComputeBranches(node)
		require.NoError(t, err)

		assert.Len(t, first, 1)
		assert.Len(t, second, 2)
		assert.Equal(t, 2, repo.Calls("branches"))
	})

	t.Run("should surface engine errors", func(t *testing.T) {
		t.Parallel()

		repo := testutil.NewFakeRepository("/src/alpha")
		repo.BranchesErr = errors.New("corrupt refs")

		_, err := logic.ComputeBranches(domain.NewRepositoryNode(repo))

		assert.EqualError(t, err, "corrupt refs")
	})
}

func TestMemoryNodeStore(t *testing.T) {
	t.Parallel()

	store := logic.NewMemoryNodeStore()
	nodes := logic.Populate([]domain.Repository{
		testutil.NewFakeRepository("/src/b"),
		testutil.NewFakeRepository("/src/a"),
	})

	store.Replace(nodes)
	snapshot := store.Nodes()
	store.Replace(nil)

	assert.Equal(t, []string{"a", "b"}, names(snapshot))
	assert.Zero(t, store.Len())
	assert.Nil(t, store.Get("/src/a"))
}
