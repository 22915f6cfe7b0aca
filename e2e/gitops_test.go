//go:build e2e && unix

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchShowsIncomingCommits(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	workspace, err := tf.CreateTestWorkspace()
	require.NoError(t, err, "Failed to create test workspace")

	_, err = tf.CreateTestRepo("fetch-repo")
	require.NoError(t, err, "Failed to create fetch-repo")
	require.NoError(t, tf.PushUpstreamCommit("fetch-repo", "Upstream change"))

	err = tf.StartApp("-p", workspace)
	require.NoError(t, err, "Failed to start app")
	require.True(t, tf.Ready(), "Should finish the initial load")

	require.NoError(t, tf.Fetch())

	require.True(t, tf.OutputContainsPlain("Fetch for fetch-repo - Complete", 10*time.Second),
		"Fetch should be logged")
	require.True(t, tf.SeePlain("fetch-repo ↓"), "Repository should be marked behind its upstream")
}

func TestPullFastForwards(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	workspace, err := tf.CreateTestWorkspace()
	require.NoError(t, err, "Failed to create test workspace")

	_, err = tf.CreateTestRepo("pull-repo")
	require.NoError(t, err, "Failed to create pull-repo")
	require.NoError(t, tf.PushUpstreamCommit("pull-repo", "Upstream change"))

	err = tf.StartApp("-p", workspace)
	require.NoError(t, err, "Failed to start app")
	require.True(t, tf.Ready(), "Should finish the initial load")

	// pull only runs once a fetch has shown the branch behind
	require.NoError(t, tf.Fetch())
	require.True(t, tf.OutputContainsPlain("Fetch for pull-repo - Complete", 10*time.Second))
	require.True(t, tf.SeePlain("pull-repo ↓"))

	require.NoError(t, tf.Pull())

	require.True(t, tf.OutputContainsPlain("Pull for pull-repo - Complete", 10*time.Second),
		"Pull should be logged")

	tf.Expand()
	require.True(t, tf.SeePlain("main ≡ ↓0 ↑0"), "Head branch should be in sync after the pull")
}

func TestUpdateAll(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	workspace, err := tf.CreateTestWorkspace()
	require.NoError(t, err, "Failed to create test workspace")

	for _, name := range []string{"first", "second"} {
		_, err = tf.CreateTestRepo(name)
		require.NoError(t, err, "Failed to create test repo")
		require.NoError(t, tf.PushUpstreamCommit(name, "Upstream change"))
	}

	err = tf.StartApp("-p", workspace)
	require.NoError(t, err, "Failed to start app")
	require.True(t, tf.Ready(), "Should finish the initial load")

	require.NoError(t, tf.SendKeys(KeyUpdateAll))

	require.True(t, tf.OutputContainsPlain("Pull for all repositories - Complete: 2 repositories", 15*time.Second),
		"Update all should fetch and pull every repository")
}
