//go:build e2e && unix

package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDirtyFilter(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	workspace, err := tf.CreateTestWorkspace()
	require.NoError(t, err, "Failed to create test workspace")

	_, err = tf.CreateTestRepo("clean-project")
	require.NoError(t, err, "Failed to create clean-project repo")
	_, err = tf.CreateTestRepo("dirty-project", WithDirtyState())
	require.NoError(t, err, "Failed to create dirty-project repo")

	err = tf.StartApp("-p", workspace)
	require.NoError(t, err, "Failed to start app")
	require.True(t, tf.Ready(), "Should finish the initial load")
	require.True(t, tf.SeePlain("dirty-project *"), "Dirty repository should be marked")
	require.True(t, tf.SeePlain("clean-project"), "Clean repository should be listed")

	require.NoError(t, tf.SendKeys(KeyFilterDirty), "Failed to toggle the dirty filter")
	require.True(t, tf.OutputContainsPlain("[x] Dirty (*)", 3*time.Second), "Dirty filter should be checked")

	// only what was drawn after the filter turned on
	parts := strings.Split(tf.SnapshotPlain(), "[x] Dirty (*)")
	filtered := parts[len(parts)-1]
	require.NotContains(t, filtered, "clean-project", "Clean repository should be hidden")

	require.NoError(t, tf.SendKeys(KeyClearFilter), "Failed to clear filters")
	require.True(t, tf.WaitFor(func(s string) bool {
		parts := strings.Split(ansiRe.ReplaceAllString(s, ""), "[x] Dirty (*)")
		return strings.Contains(parts[len(parts)-1], "clean-project")
	}, 3*time.Second), "Clean repository should come back")
}
