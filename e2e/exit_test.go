//go:build e2e && unix

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplicationExit(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		key  string
	}{
		{"quit key", KeyQuit},
		{"ctrl+c", KeyCtrlC},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tf := NewTUITest(t)
			defer tf.Cleanup()

			workspace, err := tf.CreateTestWorkspace()
			require.NoError(t, err, "Failed to create test workspace")

			_, err = tf.CreateTestRepo("exit-test-repo")
			require.NoError(t, err, "Failed to create exit test repo")

			err = tf.StartApp("-p", workspace)
			require.NoError(t, err, "Failed to start app")
			require.True(t, tf.Ready(), "Should finish the initial load")

			require.NoError(t, tf.SendKeys(tc.key))

			if err := tf.Wait(2 * time.Second); err != nil {
				tf.DumpTailOnFail(t, "exit-failure", 4096)
				t.Fatalf("Application did not exit cleanly: %v", err)
			}
		})
	}
}
