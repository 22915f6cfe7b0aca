package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	logger "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitbulk/internal/config"
	"gitbulk/internal/domain"
	"gitbulk/internal/eventbus"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromPath(t *testing.T) {
	t.Parallel()

	t.Run("should decode TOML and keep defaults for missing fields", func(t *testing.T) {
		t.Parallel()

		// given
		path := writeFile(t, "config.toml", `
base_dir = "/work/src"
exclude = ["**/vendor", "archive/*"]

[log]
level = "debug"

[ui]
filter_dirty = true
`)
		svc := config.NewConfigService(path, nil)

		// when
		cfg, err := svc.LoadFromPath(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "/work/src", cfg.BaseDir)
		assert.Equal(t, []string{"**/vendor", "archive/*"}, cfg.Exclude)
		assert.Equal(t, "origin", cfg.Remote)
		assert.Equal(t, "git", cfg.CredentialHelper)
		assert.Equal(t, logger.DebugLevel, cfg.LogLevel())
		assert.Equal(t, 1000, cfg.Log.MaxLines)
		assert.True(t, cfg.UI.ShowLog)
		assert.Equal(t, domain.Filters{Dirty: true}, cfg.UI.Filters())
	})

	t.Run("should decode YAML by extension", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "config.yml", `
base_dir: /srv/repos
remote: upstream
credential_helper: /usr/local/bin/git
log:
  max_lines: 50
ui:
  show_log: false
  filter_error: true
`)
		svc := config.NewConfigService(path, nil)

		cfg, err := svc.LoadFromPath(path)

		require.NoError(t, err)
		assert.Equal(t, "/srv/repos", cfg.BaseDir)
		assert.Equal(t, "upstream", cfg.Remote)
		assert.Equal(t, "/usr/local/bin/git", cfg.CredentialHelper)
		assert.Equal(t, 50, cfg.Log.MaxLines)
		assert.False(t, cfg.UI.ShowLog)
		assert.True(t, cfg.UI.FilterError)
		assert.Equal(t, "upstream", cfg.GitOptions(nil).RemoteName)
	})

	t.Run("should report a parse error", func(t *testing.T) {
		t.Parallel()

		path := writeFile(t, "config.toml", "base_dir = [unterminated")
		svc := config.NewConfigService(path, nil)

		_, err := svc.LoadFromPath(path)

		assert.ErrorContains(t, err, "failed to parse config")
	})

	t.Run("should report a missing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "absent.toml")
		svc := config.NewConfigService(path, nil)

		_, err := svc.LoadFromPath(path)

		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("should fall back to defaults and publish the loaded event", func(t *testing.T) {
		t.Parallel()

		// given
		bus := eventbus.New()
		t.Cleanup(bus.Close)
		loaded := make(chan domain.ConfigLoadedEvent, 1)
		bus.Subscribe(domain.EventConfigLoaded, func(e eventbus.DomainEvent) {
			loaded <- e.(domain.ConfigLoadedEvent)
		})
		svc := config.NewConfigService(filepath.Join(t.TempDir(), "config.toml"), bus)

		// when
		cfg, err := svc.Load()

		// then
		require.NoError(t, err)
		assert.Equal(t, config.DefaultConfig().BaseDir, cfg.BaseDir)
		select {
		case e := <-loaded:
			assert.Equal(t, cfg.BaseDir, e.BaseDir)
		case <-time.After(2 * time.Second):
			t.Fatal("config loaded event not delivered")
		}
	})
}

func TestSaveToPath(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"nested/config.toml", "nested/config.yaml"} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			// given
			path := filepath.Join(t.TempDir(), name)
			svc := config.NewConfigService(path, nil)
			cfg := config.DefaultConfig()
			cfg.BaseDir = "/data/git"
			cfg.Exclude = []string{"tmp/**"}
			cfg.UI.FilterBehind = true

			// when
			require.NoError(t, svc.Save(cfg))
			got, err := svc.Load()

			// then
			require.NoError(t, err)
			assert.Equal(t, cfg, got)
		})
	}
}

func TestRootDir(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := &config.Config{BaseDir: "~/src"}
	assert.Equal(t, filepath.Join(home, "src"), cfg.RootDir())

	cfg.BaseDir = "/abs/src"
	assert.Equal(t, "/abs/src", cfg.RootDir())

	wd, err := os.Getwd()
	require.NoError(t, err)
	cfg.BaseDir = ""
	assert.Equal(t, wd, cfg.RootDir())
}
