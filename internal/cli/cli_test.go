package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/devlg/devlg/internal/config"
)

// withTempConfig points the CLI at a throwaway config file seeded with
// two sessions and returns it. cfgPath is restored on cleanup.
func withTempConfig(t *testing.T) *config.Config {
	t.Helper()

	orig := cfgPath
	cfgPath = filepath.Join(t.TempDir(), "config.yaml")
	t.Cleanup(func() { cfgPath = orig })

	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Add(config.Session{
		Name:     "web",
		Host:     "example.com",
		User:     "deploy",
		Port:     22,
		AuthType: config.AuthKey,
		KeyPath:  "~/.ssh/id_ed25519",
		Tags:     []string{"prod", "frontend"},
	}))
	require.NoError(t, cfg.Add(config.Session{
		Name:     "db",
		Host:     "db.internal",
		User:     "admin",
		Port:     2222,
		AuthType: config.AuthPassword,
		Password: "hunter2",
		Tags:     []string{"prod", "backend"},
	}))
	require.NoError(t, cfg.SaveTo(cfgPath))
	return cfg
}

// reloadConfig re-reads the temp config to observe persisted changes.
func reloadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(cfgPath)
	require.NoError(t, err)
	return cfg
}
