package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSSHConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestFromSSHConfigFile(t *testing.T) {
	path := writeSSHConfig(t, `
Host mini
    HostName mini.local
    Port 2222
    User admin
    IdentityFile ~/.ssh/mini_ed25519
`)

	s, err := fromSSHConfigFile("mini", path)
	require.NoError(t, err)

	assert.Equal(t, "mini", s.Name)
	assert.Equal(t, "mini.local", s.Host)
	assert.Equal(t, 2222, s.Port)
	assert.Equal(t, "admin", s.User)
	assert.Equal(t, AuthKey, s.AuthType)
	assert.Contains(t, s.KeyPath, ".ssh/mini_ed25519")
	assert.False(t, filepath.IsAbs("~/.ssh/mini_ed25519"))
	assert.True(t, filepath.IsAbs(s.KeyPath), "tilde should be expanded")
}

func TestFromSSHConfigFileUnknownAlias(t *testing.T) {
	path := writeSSHConfig(t, `
Host mini
    HostName mini.local
`)

	s, err := fromSSHConfigFile("other", path)
	require.NoError(t, err)

	// Defaults pass through untouched for unknown aliases
	assert.Equal(t, "other", s.Host)
	assert.Equal(t, 22, s.Port)
	assert.Empty(t, s.User)
}

func TestFromSSHConfigFileStopsAtMatch(t *testing.T) {
	path := writeSSHConfig(t, `
Host early
    HostName early.local

Match host *.corp
    User corp

Host late
    HostName late.local
`)

	s, err := fromSSHConfigFile("early", path)
	require.NoError(t, err)
	assert.Equal(t, "early.local", s.Host)

	// Entries after the Match block are invisible
	s, err = fromSSHConfigFile("late", path)
	require.NoError(t, err)
	assert.Equal(t, "late", s.Host)
}

func TestPreprocessSSHConfig(t *testing.T) {
	path := writeSSHConfig(t, "Host a\nMatch all\nHost b\n")

	content, matchLine, err := preprocessSSHConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, matchLine)
	assert.Contains(t, string(content), "Host a")
	assert.NotContains(t, string(content), "Host b")
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".ssh", "id_rsa"), ExpandPath("~/.ssh/id_rsa"))
	assert.Equal(t, "/etc/ssh/key", ExpandPath("/etc/ssh/key"))
}
