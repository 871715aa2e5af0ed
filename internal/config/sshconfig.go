package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/devlg/devlg/internal/errors"
	"github.com/kevinburke/ssh_config"
)

// FromSSHConfig builds a partial session from an alias in ~/.ssh/config,
// used to prefill 'devlg add --from-ssh-config <alias>'. Only the fields
// present in the config are filled; the caller supplies the rest.
func FromSSHConfig(alias string) (Session, error) {
	path := filepath.Join(homeDir(), ".ssh", "config")
	return fromSSHConfigFile(alias, path)
}

func fromSSHConfigFile(alias, path string) (Session, error) {
	// The ssh_config library doesn't support Match directives, so only
	// parse content before the first Match block.
	content, _, err := preprocessSSHConfig(path)
	if err != nil {
		return Session{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't read ~/.ssh/config",
			"Check the file exists and is readable.")
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return Session{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't parse ~/.ssh/config",
			"Check the file for syntax errors.")
	}

	s := Session{
		Name: alias,
		Host: alias,
		Port: 22,
	}

	if hostname, _ := cfg.Get(alias, "HostName"); hostname != "" {
		s.Host = hostname
	}
	if port, _ := cfg.Get(alias, "Port"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			s.Port = p
		}
	}
	if user, _ := cfg.Get(alias, "User"); user != "" {
		s.User = user
	}
	if identity, _ := cfg.Get(alias, "IdentityFile"); identity != "" {
		s.AuthType = AuthKey
		s.KeyPath = ExpandPath(identity)
	}

	return s, nil
}

// preprocessSSHConfig reads the SSH config and returns content up to the
// first Match directive. Returns the original content if no Match
// directive is found, plus the line number where Match was found
// (0 if not found).
func preprocessSSHConfig(configPath string) ([]byte, int, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	var result []string
	matchLine := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), "match ") {
			matchLine = i + 1
			break
		}
		result = append(result, line)
	}

	return []byte(strings.Join(result, "\n")), matchLine, nil
}

// ExpandPath expands a leading ~/ to the home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}
