// Package scp copies files between the local machine and stored
// sessions by shelling out to the system scp client.
package scp

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/devlg/devlg/internal/config"
	"github.com/devlg/devlg/internal/errors"
)

// Endpoint is one side of a copy. Session is nil for local paths.
type Endpoint struct {
	Session *config.Session
	Path    string
}

// Remote reports whether the endpoint refers to a stored session.
func (e Endpoint) Remote() bool { return e.Session != nil }

// URI renders the endpoint in scp form. Remote endpoints become
// scp://user@host:port/path so non-default ports work without -P.
func (e Endpoint) URI() string {
	if !e.Remote() {
		return e.Path
	}
	path := e.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("scp://%s@%s:%d%s", e.Session.User, e.Session.Host, e.Session.Port, path)
}

// ParseEndpoint interprets a cp argument. "name:path" where name is a
// stored session resolves to that session; anything else is a local path.
func ParseEndpoint(cfg *config.Config, raw string) (Endpoint, error) {
	name, path, found := strings.Cut(raw, ":")
	if !found || name == "" {
		return Endpoint{Path: raw}, nil
	}
	s := cfg.Get(name)
	if s == nil {
		return Endpoint{Path: raw}, nil
	}
	if path == "" {
		return Endpoint{}, errors.New(errors.ErrConfig,
			fmt.Sprintf("Remote endpoint %q has no path", raw),
			fmt.Sprintf("Use %s:/some/path to name a file on the remote.", name))
	}
	return Endpoint{Session: s, Path: path}, nil
}

// Copier shells out to scp (via sshpass for password auth).
type Copier struct {
	// runCommand is swappable for tests.
	runCommand func(name string, args []string) error
}

// NewCopier returns a Copier backed by the system scp client.
func NewCopier() *Copier {
	return &Copier{runCommand: runScp}
}

// Copy transfers src to dst. Exactly one endpoint may be remote;
// remote-to-remote copies are rejected because scp would route the
// data through a third connection between the two hosts.
func (c *Copier) Copy(src, dst Endpoint, recursive bool) error {
	name, args, err := scpCommand(src, dst, recursive)
	if err != nil {
		return err
	}
	if err := c.runCommand(name, args); err != nil {
		return errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Copying %s to %s failed", src.URI(), dst.URI()),
			"Try running scp manually to see the full error.")
	}
	return nil
}

// scpCommand maps a copy request to an argv.
func scpCommand(src, dst Endpoint, recursive bool) (string, []string, error) {
	if src.Remote() && dst.Remote() {
		return "", nil, errors.New(errors.ErrConfig,
			"Both endpoints are remote sessions",
			"Copy to a local path first, then to the second session.")
	}
	remote := src.Session
	if remote == nil {
		remote = dst.Session
	}
	if remote == nil {
		return "", nil, errors.New(errors.ErrConfig,
			"Neither endpoint names a stored session",
			"Use name:path for the remote side; run 'devlg list' to see session names.")
	}

	var name string
	var args []string
	switch remote.AuthType {
	case config.AuthPassword:
		name = "sshpass"
		args = append(args, "-p", remote.Password, "scp")
	default:
		name = "scp"
		if remote.KeyPath != "" {
			args = append(args, "-i", config.ExpandPath(remote.KeyPath))
		}
	}
	if recursive {
		args = append(args, "-r")
	}
	if remote.StrictHostKey != nil && !*remote.StrictHostKey {
		args = append(args, "-o", "StrictHostKeyChecking=no")
	}
	args = append(args, src.URI(), dst.URI())
	return name, args, nil
}

func runScp(name string, args []string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("%s not found in PATH: %w", name, err)
	}

	cmd := exec.Command(path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
