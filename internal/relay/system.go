package relay

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/devlg/devlg/internal/errors"
)

// SystemConnector opens the interactive session by shelling out to the
// system ssh client (via sshpass for password auth). Semantically
// equivalent to the native Coordinator from the caller's point of view.
type SystemConnector struct {
	// runCommand is swappable for tests.
	runCommand func(name string, args []string) error
}

// NewSystemConnector returns a connector backed by the system ssh client.
func NewSystemConnector() *SystemConnector {
	return &SystemConnector{runCommand: runInteractive}
}

// Connect builds and runs the ssh command line for the descriptor. The
// child process inherits the local terminal, so no raw-mode switch
// happens here; ssh manages the terminal itself.
func (s *SystemConnector) Connect(desc Descriptor) error {
	name, args, err := systemSSHCommand(desc)
	if err != nil {
		return err
	}
	if err := s.runCommand(name, args); err != nil {
		return errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("The ssh command for %s failed", desc.Address()),
			"Try running ssh manually to see the full error.")
	}
	return nil
}

// systemSSHCommand maps a descriptor to an argv. Password credentials
// need sshpass; key credentials use plain ssh with -i.
func systemSSHCommand(desc Descriptor) (string, []string, error) {
	var name string
	var args []string

	switch cred := desc.Credential.(type) {
	case PasswordCredential:
		name = "sshpass"
		args = append(args, "-p", cred.Secret, "ssh")
	case KeyCredential:
		name = "ssh"
		args = append(args, "-i", cred.Path)
	default:
		return "", nil, errors.New(errors.ErrExec,
			fmt.Sprintf("Unsupported credential type %T", desc.Credential),
			"This is unexpected - please report this bug!")
	}

	args = append(args,
		"-p", fmt.Sprintf("%d", desc.Port),
		"-l", desc.User,
	)
	if desc.InsecureHostKey {
		args = append(args, "-o", "StrictHostKeyChecking=no")
	}
	args = append(args, desc.Host)
	return name, args, nil
}

func runInteractive(name string, args []string) error {
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
