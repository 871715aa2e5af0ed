// Package relay implements the interactive secure-shell terminal relay:
// it authenticates to a remote host, allocates a PTY channel, switches the
// local terminal into raw passthrough mode, and bridges bytes between the
// local terminal and the remote channel until the session ends. The local
// terminal is restored to its original mode on every exit path.
package relay

import (
	"net"
	"strconv"

	"github.com/devlg/devlg/internal/config"
)

// Descriptor is a fully-resolved connection target. It is supplied by the
// session store and immutable for the duration of one relay invocation.
type Descriptor struct {
	Host       string
	Port       int
	User       string
	Credential Credential

	// InsecureHostKey skips known_hosts verification when true.
	InsecureHostKey bool
}

// Address returns the host:port string for dialing.
func (d *Descriptor) Address() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// Credential is a tagged union: exactly one of KeyCredential or
// PasswordCredential. Which variant is present is a property of the
// descriptor, not negotiated at runtime.
type Credential interface {
	credential()
}

// KeyCredential authenticates with the private key file at Path.
type KeyCredential struct {
	Path string
}

func (KeyCredential) credential() {}

// PasswordCredential authenticates with a password.
type PasswordCredential struct {
	Secret string
}

func (PasswordCredential) credential() {}

// DescriptorFromSession resolves a stored session into a Descriptor.
func DescriptorFromSession(s *config.Session) Descriptor {
	d := Descriptor{
		Host: s.Host,
		Port: s.Port,
		User: s.User,
	}
	switch s.AuthType {
	case config.AuthPassword:
		d.Credential = PasswordCredential{Secret: s.Password}
	default:
		d.Credential = KeyCredential{Path: config.ExpandPath(s.KeyPath)}
	}
	if s.StrictHostKey != nil && !*s.StrictHostKey {
		d.InsecureHostKey = true
	}
	return d
}
