package relay

import (
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/devlg/devlg/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Client is an authenticated transport handle. It owns the underlying
// connection; closing it disconnects the transport.
type Client interface {
	io.Closer
}

// Authenticator proves identity to the remote host using exactly one
// credential kind and returns the authenticated transport.
type Authenticator interface {
	Authenticate(conn net.Conn, addr, user string, cred Credential) (Client, error)
}

// sshClient wraps the real SSH connection.
type sshClient struct {
	*ssh.Client
}

// sshAuthenticator performs the SSH handshake and user authentication.
// The per-variant auth builders are fields so tests can instrument which
// path executes.
type sshAuthenticator struct {
	insecureHostKey bool

	passwordAuth func(secret string) (ssh.AuthMethod, error)
	keyAuth      func(path string) (ssh.AuthMethod, error)
}

// NewAuthenticator returns the production Authenticator.
// When insecureHostKey is set, known_hosts verification is skipped.
func NewAuthenticator(insecureHostKey bool) Authenticator {
	return &sshAuthenticator{
		insecureHostKey: insecureHostKey,
		passwordAuth:    passwordAuth,
		keyAuth:         keyFileAuth,
	}
}

// methodFor maps a credential variant to its auth method. Dispatch is a
// pure function of the variant; only the matching builder runs.
func (a *sshAuthenticator) methodFor(cred Credential) (ssh.AuthMethod, error) {
	switch c := cred.(type) {
	case PasswordCredential:
		return a.passwordAuth(c.Secret)
	case KeyCredential:
		return a.keyAuth(c.Path)
	}
	return nil, errors.New(errors.ErrAuth,
		fmt.Sprintf("Unsupported credential type %T", cred),
		"This is unexpected - please report this bug!")
}

func (a *sshAuthenticator) Authenticate(conn net.Conn, addr, user string, cred Credential) (Client, error) {
	method, err := a.methodFor(cred)
	if err != nil {
		return nil, err
	}

	var hostKeys ssh.HostKeyCallback
	if a.insecureHostKey {
		hostKeys = ssh.InsecureIgnoreHostKey() //nolint:gosec // explicit per-session opt-out
	} else {
		hostKeys, err = hostKeyCallback()
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrNetwork,
				"Couldn't load known_hosts",
				"Check permissions on ~/.ssh/known_hosts.")
		}
	}

	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{method},
		HostKeyCallback: hostKeys,
		Timeout:         DialTimeout,
	}

	// The handshake phase shares the dial timeout. The deadline is
	// cleared afterwards; the interactive phase must not time out.
	_ = conn.SetDeadline(time.Now().Add(DialTimeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		return nil, classifyHandshakeError(err, addr)
	}
	_ = conn.SetDeadline(time.Time{})

	client := &sshClient{Client: ssh.NewClient(sshConn, chans, reqs)}

	// The auth call reporting success does not by itself guarantee an
	// authenticated connection. Re-check by round-tripping a global
	// request on it before touching the terminal.
	if _, _, err := client.SendRequest("keepalive@openssh.com", true, nil); err != nil {
		client.Close()
		return nil, errors.WrapWithCode(
			fmt.Errorf("%w: %v", errors.ErrNotAuthenticated, err),
			errors.ErrAuth,
			fmt.Sprintf("Connection to %s closed right after authentication", addr),
			"The server may restrict this account. Check the remote logs.")
	}

	return client, nil
}

// classifyHandshakeError splits authentication rejections from transport
// handshake failures. Both surface from the same library call.
func classifyHandshakeError(err error, addr string) error {
	errStr := err.Error()
	if strings.Contains(errStr, "unable to authenticate") ||
		strings.Contains(errStr, "no supported methods remain") {
		return errors.WrapWithCode(
			fmt.Errorf("%w: %v", errors.ErrRejected, err),
			errors.ErrAuth,
			fmt.Sprintf("Authentication to %s was rejected", addr),
			"Check the stored credential matches the remote account.")
	}

	var mismatch *HostKeyMismatchError
	if stderrors.As(err, &mismatch) {
		return errors.New(errors.ErrNetwork, mismatch.Error(), mismatch.Suggestion())
	}

	return errors.WrapWithCode(err, errors.ErrNetwork,
		fmt.Sprintf("SSH handshake with %s didn't go through", addr),
		"Try connecting manually first: ssh <host>")
}

func passwordAuth(secret string) (ssh.AuthMethod, error) {
	return ssh.Password(secret), nil
}

// keyFileAuth reads and parses the private key at path. Absent or
// unparsable key material fails with ErrKeyUnreadable, distinct from a
// remote rejection.
func keyFileAuth(path string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(
			fmt.Errorf("%w: %v", errors.ErrKeyUnreadable, err),
			errors.ErrAuth,
			fmt.Sprintf("Can't read the private key at %s", path),
			"Check the path and file permissions.")
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		suggestion := "Check the file holds a valid private key."
		if strings.Contains(err.Error(), "encrypted") || strings.Contains(err.Error(), "passphrase") {
			suggestion = "The key is passphrase protected. Decrypt it or use a plain key."
		}
		return nil, errors.WrapWithCode(
			fmt.Errorf("%w: %v", errors.ErrKeyUnreadable, err),
			errors.ErrAuth,
			fmt.Sprintf("Can't parse the private key at %s", path),
			suggestion)
	}

	return ssh.PublicKeys(signer), nil
}
