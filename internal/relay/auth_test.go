package relay

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/devlg/devlg/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// instrumentedAuth wires recording builders into an sshAuthenticator so
// tests can observe exactly which credential path executes.
func instrumentedAuth() (*sshAuthenticator, *struct{ password, key int }) {
	calls := &struct{ password, key int }{}
	a := &sshAuthenticator{
		insecureHostKey: true,
		passwordAuth: func(secret string) (ssh.AuthMethod, error) {
			calls.password++
			return ssh.Password(secret), nil
		},
		keyAuth: func(path string) (ssh.AuthMethod, error) {
			calls.key++
			return ssh.Password("stand-in"), nil
		},
	}
	return a, calls
}

func TestCredentialDispatchPassword(t *testing.T) {
	a, calls := instrumentedAuth()

	method, err := a.methodFor(PasswordCredential{Secret: "pw"})
	require.NoError(t, err)
	assert.NotNil(t, method)

	assert.Equal(t, 1, calls.password)
	assert.Zero(t, calls.key, "key path must not execute for a password credential")
}

func TestCredentialDispatchKey(t *testing.T) {
	a, calls := instrumentedAuth()

	method, err := a.methodFor(KeyCredential{Path: "/some/key"})
	require.NoError(t, err)
	assert.NotNil(t, method)

	assert.Equal(t, 1, calls.key)
	assert.Zero(t, calls.password, "password path must not execute for a key credential")
}

func TestKeyFileAuthMissingFile(t *testing.T) {
	_, err := keyFileAuth("/no/such/key")
	require.Error(t, err)

	assert.True(t, errors.IsCode(err, errors.ErrAuth))
	assert.True(t, stderrors.Is(err, errors.ErrKeyUnreadable))
	assert.False(t, stderrors.Is(err, errors.ErrRejected),
		"an unreadable key is not a remote rejection")
}

func TestKeyFileAuthGarbageKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte("not a key"), 0600))

	_, err := keyFileAuth(path)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrKeyUnreadable))
}

func TestClassifyHandshakeError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantIs   error
	}{
		{
			name:     "auth rejection",
			err:      stderrors.New("ssh: handshake failed: ssh: unable to authenticate, attempted methods [none password]"),
			wantCode: errors.ErrAuth,
			wantIs:   errors.ErrRejected,
		},
		{
			name:     "transport failure",
			err:      stderrors.New("ssh: handshake failed: read tcp: connection reset by peer"),
			wantCode: errors.ErrNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyHandshakeError(tt.err, "example.com:22")
			assert.True(t, errors.IsCode(err, tt.wantCode))
			if tt.wantIs != nil {
				assert.True(t, stderrors.Is(err, tt.wantIs))
			}
		})
	}
}
