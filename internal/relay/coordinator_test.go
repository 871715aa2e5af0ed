package relay

import (
	"bytes"
	stderrors "errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/devlg/devlg/internal/config"
	"github.com/devlg/devlg/internal/errors"
	"github.com/devlg/devlg/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// events is a shared teardown-order recorder.
type events struct {
	order []string
}

func (e *events) add(name string) { e.order = append(e.order, name) }

type fakeDialer struct {
	conn  net.Conn
	err   error
	calls int
}

func (d *fakeDialer) Dial(host string, port int) (net.Conn, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

type fakeClient struct {
	ev *events
}

func (c *fakeClient) Close() error {
	c.ev.add("transport.disconnect")
	return nil
}

type fakeAuthenticator struct {
	client Client
	err    error
	calls  int
}

func (a *fakeAuthenticator) Authenticate(conn net.Conn, addr, user string, cred Credential) (Client, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return a.client, nil
}

type fakeOpener struct {
	channel Channel
	err     error
}

func (o *fakeOpener) OpenShell(client Client) (Channel, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.channel, nil
}

// closeRecordingChannel logs the channel close event.
type closeRecordingChannel struct {
	*scriptedChannel
	ev *events
}

func (c *closeRecordingChannel) Close() error {
	c.ev.add("channel.close")
	return c.scriptedChannel.Close()
}

// panicChannel simulates a bug inside the relay loop.
type panicChannel struct {
	scriptedChannel
}

func (c *panicChannel) TryRead(p []byte) (int, error) {
	panic("injected relay failure")
}

type fixture struct {
	coord *Coordinator
	ev    *events
	term  *fakeTerminal
	auth  *fakeAuthenticator
}

func newFixture(t *testing.T, ch Channel, mutate ...func(*fixture)) *fixture {
	t.Helper()

	f := &fixture{
		ev:   &events{},
		term: &fakeTerminal{},
	}
	f.term.onRestore = func() { f.ev.add("terminal.restore") }
	f.auth = &fakeAuthenticator{client: &fakeClient{ev: f.ev}}

	clientConn, serverConn := net.Pipe()
	t.Cleanup(func() {
		clientConn.Close()
		serverConn.Close()
	})

	opts := []Option{
		WithDialer(&fakeDialer{conn: clientConn}),
		WithAuthenticator(f.auth),
		WithShellOpener(&fakeOpener{channel: ch}),
		WithTerminalMode(f.term),
		WithLocalIO(strings.NewReader(""), 0, &bytes.Buffer{}),
		WithPollInterval(time.Microsecond),
		WithLogger(logger.Noop()),
	}
	f.coord = NewCoordinator(opts...)
	for _, m := range mutate {
		m(f)
	}
	return f
}

func passwordDesc() Descriptor {
	return Descriptor{
		Host:       "h",
		Port:       22,
		User:       "u",
		Credential: PasswordCredential{Secret: "pw"},
	}
}

func TestConnectSuccessImmediateEOF(t *testing.T) {
	// Transport and auth succeed, the channel opens then immediately
	// EOFs: the call succeeds and the terminal is restored.
	ch := &scriptedChannel{}
	f := newFixture(t, ch)
	f.coord.shell = &fakeOpener{channel: &closeRecordingChannel{scriptedChannel: ch, ev: f.ev}}

	require.NoError(t, f.coord.Connect(passwordDesc()))

	assert.False(t, f.term.raw, "terminal must not stay raw")
	assert.Equal(t, 1, f.term.makeRawCalls)
	assert.Equal(t, 1, f.term.restoreCalls)
	assert.Same(t, f.term.state, f.term.restoredWith, "restore must reapply the captured snapshot")

	// Fixed teardown order: channel, then transport, then terminal.
	assert.Equal(t, []string{"channel.close", "transport.disconnect", "terminal.restore"}, f.ev.order)
}

func TestConnectEchoSession(t *testing.T) {
	input := "ls\n"
	ch := &scriptedChannel{echo: true, eofAfter: len(input)}
	var out bytes.Buffer

	f := newFixture(t, ch, func(f *fixture) {
		WithLocalIO(strings.NewReader(input), 0, &out)(f.coord)
	})

	require.NoError(t, f.coord.Connect(passwordDesc()))
	assert.Equal(t, input, out.String())
	assert.Equal(t, 1, f.term.restoreCalls)
}

func TestConnectKeyUnreadableLeavesTerminalUntouched(t *testing.T) {
	// The real authenticator fails reading the key before any remote
	// step; the terminal is never captured, never modified.
	ch := &scriptedChannel{}
	f := newFixture(t, ch, func(f *fixture) {
		f.coord.auth = func(desc Descriptor) Authenticator {
			return NewAuthenticator(desc.InsecureHostKey)
		}
	})

	desc := Descriptor{
		Host:       "h",
		Port:       22,
		User:       "u",
		Credential: KeyCredential{Path: "/no/such/key"},
	}
	err := f.coord.Connect(desc)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
	assert.True(t, stderrors.Is(err, errors.ErrKeyUnreadable))

	assert.Zero(t, f.term.makeRawCalls, "terminal must never be captured")
	assert.Zero(t, f.term.restoreCalls, "nothing to restore")
}

func TestConnectAuthFailureLeavesTerminalUntouched(t *testing.T) {
	ch := &scriptedChannel{}
	f := newFixture(t, ch, func(f *fixture) {
		f.auth.err = errors.New(errors.ErrAuth, "Authentication was rejected", "")
	})

	err := f.coord.Connect(passwordDesc())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
	assert.Zero(t, f.term.makeRawCalls)
	assert.Zero(t, f.term.restoreCalls)
}

func TestConnectDialFailure(t *testing.T) {
	f := newFixture(t, &scriptedChannel{}, func(f *fixture) {
		f.coord.dialer = &fakeDialer{err: errors.New(errors.ErrNetwork, "Can't reach h:22", "")}
	})

	err := f.coord.Connect(passwordDesc())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))
	assert.Zero(t, f.auth.calls, "auth must not run when the dial failed")
	assert.Zero(t, f.term.makeRawCalls)
}

func TestConnectChannelFailureBeforeRawMode(t *testing.T) {
	// Channel setup failure aborts before any terminal-mode change.
	f := newFixture(t, &scriptedChannel{}, func(f *fixture) {
		f.coord.shell = &fakeOpener{err: errors.New(errors.ErrChannel, "PTY refused", "")}
	})

	err := f.coord.Connect(passwordDesc())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrChannel))

	assert.Zero(t, f.term.makeRawCalls, "raw mode must not be entered before the channel is usable")
	// Transport still torn down
	assert.Equal(t, []string{"transport.disconnect"}, f.ev.order)
}

func TestConnectTerminalRestoredOnRelayError(t *testing.T) {
	// Error injection after a successful raw-mode switch: the terminal
	// attributes after the call equal the captured snapshot.
	tests := []struct {
		name    string
		channel Channel
		wantErr bool
	}{
		{
			name:    "remote EOF",
			channel: &scriptedChannel{},
			wantErr: false,
		},
		{
			name:    "remote hard error",
			channel: &scriptedChannel{readErr: stderrors.New("connection reset")},
			wantErr: true,
		},
		{
			name:    "panic inside the relay loop",
			channel: &panicChannel{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.channel)

			err := f.coord.Connect(passwordDesc())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrRelay))
			} else {
				require.NoError(t, err)
			}

			assert.False(t, f.term.raw)
			assert.Equal(t, 1, f.term.restoreCalls)
			assert.Same(t, f.term.state, f.term.restoredWith)
		})
	}
}

func TestConnectRawModeFailureStillTearsDown(t *testing.T) {
	ch := &scriptedChannel{}
	f := newFixture(t, ch, func(f *fixture) {
		f.coord.shell = &fakeOpener{channel: &closeRecordingChannel{scriptedChannel: ch, ev: f.ev}}
		f.term.makeRawErr = stderrors.New("inappropriate ioctl")
	})

	err := f.coord.Connect(passwordDesc())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTerminal))

	// Channel and transport close; restore stays a no-op.
	assert.Equal(t, []string{"channel.close", "transport.disconnect"}, f.ev.order)
	assert.Zero(t, f.term.restoreCalls)
}

func configSession() config.Session {
	return config.Session{
		Name:     "web",
		Host:     "example.com",
		User:     "deploy",
		Port:     22,
		AuthType: config.AuthKey,
		KeyPath:  "~/.ssh/id_ed25519",
	}
}

func TestDescriptorFromSession(t *testing.T) {
	strict := false
	s := configSession()
	s.StrictHostKey = &strict

	d := DescriptorFromSession(&s)
	assert.Equal(t, "example.com", d.Host)
	assert.Equal(t, 22, d.Port)
	assert.Equal(t, "deploy", d.User)
	assert.True(t, d.InsecureHostKey)
	cred, ok := d.Credential.(KeyCredential)
	require.True(t, ok)
	assert.NotEmpty(t, cred.Path)

	s.AuthType = "password"
	s.Password = "pw"
	d = DescriptorFromSession(&s)
	pw, ok := d.Credential.(PasswordCredential)
	require.True(t, ok)
	assert.Equal(t, "pw", pw.Secret)

	assert.Equal(t, "example.com:22", d.Address())
}
