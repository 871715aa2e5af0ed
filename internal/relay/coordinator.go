package relay

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/devlg/devlg/internal/errors"
	"github.com/devlg/devlg/internal/logger"
)

// Connector opens one interactive session against a descriptor and
// returns a single success/failure outcome. Both the native relay and the
// system-ssh wrapper implement it.
type Connector interface {
	Connect(desc Descriptor) error
}

// Coordinator sequences transport, authentication, channel setup, the
// terminal-mode switch, and the relay loop, and owns the cleanup order:
// close channel, disconnect transport, restore terminal. The terminal is
// restored on every exit path after a successful raw-mode switch,
// including panics inside the relay loop.
type Coordinator struct {
	dialer Dialer
	auth   func(desc Descriptor) Authenticator
	shell  ShellOpener
	term   TerminalMode

	input    io.Reader
	inputFd  int
	output   io.Writer
	pollTick time.Duration
	log      logger.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDialer overrides the transport dialer.
func WithDialer(d Dialer) Option {
	return func(c *Coordinator) { c.dialer = d }
}

// WithAuthenticator overrides the authenticator used for every descriptor.
func WithAuthenticator(a Authenticator) Option {
	return func(c *Coordinator) {
		c.auth = func(Descriptor) Authenticator { return a }
	}
}

// WithShellOpener overrides the channel/shell opener.
func WithShellOpener(s ShellOpener) Option {
	return func(c *Coordinator) { c.shell = s }
}

// WithTerminalMode overrides the terminal attribute implementation.
func WithTerminalMode(t TerminalMode) Option {
	return func(c *Coordinator) { c.term = t }
}

// WithLocalIO overrides local input/output and the fd used for the
// raw-mode switch.
func WithLocalIO(input io.Reader, inputFd int, output io.Writer) Option {
	return func(c *Coordinator) {
		c.input = input
		c.inputFd = inputFd
		c.output = output
	}
}

// WithPollInterval overrides the relay loop's idle sleep.
func WithPollInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.pollTick = d }
}

// WithLogger overrides the coordinator's logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) { c.log = l }
}

// NewCoordinator creates a Coordinator wired to the production
// components: TCP dialer, SSH authenticator, SSH shell opener, and the
// real local terminal.
func NewCoordinator(opts ...Option) *Coordinator {
	c := &Coordinator{
		dialer: NewDialer(),
		auth: func(desc Descriptor) Authenticator {
			return NewAuthenticator(desc.InsecureHostKey)
		},
		shell:    NewShellOpener(),
		term:     NewTerminalMode(),
		input:    os.Stdin,
		inputFd:  int(os.Stdin.Fd()),
		output:   os.Stdout,
		pollTick: DefaultPollInterval,
		log:      logger.NewEnvLogger("[relay]"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect runs one interactive session for the descriptor.
//
// Teardown order is fixed and runs regardless of where a step failed:
// close the channel if opened, disconnect the transport if opened,
// restore the terminal only if raw mode had been entered. The deferred
// calls below are registered in reverse so they unwind in exactly that
// order.
func (c *Coordinator) Connect(desc Descriptor) error {
	guard := NewGuard(c.inputFd, c.term)
	defer guard.Restore()

	addr := desc.Address()
	c.log.Debug("dialing %s", addr)
	conn, err := c.dialer.Dial(desc.Host, desc.Port)
	if err != nil {
		return err
	}

	client, err := c.auth(desc).Authenticate(conn, addr, desc.User, desc.Credential)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	c.log.Debug("authenticated as %s, opening shell", desc.User)
	channel, err := c.shell.OpenShell(client)
	if err != nil {
		return err
	}
	defer channel.Close()

	// The channel is confirmed usable; only now may raw mode begin.
	if err := guard.Enter(); err != nil {
		return err
	}

	bridge := NewBridge(c.input, c.output, channel)
	bridge.SetPollInterval(c.pollTick)
	bridge.SetLogger(c.log)
	return c.runBridge(bridge)
}

// runBridge contains the relay loop's failures: nothing raised inside it,
// panics included, propagates past the coordinator.
func (c *Coordinator) runBridge(bridge *Bridge) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrRelay,
				fmt.Sprintf("The relay loop failed unexpectedly: %v", r),
				"This is unexpected - please report this bug!")
		}
	}()
	return bridge.Run()
}
