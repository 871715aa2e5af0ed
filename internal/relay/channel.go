package relay

import (
	"errors"
	"fmt"
	"io"
	"sync"

	dlerrors "github.com/devlg/devlg/internal/errors"
	"golang.org/x/crypto/ssh"
)

// Terminal type and initial geometry requested for the remote PTY.
const (
	termType = "xterm-256color"
	termCols = 80
	termRows = 24
)

// ErrWouldBlock is the non-blocking I/O result indicating no data is
// currently available or writable. Distinct from end-of-stream and from
// hard errors.
var ErrWouldBlock = errors.New("operation would block")

// Channel is the remote PTY/shell channel the bridge relays against.
//
// TryRead never blocks: it returns ErrWouldBlock when no data is pending,
// (0, nil) or io.EOF on graceful remote close, and any other error on
// hard failure.
type Channel interface {
	TryRead(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// ShellOpener requests a pseudo-terminal and an interactive shell over an
// authenticated transport.
type ShellOpener interface {
	OpenShell(client Client) (Channel, error)
}

type sshShellOpener struct{}

// NewShellOpener returns the production ShellOpener.
func NewShellOpener() ShellOpener {
	return sshShellOpener{}
}

// OpenShell opens a session channel, requests a PTY, and starts a shell.
// Each step is independently failable; any failure aborts before the
// local terminal mode is touched.
func (sshShellOpener) OpenShell(client Client) (Channel, error) {
	c, ok := client.(*sshClient)
	if !ok {
		return nil, dlerrors.New(dlerrors.ErrChannel,
			fmt.Sprintf("Can't open a shell on a %T transport", client),
			"This is unexpected - please report this bug!")
	}

	session, err := c.NewSession()
	if err != nil {
		return nil, dlerrors.WrapWithCode(err, dlerrors.ErrChannel,
			"Couldn't open a channel on the connection",
			"The server may limit concurrent sessions.")
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, dlerrors.WrapWithCode(err, dlerrors.ErrChannel,
			"Couldn't attach to the channel's input", "")
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, dlerrors.WrapWithCode(err, dlerrors.ErrChannel,
			"Couldn't attach to the channel's output", "")
	}

	if err := session.RequestPty(termType, termRows, termCols, ssh.TerminalModes{}); err != nil {
		session.Close()
		return nil, dlerrors.WrapWithCode(err, dlerrors.ErrChannel,
			"The server refused to allocate a pseudo-terminal",
			"The remote may not allow PTY allocation for this account.")
	}

	if err := session.Shell(); err != nil {
		session.Close()
		return nil, dlerrors.WrapWithCode(err, dlerrors.ErrChannel,
			"The server refused to start an interactive shell",
			"The account may have no shell, or be restricted to commands.")
	}

	return newSSHChannel(session, stdin, stdout), nil
}

// sshChannel adapts a blocking *ssh.Session to the non-blocking Channel
// contract. A pump goroutine drains the session's output into a chunk
// queue that TryRead pops without blocking.
type sshChannel struct {
	session *ssh.Session
	stdin   io.WriteCloser

	queue *chunkQueue

	mu      sync.Mutex
	pending []byte
	readErr error
	done    bool
}

func newSSHChannel(session *ssh.Session, stdin io.WriteCloser, stdout io.Reader) *sshChannel {
	ch := &sshChannel{
		session: session,
		stdin:   stdin,
		queue:   newChunkQueue(),
	}
	go ch.pump(stdout)
	return ch
}

func (ch *sshChannel) pump(stdout io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			ch.queue.Push(chunk)
		}
		if err != nil {
			ch.mu.Lock()
			ch.readErr = err
			ch.done = true
			ch.mu.Unlock()
			return
		}
	}
}

func (ch *sshChannel) TryRead(p []byte) (int, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if len(ch.pending) == 0 {
		if chunk, ok := ch.queue.Pop(); ok {
			ch.pending = chunk
		}
	}
	if len(ch.pending) > 0 {
		n := copy(p, ch.pending)
		ch.pending = ch.pending[n:]
		return n, nil
	}
	if ch.done {
		if ch.readErr == io.EOF {
			return 0, io.EOF
		}
		return 0, ch.readErr
	}
	return 0, ErrWouldBlock
}

func (ch *sshChannel) Write(p []byte) (int, error) {
	return ch.stdin.Write(p)
}

func (ch *sshChannel) Close() error {
	_ = ch.stdin.Close()
	return ch.session.Close()
}
