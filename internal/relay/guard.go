package relay

import (
	"github.com/devlg/devlg/internal/errors"
	"golang.org/x/term"
)

// TerminalMode abstracts the local terminal attribute calls so tests can
// inject fakes. The production implementation is x/term.
type TerminalMode interface {
	IsTerminal(fd int) bool
	MakeRaw(fd int) (*term.State, error)
	Restore(fd int, state *term.State) error
}

type realTerminalMode struct{}

// NewTerminalMode returns the production TerminalMode.
func NewTerminalMode() TerminalMode {
	return realTerminalMode{}
}

func (realTerminalMode) IsTerminal(fd int) bool { return term.IsTerminal(fd) }

func (realTerminalMode) MakeRaw(fd int) (*term.State, error) { return term.MakeRaw(fd) }

func (realTerminalMode) Restore(fd int, state *term.State) error { return term.Restore(fd, state) }

// Guard scopes the local terminal's raw-mode switch. Enter captures the
// original attributes and applies raw mode in one step; Restore reapplies
// the captured attributes. The snapshot exists only after a successful
// Enter, and Restore is safe to call any number of times on any exit
// path, including after a failed Enter.
type Guard struct {
	fd    int
	mode  TerminalMode
	state *term.State
}

// NewGuard creates a guard for the terminal on fd.
func NewGuard(fd int, mode TerminalMode) *Guard {
	return &Guard{fd: fd, mode: mode}
}

// Enter captures the current terminal attributes and switches the
// terminal into raw mode, so every keystroke is forwarded verbatim: no
// line buffering, no local echo, no signal keys, no output processing.
// It refuses non-terminal input up front, before any attribute call.
func (g *Guard) Enter() error {
	if !g.mode.IsTerminal(g.fd) {
		return errors.New(errors.ErrTerminal,
			"Local input isn't a terminal",
			"Interactive sessions need a tty. Run devlg directly in a terminal, not through a pipe.")
	}

	state, err := g.mode.MakeRaw(g.fd)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTerminal,
			"Couldn't switch the local terminal to raw mode",
			"Run devlg from an interactive terminal.")
	}
	g.state = state
	return nil
}

// Restore reapplies the attributes captured by Enter. It is a no-op when
// Enter never succeeded, and idempotent: the snapshot is consumed on the
// first call.
func (g *Guard) Restore() {
	if g.state == nil {
		return
	}
	_ = g.mode.Restore(g.fd, g.state)
	g.state = nil
}

// Entered reports whether raw mode is currently in effect.
func (g *Guard) Entered() bool {
	return g.state != nil
}
