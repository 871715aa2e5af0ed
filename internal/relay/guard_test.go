package relay

import (
	stderrors "errors"
	"testing"

	"github.com/devlg/devlg/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/term"
)

// fakeTerminal records terminal attribute calls. The snapshot pointer
// identity stands in for the captured attribute bytes.
type fakeTerminal struct {
	raw          bool
	notTTY       bool
	state        *term.State
	makeRawErr   error
	makeRawCalls int
	restoreCalls int
	restoredWith *term.State
	onRestore    func()
}

func (f *fakeTerminal) IsTerminal(fd int) bool { return !f.notTTY }

func (f *fakeTerminal) MakeRaw(fd int) (*term.State, error) {
	f.makeRawCalls++
	if f.makeRawErr != nil {
		return nil, f.makeRawErr
	}
	f.raw = true
	f.state = new(term.State)
	return f.state, nil
}

func (f *fakeTerminal) Restore(fd int, state *term.State) error {
	f.restoreCalls++
	f.restoredWith = state
	f.raw = false
	if f.onRestore != nil {
		f.onRestore()
	}
	return nil
}

func TestGuardEnterRestore(t *testing.T) {
	ft := &fakeTerminal{}
	guard := NewGuard(0, ft)

	require.NoError(t, guard.Enter())
	assert.True(t, ft.raw)
	assert.True(t, guard.Entered())

	guard.Restore()
	assert.False(t, ft.raw)
	assert.False(t, guard.Entered())
	assert.Equal(t, 1, ft.restoreCalls)

	// The captured snapshot is what gets reapplied
	assert.Same(t, ft.state, ft.restoredWith)
}

func TestGuardRestoreIsIdempotent(t *testing.T) {
	ft := &fakeTerminal{}
	guard := NewGuard(0, ft)

	require.NoError(t, guard.Enter())
	guard.Restore()
	guard.Restore()
	guard.Restore()

	// The snapshot is consumed exactly once
	assert.Equal(t, 1, ft.restoreCalls)
}

func TestGuardRestoreWithoutEnterIsNoop(t *testing.T) {
	ft := &fakeTerminal{}
	guard := NewGuard(0, ft)

	guard.Restore()
	assert.Zero(t, ft.restoreCalls)
}

func TestGuardEnterRefusesNonTerminal(t *testing.T) {
	ft := &fakeTerminal{notTTY: true}
	guard := NewGuard(0, ft)

	err := guard.Enter()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTerminal))
	assert.Zero(t, ft.makeRawCalls, "attributes must not be touched on a non-tty")
	assert.False(t, guard.Entered())
}

func TestGuardRestoreAfterFailedEnterIsNoop(t *testing.T) {
	ft := &fakeTerminal{makeRawErr: stderrors.New("inappropriate ioctl")}
	guard := NewGuard(0, ft)

	err := guard.Enter()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTerminal))
	assert.False(t, guard.Entered())

	guard.Restore()
	assert.Zero(t, ft.restoreCalls, "restore after failed enter must be a no-op")
}
