package cli

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devlg/devlg/internal/errors"
	"github.com/devlg/devlg/internal/ui"
)

func TestFormatErrorStructured(t *testing.T) {
	err := errors.New(errors.ErrConfig, "Session 'web' not found", "Run 'devlg list' to see saved sessions.")
	out := formatError(err)
	assert.Equal(t, err.Error(), out, "structured errors keep their own formatting")
}

func TestFormatErrorPlain(t *testing.T) {
	out := formatError(stderrors.New("unknown flag: --bogus"))
	assert.Equal(t, ui.SymbolFail+" unknown flag: --bogus", out)
}
