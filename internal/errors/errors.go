package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors.
// Each code names a phase of the connect pipeline or a supporting
// subsystem, so a failure always says where it happened.
const (
	ErrConfig   = "CONFIG"   // session store / config file problems
	ErrNetwork  = "NETWORK"  // dial or transport handshake failure
	ErrAuth     = "AUTH"     // authentication failure
	ErrChannel  = "CHANNEL"  // PTY/shell channel setup failure
	ErrTerminal = "TERMINAL" // local terminal attribute query/set failure
	ErrRelay    = "RELAY"    // I/O failure mid-session
	ErrExec     = "EXEC"     // external tool (ssh/sshpass/scp) failure
)

// Sentinel causes for AUTH errors. Wrapped as the Cause of a structured
// Error so callers can distinguish them with errors.Is.
var (
	// ErrKeyUnreadable means the private key file is absent or unreadable.
	ErrKeyUnreadable = errors.New("private key unreadable")
	// ErrRejected means the remote refused valid-looking credentials.
	ErrRejected = errors.New("authentication rejected by remote")
	// ErrNotAuthenticated means the auth call reported success but the
	// connection turned out not to be usable.
	ErrNotAuthenticated = errors.New("connection not authenticated")
)

// Error represents a structured error with code, message, suggestion, and
// optional cause. Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrNetwork code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrNetwork,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface with formatted output.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	// Include cause if present (why it failed)
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	// Include suggestion if present (how to fix)
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if an error is a structured Error with the given code.
func IsCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var dlErr *Error
	if errors.As(err, &dlErr) {
		return dlErr.Code == code
	}
	return false
}
