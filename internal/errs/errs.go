// Package errs defines the stable error-code vocabulary shared by every
// core component, mirroring the `coded()` helper in the Rust original:
// every externally visible failure is a single human-readable string
// prefixed with a bracketed stable code.
package errs

import "fmt"

type Code string

const (
	RootRequired     Code = "E_ROOT_REQUIRED"
	RootInvalid      Code = "E_ROOT_INVALID"
	RootNotDir       Code = "E_ROOT_NOT_DIR"
	PathOutsideRoot  Code = "E_PATH_OUTSIDE_ROOT"
	DirPathNotDir    Code = "E_DIRPATH_NOT_DIR"
	OutputRequired   Code = "E_OUTPUT_REQUIRED"
	OutputIsDir      Code = "E_OUTPUT_IS_DIR"
	OutputExists     Code = "E_OUTPUT_EXISTS"
	IORead           Code = "E_IO_READ"
	IOWrite          Code = "E_IO_WRITE"
	RuleInvalidGlob  Code = "E_RULE_INVALID_GLOB"
)

// Error is a coded failure. Its Error() form is exactly "[CODE] message",
// matching the wire contract every facade operation returns on failure.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// New builds a coded error with a plain message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a coded error that appends a lower-level cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: fmt.Sprintf("%s: %v", message, cause)}
}
