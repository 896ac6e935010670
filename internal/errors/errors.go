package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a ytnb error code.
type ErrorCode string

const (
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"   // 400
	ErrConflict       ErrorCode = "CONFLICT"        // 409, conflicting arguments
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrFileNotFound   ErrorCode = "FILE_NOT_FOUND"  // 404
	ErrToolNotFound   ErrorCode = "TOOL_NOT_FOUND"  // 412, required external binary missing
	ErrQuotaExhausted ErrorCode = "QUOTA_EXHAUSTED" // 429
	ErrRemote         ErrorCode = "REMOTE"          // 502, external tool reported a failure
	ErrTimeout        ErrorCode = "TIMEOUT"         // 504
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// Error represents a structured error with code, status, and details.
type Error struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewInvalidInput creates a 400 error for unusable input (bad URL, empty id, bad flag value).
func NewInvalidInput(msg string) *Error {
	return &Error{
		Code:    ErrInvalidInput,
		Status:  400,
		Message: msg,
	}
}

// NewConflict creates a 409 error for mutually exclusive arguments.
func NewConflict(msg string) *Error {
	return &Error{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a notebook that does not exist.
func NewNotFound(identifier string) *Error {
	return &Error{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("notebook not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing local file.
func NewFileNotFound(path string) *Error {
	return &Error{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewToolNotFound creates a 412 error when a required executable is not installed.
func NewToolNotFound(tool string, err error) *Error {
	return &Error{
		Code:    ErrToolNotFound,
		Status:  412,
		Message: fmt.Sprintf("required tool %q not found in PATH", tool),
		Details: map[string]any{"tool": tool},
		Err:     err,
	}
}

// NewQuotaExhausted creates a 429 error for a generation rejected by the daily limit.
func NewQuotaExhausted(kind, msg string) *Error {
	if msg == "" {
		msg = "daily limit reached"
	}
	return &Error{
		Code:    ErrQuotaExhausted,
		Status:  429,
		Message: msg,
		Details: map[string]any{"kind": kind},
	}
}

// NewRemote creates a 502 error for a failed external command.
// The command output, if any, becomes the message.
func NewRemote(op string, output string, err error) *Error {
	msg := strings.TrimSpace(output)
	if msg == "" && err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrRemote,
		Status:  502,
		Message: fmt.Sprintf("%s: %s", op, msg),
		Details: map[string]any{"op": op, "output": strings.TrimSpace(output)},
		Err:     err,
	}
}

// NewTimeout creates a 504 error for an external call that ran out of time.
func NewTimeout(op string, err error) *Error {
	return &Error{
		Code:    ErrTimeout,
		Status:  504,
		Message: fmt.Sprintf("%s timed out", op),
		Details: map[string]any{"op": op},
		Err:     err,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *Error {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &Error{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
		Err:     err,
	}
}

// Is checks if err (or anything it wraps) is an *Error with the given code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrors.As(err, &e)
	return e, ok
}
