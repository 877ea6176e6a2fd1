// Package errors provides centralized error definitions and error handling utilities
// for vidparse. It defines the queue's error taxonomy, error constructors with
// context wrapping, and error classification helpers.
//
// # Error Types
//
//   - ValidationWarning: a submission produced no usable input. Recoverable,
//     surfaced to the caller, no state change.
//   - ResolutionFailure: the remote resolver rejected a single link. Recorded on
//     that task; it never propagates beyond the scheduler.
//   - InvariantViolation: an operation referenced a missing task or was called in
//     the wrong run-state. Reported as a warning, the queue is left untouched.
//
// # Usage
//
//	err := errors.NewInvariantViolation("cancel", errors.ErrTaskNotFound).WithTaskID(id)
//
//	if errors.Is(err, errors.ErrTaskNotFound) { ... }
//
//	var rf *errors.ResolutionFailure
//	if errors.As(err, &rf) { ... }
//
//	if errors.IsWarning(err) { logger.Warn(...) }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for recoverable conditions reported to the caller.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Submission sentinel errors
var (
	// ErrEmptySubmission indicates the input contained no non-blank lines.
	ErrEmptySubmission = New("no usable links in submission")
)

// Queue sentinel errors
var (
	// ErrTaskNotFound indicates that a task id is not present in the queue.
	ErrTaskNotFound = New("task not found")
	// ErrInvalidTransition indicates a task is not in a status the operation accepts.
	ErrInvalidTransition = New("invalid status transition")
	// ErrQueueEmpty indicates start was requested on an empty queue.
	ErrQueueEmpty = New("queue is empty")
	// ErrAlreadyRunning indicates start was requested while a batch is running.
	ErrAlreadyRunning = New("queue is already running")
	// ErrNotRunning indicates pause was requested while no batch is running.
	ErrNotRunning = New("queue is not running")
)

// Resolver sentinel errors
var (
	// ErrUnauthorized indicates the resolution service rejected the credentials.
	ErrUnauthorized = New("unauthorized")
	// ErrNoMedia indicates the service answered without a media locator.
	ErrNoMedia = New("no media url in result")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// VidparseError is the base interface for all vidparse errors.
type VidparseError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the error message is safe to display
	// to end users.
	IsUserFacing() bool

	// Message returns the display message without the type prefix or cause.
	Message() string
}

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// Message returns the bare message.
func (e *baseError) Message() string {
	return e.message
}

// -----------------------------------------------------------------------------
// ValidationWarning
// -----------------------------------------------------------------------------

// ValidationWarning reports a submission that could not produce any task.
//
// Example:
//
//	err := errors.NewValidationWarning("enter at least one link")
//	fmt.Println(err) // "validation warning: enter at least one link: no usable links in submission"
type ValidationWarning struct {
	baseError
	Lines int // number of raw lines inspected
}

// NewValidationWarning creates a ValidationWarning wrapping ErrEmptySubmission.
func NewValidationWarning(message string) *ValidationWarning {
	return &ValidationWarning{
		baseError: baseError{
			message:    message,
			cause:      ErrEmptySubmission,
			severity:   SeverityWarning,
			userFacing: true,
		},
	}
}

// WithLines records how many raw lines were inspected.
func (e *ValidationWarning) WithLines(n int) *ValidationWarning {
	e.Lines = n
	return e
}

// Error returns the formatted error message.
func (e *ValidationWarning) Error() string {
	return fmt.Sprintf("validation warning: %s: %v", e.message, e.cause)
}

// Is checks if this error matches the target.
func (e *ValidationWarning) Is(target error) bool {
	if _, ok := target.(*ValidationWarning); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// ResolutionFailure
// -----------------------------------------------------------------------------

// ResolutionFailure is returned by a resolver that could not turn a link into
// a result. The message is what the task records as its error.
//
// Example:
//
//	err := errors.NewResolutionFailure("unsupported platform").WithURL(u).WithStatus(400)
//	fmt.Println(err) // "resolution failed [status=400, url=...]: unsupported platform"
type ResolutionFailure struct {
	baseError
	URL        string
	StatusCode int
}

// NewResolutionFailure creates a new ResolutionFailure.
func NewResolutionFailure(message string) *ResolutionFailure {
	return &ResolutionFailure{
		baseError: baseError{
			message:    message,
			severity:   SeverityError,
			userFacing: true,
		},
	}
}

// WithURL adds the link that failed.
func (e *ResolutionFailure) WithURL(url string) *ResolutionFailure {
	e.URL = url
	return e
}

// WithStatus adds the HTTP status code returned by the service.
func (e *ResolutionFailure) WithStatus(code int) *ResolutionFailure {
	e.StatusCode = code
	return e
}

// WithCause adds a cause to the error.
func (e *ResolutionFailure) WithCause(cause error) *ResolutionFailure {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ResolutionFailure) Error() string {
	var parts []string
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if e.URL != "" {
		parts = append(parts, fmt.Sprintf("url=%s", e.URL))
	}

	prefix := "resolution failed"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("resolution failed [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ResolutionFailure) Is(target error) bool {
	if _, ok := target.(*ResolutionFailure); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// InvariantViolation
// -----------------------------------------------------------------------------

// InvariantViolation reports a control operation that was rejected as a no-op
// because it referenced a missing task or an invalid run-state.
//
// Example:
//
//	err := errors.NewInvariantViolation("remove", errors.ErrTaskNotFound).WithTaskID("abc")
//	fmt.Println(err) // "invariant violation [op=remove, task=abc]: task not found"
type InvariantViolation struct {
	baseError
	Op     string
	TaskID string
}

// NewInvariantViolation creates a new InvariantViolation for the named operation.
// The cause is normally one of the queue sentinel errors.
func NewInvariantViolation(op string, cause error) *InvariantViolation {
	msg := op
	if cause != nil {
		msg = cause.Error()
	}
	return &InvariantViolation{
		baseError: baseError{
			message:    msg,
			cause:      cause,
			severity:   SeverityWarning,
			userFacing: true,
		},
		Op: op,
	}
}

// WithTaskID adds the task the operation referenced.
func (e *InvariantViolation) WithTaskID(id string) *InvariantViolation {
	e.TaskID = id
	return e
}

// WithDetail replaces the display message with a more specific one.
func (e *InvariantViolation) WithDetail(detail string) *InvariantViolation {
	e.message = detail
	return e
}

// Error returns the formatted error message.
func (e *InvariantViolation) Error() string {
	parts := []string{fmt.Sprintf("op=%s", e.Op)}
	if e.TaskID != "" {
		parts = append(parts, fmt.Sprintf("task=%s", e.TaskID))
	}
	return fmt.Sprintf("invariant violation [%s]: %s", strings.Join(parts, ", "), e.message)
}

// Is checks if this error matches the target.
func (e *InvariantViolation) Is(target error) bool {
	if _, ok := target.(*InvariantViolation); ok {
		return true
	}
	return e.baseError.Is(target)
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// IsWarning returns true if the error is a recoverable condition that should
// be reported to the user without treating the operation as failed.
func IsWarning(err error) bool {
	if err == nil {
		return false
	}
	var vErr VidparseError
	if As(err, &vErr) {
		return vErr.Severity() == SeverityWarning
	}
	return false
}

// UserMessage returns a message suitable for display next to a task.
// Resolution failures yield their bare message; unknown errors fall back to
// err.Error().
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var vErr VidparseError
	if As(err, &vErr) && vErr.IsUserFacing() {
		if msg := vErr.Message(); msg != "" {
			return msg
		}
	}
	return err.Error()
}
