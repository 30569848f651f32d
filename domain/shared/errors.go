/*
Package shared - shared domain kernel: sentinel errors, money, identity, events.

Error design:
1. Sentinel errors classify failures for errors.Is().
2. DomainError carries a stable machine Reason next to the human Message.
3. The stack is captured when the error is created and formatted only when logged.
4. No transport concepts (HTTP status codes) live here.
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ============================================================================
// Sentinel Errors
// ============================================================================

var (
	// ErrNotFound resource not found
	ErrNotFound = errors.New("not found")

	// ErrConflict duplicate resource or concurrent modification
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput malformed or missing input
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized caller is not authenticated
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden caller is authenticated but the action is denied
	ErrForbidden = errors.New("forbidden")

	// ErrBusinessRule action denied by a business rule (cancel a paid order, ...)
	ErrBusinessRule = errors.New("business rule violation")

	// ErrGateway upstream payment provider failure
	ErrGateway = errors.New("gateway error")
)

// ============================================================================
// Domain Error
// ============================================================================

// DomainError structured domain error with a stable reason and a creation-time stack
type DomainError struct {
	// Err sentinel used for errors.Is()
	Err error

	// Entity name of the entity involved ("order", "product", ...)
	Entity string

	// Reason stable machine-distinguishable code, e.g. INSUFFICIENT_STOCK
	Reason string

	// Message human readable description
	Message string

	// Field optional offending field
	Field string

	// Cause optional underlying failure; logged, never shown to clients
	Cause error

	stack []uintptr
}

// Error implements error
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel and the cause
func (e *DomainError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// Stack formats the captured stack on demand
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// ErrorReason implements Reasoner
func (e *DomainError) ErrorReason() string {
	return e.Reason
}

// ============================================================================
// Stack helpers
// ============================================================================

// CaptureStack captures the current call stack.
// skip: frames to skip (usually 3: Callers, CaptureStack, NewXxxError)
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack formats at most 10 non-runtime frames
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) > 10 {
			break
		}
	}
	return result
}

// ============================================================================
// Constructors
// ============================================================================

// NewError builds a DomainError with the given sentinel and reason.
// Sub-domain packages use it for their own reasons.
func NewError(sentinel error, entity, reason, field, message string) *DomainError {
	return &DomainError{
		Err:     sentinel,
		Entity:  entity,
		Reason:  reason,
		Field:   field,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewNotFoundError creates a "not found" error
func NewNotFoundError(entity string) error {
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Reason:  strings.ToUpper(entity) + "_NOT_FOUND",
		Message: entity + " not found",
		stack:   CaptureStack(3),
	}
}

// NewConflictError creates a conflict error
func NewConflictError(entity, message string) error {
	return &DomainError{
		Err:     ErrConflict,
		Entity:  entity,
		Reason:  "CONFLICT",
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewValidationError creates a validation error
func NewValidationError(entity, field, message string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Reason:  "VALIDATION_FAILED",
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewForbiddenError creates an authorization denial
func NewForbiddenError(entity, message string) error {
	return &DomainError{
		Err:     ErrForbidden,
		Entity:  entity,
		Reason:  "FORBIDDEN",
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewUnauthorizedError creates an authentication failure
func NewUnauthorizedError(message string) error {
	return &DomainError{
		Err:     ErrUnauthorized,
		Entity:  "identity",
		Reason:  "UNAUTHENTICATED",
		Message: message,
		stack:   CaptureStack(3),
	}
}

// ============================================================================
// Interfaces used by the API layer
// ============================================================================

// Stacker error that can report its stack
type Stacker interface {
	Stack() []string
}

// Reasoner error that carries a stable machine reason
type Reasoner interface {
	ErrorReason() string
}

// ReasonOf returns the first reason found in the error chain
func ReasonOf(err error) string {
	var r Reasoner
	if errors.As(err, &r) {
		return r.ErrorReason()
	}
	return ""
}
