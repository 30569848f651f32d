package errors

import (
	"errors"
	"fmt"
	"net/http"

	"storefront/domain/shared"
)

// ErrorCode application error code
type ErrorCode string

const (
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeUnauthorized   ErrorCode = "UNAUTHORIZED"
	CodeForbidden      ErrorCode = "FORBIDDEN"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"

	// business rule denials, e.g. cancelling a paid order
	CodeBusinessRule ErrorCode = "BUSINESS_RULE_VIOLATION"

	CodeGateway            ErrorCode = "GATEWAY_ERROR"
	CodeGatewayUnavailable ErrorCode = "GATEWAY_UNAVAILABLE"
)

// reasons that mean the payment provider could not be reached
var unavailableReasons = map[string]bool{
	"GATEWAY_UNAVAILABLE": true,
}

// AppError application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Reason  string    `json:"reason,omitempty"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode status for the code
func (e *AppError) HTTPStatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidation, CodeBusinessRule, CodeGateway:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequest:
		return http.StatusTooManyRequests
	case CodeGatewayUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message)
}

func TooManyRequests(message string) *AppError {
	return New(CodeTooManyRequest, message)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

// Is reports whether err is an AppError with the given code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// FromDomainError maps an error chain onto the application taxonomy.
// The sentinel picks the code; the domain reason travels along for clients.
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	reason := shared.ReasonOf(err)
	wrap := func(code ErrorCode) *AppError {
		return &AppError{Code: code, Reason: reason, Message: messageOf(err), Err: err}
	}

	switch {
	case errors.Is(err, shared.ErrNotFound):
		return wrap(CodeNotFound)
	case errors.Is(err, shared.ErrConflict):
		return wrap(CodeConflict)
	case errors.Is(err, shared.ErrInvalidInput):
		return wrap(CodeValidation)
	case errors.Is(err, shared.ErrUnauthorized):
		return wrap(CodeUnauthorized)
	case errors.Is(err, shared.ErrForbidden):
		return wrap(CodeForbidden)
	case errors.Is(err, shared.ErrBusinessRule):
		return wrap(CodeBusinessRule)
	case errors.Is(err, shared.ErrGateway):
		if unavailableReasons[reason] {
			return wrap(CodeGatewayUnavailable)
		}
		return wrap(CodeGateway)
	default:
		return Wrap(err, CodeInternal, "internal server error")
	}
}

// messageOf prefers the human message of a DomainError over the full chain text
func messageOf(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return err.Error()
}
