// Package domainerrors provides coded errors for the service layer.
//
// Stores return sentinel errors (pkg/platform/sentinel) describing
// infrastructure facts; services translate them into coded domain errors which
// the HTTP layer maps to status codes. Handlers never inspect raw store errors.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error. The set is closed; adding a code means
// deciding its HTTP mapping and its retry semantics.
type Code string

const (
	// CodeInvalidInput marks malformed request data (unparseable ids, bad JSON).
	CodeInvalidInput Code = "invalid_input"
	// CodeValidation marks requests that parse but violate a domain rule.
	CodeValidation Code = "validation_failed"
	// CodeUnauthenticated marks requests without a valid session principal.
	CodeUnauthenticated Code = "unauthenticated"
	// CodeRoleNotPermitted marks principals whose role is outside the
	// operation's required role set.
	CodeRoleNotPermitted Code = "role_not_permitted"
	// CodeFeatureNotGranted marks principals whose explicit feature grant list
	// does not include the operation's feature.
	CodeFeatureNotGranted Code = "feature_not_granted"
	// CodeTenantNotFound marks principals for which school resolution
	// exhausted every fallback. Terminal, never retried.
	CodeTenantNotFound Code = "tenant_not_found"
	// CodeNotFound covers both a genuinely absent resource and a resource
	// living in another school. The two are deliberately indistinguishable so
	// responses never leak cross-tenant existence.
	CodeNotFound Code = "not_found"
	// CodeConflict marks failed state preconditions (resource no longer PENDING).
	CodeConflict Code = "conflict"
	// CodeUnavailable marks transient store failures. Callers may back off and
	// retry; every other code is terminal for the request.
	CodeUnavailable Code = "unavailable"
	// CodeInternal is the catch-all for unexpected failures.
	CodeInternal Code = "internal"
)

// Error is a coded domain error, optionally wrapping a cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded error with no cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for uncoded
// errors so nothing unexpected maps to a 4xx.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-safe message for err. Uncoded errors get a
// generic message; internal detail never reaches a response body.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a code to the status the HTTP layer writes.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeRoleNotPermitted, CodeFeatureNotGranted:
		return http.StatusForbidden
	case CodeTenantNotFound, CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
