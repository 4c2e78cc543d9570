package apperror

import (
	"errors"
	"fmt"
	"strings"
)

const (
	KindUnknown Kind = iota
	KindNetwork
	KindTimeout
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindServer
	KindRateLimited
)

type (
	// Kind is one member of the closed set of failure categories. Callers
	// switch on Kind instead of matching error types.
	Kind int

	// Error is the only error type that crosses the API client boundary.
	Error struct {
		Kind       Kind
		Message    string
		StatusCode int
		// Fields holds server-supplied field-level validation messages,
		// keyed by field name. Populated for KindValidation only.
		Fields map[string]string

		cause error
	}
)

var kindNames = map[Kind]string{
	KindUnknown:        "unknown",
	KindNetwork:        "network",
	KindTimeout:        "timeout",
	KindValidation:     "validation",
	KindAuthentication: "authentication",
	KindAuthorization:  "authorization",
	KindNotFound:       "not_found",
	KindServer:         "server",
	KindRateLimited:    "rate_limited",
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return "unknown"
	}
	return name
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func NewValidation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is makes errors.Is(err, apperror.New(kind, "")) match on Kind alone, the
// way sentinel comparisons work elsewhere.
func (e *Error) Is(target error) bool {
	var appErr *Error
	if !errors.As(target, &appErr) {
		return false
	}
	return e.Kind == appErr.Kind
}

// KindOf reports the Kind of an already-classified error, or KindUnknown for
// anything else including nil.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Retryable reports whether an error may be retried. Validation and
// authentication failures are not transient and must propagate immediately.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindAuthentication:
		return false
	default:
		return true
	}
}

var userMessages = map[Kind]string{
	KindNetwork:        "Could not reach the server. Check your connection and try again.",
	KindTimeout:        "The request took too long. Please try again.",
	KindValidation:     "Some of the submitted values are invalid.",
	KindAuthentication: "Your session has expired. Please sign in again.",
	KindAuthorization:  "You do not have access to this resource.",
	KindNotFound:       "The requested item could not be found.",
	KindServer:         "Something went wrong on our side. Please try again later.",
	KindRateLimited:    "Too many requests. Please wait a moment and try again.",
	KindUnknown:        "An unexpected error occurred.",
}

// UserMessage maps every error to exactly one stable, non-technical string.
// Server-supplied text is surfaced only for validation and unknown failures,
// where it is assumed human-readable.
func UserMessage(err error) string {
	var appErr *Error
	if !errors.As(err, &appErr) {
		return userMessages[KindUnknown]
	}

	switch appErr.Kind {
	case KindValidation, KindUnknown:
		if msg := strings.TrimSpace(appErr.Message); msg != "" {
			return msg
		}
	default:
	}

	return userMessages[appErr.Kind]
}
