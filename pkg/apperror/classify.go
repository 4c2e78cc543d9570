package apperror

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
)

// Classify converts a raw transport or runtime failure into a typed Error.
// It is total: every non-nil input maps to exactly one Kind and the function
// never panics. Already-classified errors pass through unchanged.
//
// A failure that reaches Classify carries no HTTP response, so the outcome
// is KindNetwork unless the cause indicates a client-side timeout. Responses
// with an error status go through FromStatus instead.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if isTimeout(err) {
		return Wrap(KindTimeout, "request timed out", err)
	}

	return Wrap(KindNetwork, "request failed before a response was received", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return os.IsTimeout(err)
}

// FromStatus maps an HTTP error status to a typed Error. The message and
// field messages come from the response body when the server supplied them.
// Statuses outside the known set map to KindUnknown with the server message
// preserved.
func FromStatus(statusCode int, message string, fields map[string]string) *Error {
	switch {
	case statusCode == http.StatusBadRequest || statusCode == http.StatusConflict:
		return &Error{Kind: KindValidation, Message: message, StatusCode: statusCode, Fields: fields}
	case statusCode == http.StatusUnauthorized:
		return &Error{Kind: KindAuthentication, Message: message, StatusCode: statusCode}
	case statusCode == http.StatusForbidden:
		return &Error{Kind: KindAuthorization, Message: message, StatusCode: statusCode}
	case statusCode == http.StatusNotFound:
		return &Error{Kind: KindNotFound, Message: message, StatusCode: statusCode}
	case statusCode == http.StatusTooManyRequests:
		return &Error{Kind: KindRateLimited, Message: message, StatusCode: statusCode}
	case statusCode >= http.StatusInternalServerError && statusCode <= 599:
		return &Error{Kind: KindServer, Message: message, StatusCode: statusCode}
	default:
		return &Error{Kind: KindUnknown, Message: message, StatusCode: statusCode}
	}
}
