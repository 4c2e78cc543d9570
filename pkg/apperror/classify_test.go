package apperror_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealforge/mealforge-go/pkg/apperror"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassify_Returns(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected apperror.Kind
	}{
		{
			name:     "network_when_plain_error",
			err:      errors.New("connection refused"),
			expected: apperror.KindNetwork,
		},
		{
			name:     "network_when_dns_failure",
			err:      &net.DNSError{Err: "no such host", Name: "api.mealforge.test"},
			expected: apperror.KindNetwork,
		},
		{
			name:     "network_when_context_canceled",
			err:      context.Canceled,
			expected: apperror.KindNetwork,
		},
		{
			name:     "timeout_when_deadline_exceeded",
			err:      context.DeadlineExceeded,
			expected: apperror.KindTimeout,
		},
		{
			name:     "timeout_when_wrapped_deadline_exceeded",
			err:      fmt.Errorf("do request: %w", context.DeadlineExceeded),
			expected: apperror.KindTimeout,
		},
		{
			name:     "timeout_when_net_error_reports_timeout",
			err:      timeoutError{},
			expected: apperror.KindTimeout,
		},
		{
			name:     "passthrough_when_already_classified",
			err:      apperror.New(apperror.KindAuthorization, "forbidden"),
			expected: apperror.KindAuthorization,
		},
		{
			name:     "passthrough_when_classified_error_is_wrapped",
			err:      fmt.Errorf("login: %w", apperror.New(apperror.KindRateLimited, "slow down")),
			expected: apperror.KindRateLimited,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := apperror.Classify(tc.err)
			require.NotNil(t, result)
			assert.Equal(t, tc.expected, result.Kind)
		})
	}
}

func TestClassify_NilReturnsNil(t *testing.T) {
	assert.Nil(t, apperror.Classify(nil))
}

func TestClassify_KeepsCause(t *testing.T) {
	cause := &net.OpError{Op: "dial", Err: errors.New("connection reset")}
	result := apperror.Classify(cause)

	require.NotNil(t, result)
	assert.ErrorIs(t, result, cause)
}

func TestFromStatus_StatusTable(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   apperror.Kind
	}{
		{400, apperror.KindValidation},
		{401, apperror.KindAuthentication},
		{403, apperror.KindAuthorization},
		{404, apperror.KindNotFound},
		{409, apperror.KindValidation},
		{429, apperror.KindRateLimited},
		{500, apperror.KindServer},
		{502, apperror.KindServer},
		{503, apperror.KindServer},
		{504, apperror.KindServer},
		{418, apperror.KindUnknown},
		{302, apperror.KindUnknown},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("status_%d", tc.statusCode), func(t *testing.T) {
			result := apperror.FromStatus(tc.statusCode, "some message", nil)
			require.NotNil(t, result)
			assert.Equal(t, tc.expected, result.Kind)
			assert.Equal(t, tc.statusCode, result.StatusCode)
		})
	}
}

func TestFromStatus_ValidationCarriesFields(t *testing.T) {
	fields := map[string]string{"email": "invalid address"}
	result := apperror.FromStatus(400, "validation failed", fields)

	assert.Equal(t, apperror.KindValidation, result.Kind)
	assert.Equal(t, fields, result.Fields)
}

func TestRetryable_Returns(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"validation_not_retryable", apperror.New(apperror.KindValidation, ""), false},
		{"authentication_not_retryable", apperror.New(apperror.KindAuthentication, ""), false},
		{"server_retryable", apperror.New(apperror.KindServer, ""), true},
		{"network_retryable", apperror.New(apperror.KindNetwork, ""), true},
		{"timeout_retryable", apperror.New(apperror.KindTimeout, ""), true},
		{"rate_limited_retryable", apperror.New(apperror.KindRateLimited, ""), true},
		{"raw_error_retryable", errors.New("whatever"), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, apperror.Retryable(tc.err))
		})
	}
}

func TestUserMessage_Returns(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "validation_surfaces_server_text",
			err:      apperror.New(apperror.KindValidation, "email is already taken"),
			expected: "email is already taken",
		},
		{
			name:     "unknown_surfaces_server_text",
			err:      apperror.New(apperror.KindUnknown, "teapot refused"),
			expected: "teapot refused",
		},
		{
			name:     "server_hides_raw_text",
			err:      apperror.New(apperror.KindServer, "pq: deadlock detected at tx 4411"),
			expected: "Something went wrong on our side. Please try again later.",
		},
		{
			name:     "authentication_stable_text",
			err:      apperror.New(apperror.KindAuthentication, "jwt signature mismatch"),
			expected: "Your session has expired. Please sign in again.",
		},
		{
			name:     "untyped_error_maps_to_unknown",
			err:      errors.New("boom"),
			expected: "An unexpected error occurred.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, apperror.UserMessage(tc.err))
		})
	}
}

func TestErrorIs_MatchesOnKind(t *testing.T) {
	err := fmt.Errorf("call: %w", apperror.New(apperror.KindNotFound, "recipe 42"))

	assert.ErrorIs(t, err, apperror.New(apperror.KindNotFound, ""))
	assert.NotErrorIs(t, err, apperror.New(apperror.KindServer, ""))
}

func TestError_MessageFormat(t *testing.T) {
	assert.Equal(t, "not_found: recipe 42", apperror.New(apperror.KindNotFound, "recipe 42").Error())
	assert.Equal(t, "timeout", apperror.New(apperror.KindTimeout, "").Error())
}
