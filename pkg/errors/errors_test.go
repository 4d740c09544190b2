package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "booking not found",
			},
			expected: "NOT_FOUND: booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeDependency,
				Message: "staff directory call failed",
				Err:     errors.New("connection refused"),
			},
			expected: "DEPENDENCY_FAILURE: staff directory call failed (caused by: connection refused)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	assert.Same(t, originalErr, errors.Unwrap(appErr))
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "12345")

	assert.Equal(t, CodeNotFound, err.Code)
	assert.Equal(t, http.StatusNotFound, err.StatusCode())
	assert.Equal(t, "12345", err.Details["id"])
	assert.Equal(t, "Booking", err.Details["resource"])
}

func TestPrecondition(t *testing.T) {
	err := Precondition("booking is not approved")

	assert.Equal(t, CodePrecondition, err.Code)
	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
	assert.False(t, err.Retryable)
}

func TestDependency(t *testing.T) {
	cause := errors.New("i/o timeout")
	err := Dependency("staff directory", cause)

	assert.Equal(t, CodeDependency, err.Code)
	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus)
	assert.True(t, err.Retryable)
	assert.ErrorIs(t, err, cause)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "plain error", err: errors.New("boom"), want: false},
		{name: "precondition", err: Precondition("no"), want: false},
		{name: "dependency", err: Dependency("db", errors.New("down")), want: true},
		{name: "wrapped dependency", err: fmt.Errorf("attempt: %w", Dependency("db", nil)), want: true},
		{name: "deadline", err: fmt.Errorf("load staff: %w", context.DeadlineExceeded), want: true},
		{name: "timeout", err: Timeout("materialization timed out"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Task")
	regularErr := errors.New("regular error")

	assert.Same(t, appErr, AsAppError(appErr))
	assert.Same(t, appErr, AsAppError(fmt.Errorf("wrapped: %w", appErr)))

	result := AsAppError(regularErr)
	assert.Equal(t, CodeInternal, result.Code)
	assert.Same(t, regularErr, result.Err)
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("materialize: %w", Precondition("already materialized"))

	assert.True(t, HasCode(err, CodePrecondition))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("x"), CodePrecondition))
}

func TestAppError_ToJSON(t *testing.T) {
	err := NotFoundWithID("Task", "abc")
	body := string(err.ToJSON())

	require.NotEmpty(t, body)
	assert.Contains(t, body, "NOT_FOUND")
	assert.Contains(t, body, "Task not found")
}
