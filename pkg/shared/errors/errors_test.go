package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "input", err: NewInputError("url", "expected github.com/owner/repo"), want: "invalid url: expected github.com/owner/repo"},
		{name: "wrapped repo not found", err: fmt.Errorf("resolve: %w", ErrRepositoryNotFound), want: "Repo not found or not a public repo with Rust files."},
		{name: "expired upload", err: &UploadExpiredError{ExtractedPath: "/tmp/x"}, want: "The uploaded archive has expired. Please upload it again."},
		{name: "shape", err: &ResponseShapeError{Op: "export", Reason: "missing csv"}, want: "The audit service returned an unexpected response."},
		{name: "unreachable", err: &BackendError{Op: "health", Err: errors.New("dial tcp")}, want: "The audit service could not be reached."},
		{name: "status", err: &BackendError{Op: "health", StatusCode: 500}, want: "The audit service rejected the request (status 500)."},
		{name: "other", err: errors.New("boom"), want: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestBackendErrorUnwrapAndNotFound(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("discover: %w", &BackendError{Op: "discover", Err: cause})
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsNotFound(err))

	assert.True(t, IsNotFound(&BackendError{Op: "get", StatusCode: 404}))
}
