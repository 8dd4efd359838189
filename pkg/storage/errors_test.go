package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"
)

// mockAPIError implements smithy.APIError for testing.
type mockAPIError struct {
	code    string
	message string
}

func (e *mockAPIError) ErrorCode() string             { return e.code }
func (e *mockAPIError) ErrorMessage() string          { return e.message }
func (e *mockAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }
func (e *mockAPIError) Error() string                 { return fmt.Sprintf("%s: %s", e.code, e.message) }

func TestWrapS3Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"NoSuchKey code", &mockAPIError{code: "NoSuchKey"}, ErrNotFound},
		{"NotFound code", &mockAPIError{code: "NotFound"}, ErrNotFound},
		{"NoSuchBucket code", &mockAPIError{code: "NoSuchBucket"}, ErrNotFound},
		{"AccessDenied code", &mockAPIError{code: "AccessDenied"}, ErrAccessDenied},
		{"Forbidden code", &mockAPIError{code: "Forbidden"}, ErrAccessDenied},
		{"NoSuchKey typed error", &types.NoSuchKey{}, ErrNotFound},
		{"unknown code", &mockAPIError{code: "SlowDown"}, ErrReadFailed},
		{"plain error", errors.New("connection reset"), ErrReadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			wrapped := wrapS3Error(tt.err, ErrReadFailed)
			require.ErrorIs(t, wrapped, tt.want)
			require.Contains(t, wrapped.Error(), tt.err.Error())
		})
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	require.True(t, IsNotFound(wrapS3Error(&types.NoSuchKey{}, ErrReadFailed)))
	require.False(t, IsNotFound(wrapS3Error(&mockAPIError{code: "AccessDenied"}, ErrReadFailed)))
	require.False(t, IsNotFound(nil))
}
