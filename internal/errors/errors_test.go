package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"

	"github.com/systmms/paramstore-keyring/internal/errors"
)

func TestUserErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.UserError{
		Message:    "Operation failed",
		Details:    "Connection timeout",
		Suggestion: "Check network connectivity",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "Operation failed")
	assert.Contains(t, errMsg, "Details: Connection timeout")
	assert.Contains(t, errMsg, "💡 Try: Check network connectivity")
}

func TestUserErrorFallsBackToWrappedMessage(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("boom")
	err := errors.UserError{Err: cause}

	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestConfigErrorFormatting(t *testing.T) {
	t.Parallel()

	err := errors.ConfigError{
		Field:      "region",
		Value:      "",
		Message:    "region is required",
		Suggestion: "Pass --region or set AWS_REGION",
	}

	errMsg := err.Error()

	assert.Contains(t, errMsg, "in field 'region'")
	assert.Contains(t, errMsg, "region is required")
	assert.Contains(t, errMsg, "Pass --region")
	assert.True(t, errors.IsConfigError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, errors.IsConfigError(stderrors.New("other")))
}

func TestSSMSuggestion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "access denied",
			err:  &smithy.GenericAPIError{Code: "AccessDeniedException", Message: "not authorized"},
			want: "IAM permissions",
		},
		{
			name: "invalid key",
			err:  fmt.Errorf("put: %w", &smithy.GenericAPIError{Code: "InvalidKeyId"}),
			want: "KMS key",
		},
		{
			name: "throttled",
			err:  &smithy.GenericAPIError{Code: "ThrottlingException"},
			want: "throttled",
		},
		{
			name: "missing credentials",
			err:  stderrors.New("failed to retrieve credentials: no EC2 IMDS role found"),
			want: "aws configure",
		},
		{
			name: "timeout",
			err:  stderrors.New("context deadline exceeded"),
			want: "timed out",
		},
		{
			name: "unknown",
			err:  stderrors.New("something else"),
			want: "Check AWS credentials",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Contains(t, errors.SSMSuggestion(tt.err), tt.want)
		})
	}

	assert.Empty(t, errors.SSMSuggestion(nil))
}

func TestAPIErrorCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ParameterNotFound", errors.APIErrorCode(&smithy.GenericAPIError{Code: "ParameterNotFound"}))
	assert.Empty(t, errors.APIErrorCode(stderrors.New("plain")))
}
