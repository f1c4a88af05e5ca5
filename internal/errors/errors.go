package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// UserError represents an error that should be shown to the user with helpful context
type UserError struct {
	Message    string
	Suggestion string
	Details    string
	Err        error
}

func (e UserError) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Details != "" {
		parts = append(parts, "\n  Details: "+e.Details)
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  💡 Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e UserError) Unwrap() error {
	return e.Err
}

// ConfigError represents a configuration error with helpful context
type ConfigError struct {
	Field      string
	Value      interface{}
	Message    string
	Suggestion string
	Err        error
}

func (e ConfigError) Error() string {
	msg := "Configuration error"
	if e.Field != "" {
		msg += fmt.Sprintf(" in field '%s'", e.Field)
	}
	if e.Value != nil {
		msg += fmt.Sprintf(" (value: %v)", e.Value)
	}
	msg += ": " + e.Message

	if e.Suggestion != "" {
		msg += "\n  💡 " + e.Suggestion
	}

	return msg
}

func (e ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError reports whether err is or wraps a ConfigError
func IsConfigError(err error) bool {
	var ce ConfigError
	return errors.As(err, &ce)
}

// APIErrorCode returns the service error code carried by err, or "" if err
// did not come from an AWS API response.
func APIErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// SSMSuggestion provides a hint for a Parameter Store failure
func SSMSuggestion(err error) string {
	if err == nil {
		return ""
	}

	switch APIErrorCode(err) {
	case "AccessDeniedException", "AccessDenied":
		return "Check IAM permissions: ssm:PutParameter, ssm:GetParameter, ssm:DeleteParameter and kms:Decrypt/kms:Encrypt for the key"
	case "ParameterNotFound":
		return "Verify the service and username. Parameter names are case-sensitive"
	case "InvalidKeyId":
		return "The KMS key does not exist or you lack permission to use it. Check key_id or PARAMSTORE_KEYRING_KEY_ID"
	case "ParameterLimitExceeded":
		return "The account has reached its parameter quota. Delete unused parameters or switch to the advanced tier"
	case "ThrottlingException":
		return "Request was throttled. Wait a moment and try again"
	case "UnrecognizedClientException", "InvalidSignatureException", "ExpiredTokenException":
		return "Refresh your AWS credentials: 'aws sso login' or check AWS_PROFILE"
	case "ValidationException":
		return "Parameter names may only contain letters, numbers and . - _ / and must be at most 2048 characters"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "no ec2 imds role found"), strings.Contains(errStr, "failed to retrieve credentials"):
		return "Configure AWS credentials: 'aws configure' or set AWS_PROFILE"
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return "The operation timed out. Check your network connection and region"
	case strings.Contains(errStr, "no such host"), strings.Contains(errStr, "connection refused"):
		return "Unable to reach Parameter Store. Check your network and region"
	default:
		return "Check AWS credentials, region, and IAM permissions for SSM Parameter Store"
	}
}
