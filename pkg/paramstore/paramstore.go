package paramstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	dserrors "github.com/systmms/paramstore-keyring/internal/errors"
	"github.com/systmms/paramstore-keyring/internal/logging"
	"github.com/systmms/paramstore-keyring/pkg/keyring"
)

const (
	// BackendType is the registry name of this backend.
	BackendType = "paramstore"

	// KeyIDEnvVar overrides Config.KeyID when set to a non-empty value.
	KeyIDEnvVar = "PARAMSTORE_KEYRING_KEY_ID"

	// Description is attached to every parameter written by this backend.
	Description = "Stored by keyring"

	// Priority is the backend's preference relative to other keyring backends.
	Priority = 0.5
)

// Config holds Parameter Store backend configuration
type Config struct {
	// Region is required.
	Region string

	// Profile selects a named profile from the shared AWS config files.
	Profile string

	// KeyID is the KMS key used to encrypt values. Empty means the account's
	// default key. Overridden by PARAMSTORE_KEYRING_KEY_ID.
	KeyID string

	// AssumeRole is an optional role ARN assumed before calling SSM.
	AssumeRole string

	// Timeout bounds every remote call. Zero leaves the context untouched.
	Timeout time.Duration
}

// Keyring stores credentials as SecureString parameters
type Keyring struct {
	name          string
	config        Config
	client        SSMClientAPI
	clientFactory ClientFactory
	logger        *logging.Logger
}

// Option is a functional option for configuring a Keyring
type Option func(*Keyring)

// WithSSMClient sets a custom SSM client (for testing)
func WithSSMClient(client SSMClientAPI) Option {
	return func(k *Keyring) {
		k.client = client
	}
}

// WithClientFactory replaces the function used to build the SSM client
func WithClientFactory(factory ClientFactory) Option {
	return func(k *Keyring) {
		k.clientFactory = factory
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(k *Keyring) {
		k.logger = logger
	}
}

// WithName overrides the backend name used in errors and metrics
func WithName(name string) Option {
	return func(k *Keyring) {
		k.name = name
	}
}

// New creates a Parameter Store keyring.
//
// The region is mandatory. The SSM client is built here, once, and reused
// for the lifetime of the Keyring; a failure to build it is returned as a
// ConfigError.
func New(cfg Config, opts ...Option) (*Keyring, error) {
	if cfg.Region == "" {
		return nil, dserrors.ConfigError{
			Field:      "region",
			Message:    "region is required for the Parameter Store backend",
			Suggestion: "Pass --region, set region in the config file, or export AWS_REGION",
		}
	}

	if keyID, ok := os.LookupEnv(KeyIDEnvVar); ok && keyID != "" {
		cfg.KeyID = keyID
	}

	k := &Keyring{
		name:          BackendType,
		config:        cfg,
		clientFactory: NewSSMClient,
		logger:        logging.New(false, false),
	}

	for _, opt := range opts {
		opt(k)
	}

	if k.client == nil {
		client, err := k.clientFactory(context.Background(), cfg)
		if err != nil {
			k.logger.Error("Failed to create SSM client: %v", err)
			return nil, dserrors.ConfigError{
				Field:      "profile",
				Value:      cfg.Profile,
				Message:    fmt.Sprintf("failed to create SSM client: %v", err),
				Suggestion: dserrors.SSMSuggestion(err),
				Err:        err,
			}
		}
		if client == nil {
			return nil, dserrors.ConfigError{Message: "SSM client factory returned no client"}
		}
		k.client = client
	}

	return k, nil
}

// ParameterName derives the parameter name for a credential.
// An empty username yields the service verbatim; otherwise the name is
// "/service/username".
func ParameterName(service, username string) string {
	if username == "" {
		return service
	}
	return "/" + service + "/" + username
}

// Name returns the backend name
func (k *Keyring) Name() string {
	return k.name
}

// Region returns the configured region
func (k *Keyring) Region() string {
	return k.config.Region
}

// KeyID returns the effective KMS key id, after the environment override
func (k *Keyring) KeyID() string {
	return k.config.KeyID
}

// Priority returns the backend priority
func (k *Keyring) Priority() float64 {
	return Priority
}

// Client returns the SSM client shared by all operations
func (k *Keyring) Client() SSMClientAPI {
	return k.client
}

// Set stores password under the derived parameter name, overwriting any
// existing value.
func (k *Keyring) Set(ctx context.Context, service, username, password string) (err error) {
	name := ParameterName(service, username)
	defer observe(k.name, opSet, time.Now(), &err)

	ctx, cancel := k.withTimeout(ctx)
	defer cancel()

	input := &ssm.PutParameterInput{
		Name:        aws.String(name),
		Description: aws.String(Description),
		Value:       aws.String(password),
		Type:        types.ParameterTypeSecureString,
		Overwrite:   aws.Bool(true),
	}
	if k.config.KeyID != "" {
		input.KeyId = aws.String(k.config.KeyID)
	}

	k.logger.Debug("Storing parameter %s (value %s)", name, logging.Secret(password))

	if _, err := k.client.PutParameter(ctx, input); err != nil {
		return k.wrapError("store", service, username, name, err)
	}
	return nil
}

// Get retrieves and decrypts the password stored for (service, username)
func (k *Keyring) Get(ctx context.Context, service, username string) (value string, err error) {
	name := ParameterName(service, username)
	defer observe(k.name, opGet, time.Now(), &err)

	ctx, cancel := k.withTimeout(ctx)
	defer cancel()

	k.logger.Debug("Fetching parameter %s", name)

	result, err := k.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", k.wrapError("fetch", service, username, name, err)
	}

	if result == nil || result.Parameter == nil || result.Parameter.Value == nil {
		return "", fmt.Errorf("parameter %s has no value", name)
	}

	return *result.Parameter.Value, nil
}

// Delete removes the parameter stored for (service, username)
func (k *Keyring) Delete(ctx context.Context, service, username string) (err error) {
	name := ParameterName(service, username)
	defer observe(k.name, opDelete, time.Now(), &err)

	ctx, cancel := k.withTimeout(ctx)
	defer cancel()

	k.logger.Debug("Deleting parameter %s", name)

	if _, err := k.client.DeleteParameter(ctx, &ssm.DeleteParameterInput{
		Name: aws.String(name),
	}); err != nil {
		return k.wrapError("delete", service, username, name, err)
	}
	return nil
}

// Validate checks that the credentials can reach Parameter Store
func (k *Keyring) Validate(ctx context.Context) (err error) {
	defer observe(k.name, opValidate, time.Now(), &err)

	ctx, cancel := k.withTimeout(ctx)
	defer cancel()

	if _, err := k.client.DescribeParameters(ctx, &ssm.DescribeParametersInput{
		MaxResults: aws.Int32(1),
	}); err != nil {
		return dserrors.UserError{
			Message:    fmt.Sprintf("Failed to connect to SSM Parameter Store in %s", k.config.Region),
			Details:    err.Error(),
			Suggestion: dserrors.SSMSuggestion(err),
			Err:        err,
		}
	}
	return nil
}

func (k *Keyring) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if k.config.Timeout > 0 {
		return context.WithTimeout(ctx, k.config.Timeout)
	}
	return ctx, func() {}
}

func (k *Keyring) wrapError(op, service, username, name string, err error) error {
	if isParameterNotFound(err) {
		return &keyring.NotFoundError{
			Backend:  k.name,
			Service:  service,
			Username: username,
			Key:      name,
			Err:      err,
		}
	}
	return dserrors.UserError{
		Message:    fmt.Sprintf("Failed to %s parameter %s", op, name),
		Details:    err.Error(),
		Suggestion: dserrors.SSMSuggestion(err),
		Err:        err,
	}
}

// isParameterNotFound checks if the error is a parameter not found error
func isParameterNotFound(err error) bool {
	var notFound *types.ParameterNotFound
	if errors.As(err, &notFound) {
		return true
	}
	return dserrors.APIErrorCode(err) == "ParameterNotFound"
}

var (
	_ keyring.Backend   = (*Keyring)(nil)
	_ keyring.Validator = (*Keyring)(nil)
)
