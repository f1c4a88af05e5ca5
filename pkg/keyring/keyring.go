package keyring

import (
	"context"
	"errors"

	gokeyring "github.com/zalando/go-keyring"
)

// Backend defines the operations every credential backend must implement.
//
// Implementations must be safe for concurrent use.
type Backend interface {
	// Name returns the backend's identifier, e.g. "paramstore" or "native".
	Name() string

	// Set stores password for (service, username), replacing any existing value.
	Set(ctx context.Context, service, username, password string) error

	// Get returns the password stored for (service, username).
	// Returns *NotFoundError if nothing is stored.
	Get(ctx context.Context, service, username string) (string, error)

	// Delete removes the password stored for (service, username).
	// Returns *NotFoundError if nothing is stored.
	Delete(ctx context.Context, service, username string) error
}

// Validator is implemented by backends that can check their connectivity
// and permissions without touching any credential.
type Validator interface {
	Validate(ctx context.Context) error
}

// ErrNotFound is the sentinel matched by every *NotFoundError.
var ErrNotFound = errors.New("credential not found")

// NotFoundError indicates that no credential is stored for a service/username pair.
type NotFoundError struct {
	// Backend is the name of the backend that was queried.
	Backend string

	// Service and Username identify the credential.
	Service  string
	Username string

	// Key is the backend-specific storage key, if any (e.g. a parameter name).
	Key string

	// Err is the underlying backend error.
	Err error
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	key := e.Key
	if key == "" {
		key = e.Service + "/" + e.Username
	}
	return "credential not found: " + key + " in " + e.Backend
}

// Unwrap returns the backend error that caused the lookup to fail.
func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrNotFound or go-keyring's ErrNotFound, so
// callers written against either API can detect a missing credential.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound || target == gokeyring.ErrNotFound
}

// IsNotFound reports whether err signals a missing credential.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
