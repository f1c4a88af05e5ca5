package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/systmms/paramstore-keyring/internal/config"
	dserrors "github.com/systmms/paramstore-keyring/internal/errors"
	"github.com/systmms/paramstore-keyring/pkg/keyring"
	"github.com/systmms/paramstore-keyring/pkg/paramstore"
)

// newRegistry loads configuration and returns a registry with every backend
// registered. Backends are only constructed on Create, so selecting "native"
// never requires AWS settings.
func newRegistry(cfg *config.Config) (*keyring.Registry, error) {
	if cfg.Settings == nil {
		if err := cfg.Load(); err != nil {
			return nil, err
		}
	}

	psCfg, err := cfg.ParamStore()
	if err != nil {
		return nil, err
	}

	opts := []paramstore.Option{paramstore.WithLogger(cfg.Logger)}
	opts = append(opts, cfg.ParamStoreOptions...)

	r := keyring.NewRegistry()
	paramstore.Register(r, psCfg, opts...)
	return r, nil
}

// openBackend creates the backend of the given type, or the configured one
// when backendType is empty.
func openBackend(cfg *config.Config, backendType string) (keyring.Backend, error) {
	r, err := newRegistry(cfg)
	if err != nil {
		return nil, err
	}

	if backendType == "" {
		backendType = cfg.BackendType()
	}

	if !r.IsSupported(backendType) {
		return nil, dserrors.ConfigError{
			Field:      "backend",
			Value:      backendType,
			Message:    "unknown backend",
			Suggestion: "Use one of: paramstore, native",
		}
	}

	return r.Create(backendType)
}

// credentialArgs splits SERVICE [USERNAME] positional arguments.
func credentialArgs(args []string) (service, username string) {
	service = args[0]
	if len(args) > 1 {
		username = args[1]
	}
	return service, username
}

// notFound converts a missing credential into a user-facing error.
func notFound(backend, service, username string, err error) error {
	if !keyring.IsNotFound(err) {
		return err
	}
	return dserrors.UserError{
		Message:    "No credential stored for " + describeCredential(service, username) + " in " + backend,
		Suggestion: "Store one with 'paramstore-keyring " + strings.TrimSpace("set "+service+" "+username) + "'",
		Err:        err,
	}
}

func describeCredential(service, username string) string {
	if username == "" {
		return "service '" + service + "'"
	}
	return "'" + username + "' in service '" + service + "'"
}

var credentialArgsValidator = cobra.RangeArgs(1, 2)
