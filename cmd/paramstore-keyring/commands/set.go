package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/paramstore-keyring/internal/config"
	dserrors "github.com/systmms/paramstore-keyring/internal/errors"
	"github.com/systmms/paramstore-keyring/internal/logging"
	"github.com/systmms/paramstore-keyring/internal/secure"
)

func NewSetCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set SERVICE [USERNAME]",
		Short: "Store a credential",
		Long: `Store a password for a service and optional username.

The password is read from the first line of standard input. With the
paramstore backend it is written as a SecureString parameter named
/SERVICE/USERNAME (or SERVICE when no username is given), replacing any
existing value.

Examples:
  # Store a password
  echo -n 's3cr3t' | paramstore-keyring set myapp alice

  # Store a token without a username (parameter "myapp")
  paramstore-keyring set myapp < token.txt`,
		Args: credentialArgsValidator,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, username := credentialArgs(args)

			backend, err := openBackend(cfg, "")
			if err != nil {
				return err
			}

			if username != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Password for '%s' in '%s': ", username, service)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "Password for '%s': ", service)
			}

			buf, err := secure.ReadSecret(cmd.InOrStdin())
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				if errors.Is(err, secure.ErrEmptySecret) {
					return dserrors.UserError{
						Message:    "No password given",
						Suggestion: "Pipe the password on standard input",
					}
				}
				return err
			}
			defer buf.Destroy()

			ctx := context.Background()
			if err := buf.WithPlaintext(func(password string) error {
				err := backend.Set(ctx, service, username, password)
				if err != nil {
					// Service validation errors can echo the submitted value.
					cfg.Logger.Debug("%s rejected %s: %s", backend.Name(), describeCredential(service, username),
						logging.Redact(err.Error(), []string{password}))
				}
				return err
			}); err != nil {
				return err
			}

			cfg.Logger.Info("Stored %s in %s", describeCredential(service, username), backend.Name())
			return nil
		},
	}

	return cmd
}
