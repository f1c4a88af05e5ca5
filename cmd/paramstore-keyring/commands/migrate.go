package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/paramstore-keyring/internal/config"
	dserrors "github.com/systmms/paramstore-keyring/internal/errors"
	"github.com/systmms/paramstore-keyring/internal/secure"
	"github.com/systmms/paramstore-keyring/pkg/keyring"
)

func NewMigrateCommand(cfg *config.Config) *cobra.Command {
	var (
		from         string
		to           string
		deleteSource bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "migrate SERVICE [USERNAME]",
		Short: "Copy a credential between backends",
		Long: `Copy a credential from one backend to another, by default from the
operating system's keyring into Parameter Store.

Examples:
  # Move a password off the local keychain
  paramstore-keyring migrate myapp alice --delete-source

  # Copy back from Parameter Store to the OS keyring
  paramstore-keyring migrate myapp alice --from paramstore --to native`,
		Args: credentialArgsValidator,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, username := credentialArgs(args)

			if from == to {
				return dserrors.UserError{
					Message:    fmt.Sprintf("Source and destination are both '%s'", from),
					Suggestion: "Pick different --from and --to backends",
				}
			}

			source, err := openBackend(cfg, from)
			if err != nil {
				return err
			}
			dest, err := openBackend(cfg, to)
			if err != nil {
				return err
			}

			ctx := context.Background()
			if err := migrate(ctx, source, dest, service, username, deleteSource, dryRun); err != nil {
				return err
			}

			switch {
			case dryRun:
				cfg.Logger.Info("Would copy %s from %s to %s", describeCredential(service, username), source.Name(), dest.Name())
			case deleteSource:
				cfg.Logger.Info("Moved %s from %s to %s", describeCredential(service, username), source.Name(), dest.Name())
			default:
				cfg.Logger.Info("Copied %s from %s to %s", describeCredential(service, username), source.Name(), dest.Name())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "native", "Source backend")
	cmd.Flags().StringVar(&to, "to", "paramstore", "Destination backend")
	cmd.Flags().BoolVar(&deleteSource, "delete-source", false, "Delete the credential from the source after copying")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Check the source credential exists without writing")

	return cmd
}

// migrate copies one credential. The source is only deleted once the
// destination write succeeded.
func migrate(ctx context.Context, source, dest keyring.Backend, service, username string, deleteSource, dryRun bool) error {
	value, err := source.Get(ctx, service, username)
	if err != nil {
		return notFound(source.Name(), service, username, err)
	}

	buf, err := secure.NewSecureBufferFromString(value)
	if err != nil {
		return dserrors.UserError{
			Message: fmt.Sprintf("Credential %s in %s is empty", describeCredential(service, username), source.Name()),
			Err:     err,
		}
	}
	defer buf.Destroy()

	if dryRun {
		return nil
	}

	if err := buf.WithPlaintext(func(password string) error {
		return dest.Set(ctx, service, username, password)
	}); err != nil {
		return err
	}

	if deleteSource {
		if err := source.Delete(ctx, service, username); err != nil {
			return fmt.Errorf("copied to %s but failed to delete from %s: %w", dest.Name(), source.Name(), err)
		}
	}
	return nil
}
