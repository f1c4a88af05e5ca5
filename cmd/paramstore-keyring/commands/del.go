package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/systmms/paramstore-keyring/internal/config"
)

func NewDelCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "del SERVICE [USERNAME]",
		Aliases: []string{"delete", "rm"},
		Short:   "Delete a stored credential",
		Args:    credentialArgsValidator,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, username := credentialArgs(args)

			backend, err := openBackend(cfg, "")
			if err != nil {
				return err
			}

			if err := backend.Delete(context.Background(), service, username); err != nil {
				return notFound(backend.Name(), service, username, err)
			}

			cfg.Logger.Info("Deleted %s from %s", describeCredential(service, username), backend.Name())
			return nil
		},
	}

	return cmd
}
