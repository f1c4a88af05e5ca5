package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/paramstore-keyring/internal/config"
	"github.com/systmms/paramstore-keyring/pkg/paramstore"
)

func NewNameCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "name SERVICE [USERNAME]",
		Short: "Print the parameter name a credential is stored under",
		Long: `Print the Parameter Store name derived from SERVICE and USERNAME
without contacting AWS.

  paramstore-keyring name myapp alice   # /myapp/alice
  paramstore-keyring name myapp         # myapp`,
		Args: credentialArgsValidator,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, username := credentialArgs(args)
			fmt.Fprintln(cmd.OutOrStdout(), paramstore.ParameterName(service, username))
			return nil
		},
	}
}
