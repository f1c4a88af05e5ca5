package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/paramstore-keyring/internal/config"
	"github.com/systmms/paramstore-keyring/pkg/paramstore"
)

func NewGetCommand(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "get SERVICE [USERNAME]",
		Short: "Print a stored credential",
		Long: `Retrieve and display a stored password.

By default only the raw value is printed, making it suitable for scripting.

Examples:
  # Get a password
  paramstore-keyring get myapp alice

  # Use in scripts
  export DB_PASSWORD=$(paramstore-keyring get myapp alice)

  # JSON output with the parameter name
  paramstore-keyring get myapp alice --json`,
		Args: credentialArgsValidator,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, username := credentialArgs(args)

			backend, err := openBackend(cfg, "")
			if err != nil {
				return err
			}

			value, err := backend.Get(context.Background(), service, username)
			if err != nil {
				return notFound(backend.Name(), service, username, err)
			}

			if !jsonOutput {
				fmt.Fprint(cmd.OutOrStdout(), value)
				return nil
			}

			output := map[string]interface{}{
				"backend": backend.Name(),
				"service": service,
				"value":   value,
			}
			if username != "" {
				output["username"] = username
			}
			if _, ok := backend.(*paramstore.Keyring); ok {
				output["parameter"] = paramstore.ParameterName(service, username)
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(output); err != nil {
				return fmt.Errorf("failed to encode JSON: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format with metadata")

	return cmd
}
