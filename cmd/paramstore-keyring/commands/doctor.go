package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/paramstore-keyring/internal/config"
	"github.com/systmms/paramstore-keyring/pkg/keyring"
	"github.com/systmms/paramstore-keyring/pkg/paramstore"
)

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and backend connectivity",
		Long: `Verify that the selected backend is configured and reachable.

This command checks:
- Configuration file validity
- Region, profile and KMS key settings
- Parameter Store credentials and permissions (ssm:DescribeParameters)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Logger.Info("Checking paramstore-keyring configuration...")
			if err := cfg.Load(); err != nil {
				cfg.Logger.Error("Configuration error: %v", err)
				return err
			}

			backend, err := openBackend(cfg, "")
			if err != nil {
				cfg.Logger.Error("Backend error: %v", err)
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "backend\t%s\n", backend.Name())
			if kr, ok := backend.(*paramstore.Keyring); ok {
				psCfg, err := cfg.ParamStore()
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "region\t%s\n", kr.Region())
				fmt.Fprintf(w, "profile\t%s\n", valueOr(psCfg.Profile, "(default chain)"))
				fmt.Fprintf(w, "key id\t%s\n", valueOr(kr.KeyID(), "(aws/ssm default)"))
				if _, ok := os.LookupEnv(paramstore.KeyIDEnvVar); ok {
					fmt.Fprintf(w, "key id source\t%s\n", paramstore.KeyIDEnvVar)
				}
				if psCfg.AssumeRole != "" {
					fmt.Fprintf(w, "assume role\t%s\n", psCfg.AssumeRole)
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if v, ok := backend.(keyring.Validator); ok {
				if err := v.Validate(context.Background()); err != nil {
					cfg.Logger.Error("%s is not reachable", backend.Name())
					return err
				}
			}

			cfg.Logger.Info("%s backend is ready", backend.Name())
			return nil
		},
	}

	return cmd
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
