package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/systmms/paramstore-keyring/cmd/paramstore-keyring/commands"
	"github.com/systmms/paramstore-keyring/internal/config"
	"github.com/systmms/paramstore-keyring/internal/logging"
	"github.com/systmms/paramstore-keyring/pkg/paramstore"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	memguard.CatchInterrupt()
	defer memguard.Purge()

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		memguard.Purge()
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		noColor bool
		debug   bool
		metrics bool
	)

	cfg := &config.Config{}
	rootCmd := newRootCommand(cfg)

	rootCmd.PersistentFlags().StringVar(&cfg.Path, "config", "", "Config file path (default $XDG_CONFIG_HOME/paramstore-keyring/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&cfg.Backend, "backend", "", "Backend to use: paramstore or native")
	rootCmd.PersistentFlags().StringVar(&cfg.Region, "region", "", "AWS region (falls back to AWS_REGION)")
	rootCmd.PersistentFlags().StringVar(&cfg.Profile, "profile", "", "AWS shared config profile (falls back to AWS_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.KeyID, "key-id", "", "KMS key id for SecureString values ("+paramstore.KeyIDEnvVar+" wins when set)")
	rootCmd.PersistentFlags().StringVar(&cfg.AssumeRole, "assume-role", "", "IAM role ARN to assume before calling SSM")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", 0, "Timeout for each Parameter Store call (e.g. 10s)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&metrics, "metrics", false, "Print Prometheus metrics to stderr on exit")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cfg.Logger = logging.New(debug, noColor)
		if metrics {
			paramstore.InitMetrics()
		}
	}

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	if metrics {
		if dumpErr := dumpMetrics(os.Stderr, prometheus.DefaultGatherer); dumpErr != nil && err == nil {
			err = dumpErr
		}
	}
	return err
}

func newRootCommand(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "paramstore-keyring",
		Short: "Store credentials in AWS SSM Parameter Store",
		Long: `paramstore-keyring stores, retrieves and deletes credentials addressed by
service and username, keeping them as encrypted SecureString parameters in
AWS Systems Manager Parameter Store instead of the local OS keyring.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		commands.NewSetCommand(cfg),
		commands.NewGetCommand(cfg),
		commands.NewDelCommand(cfg),
		commands.NewNameCommand(cfg),
		commands.NewMigrateCommand(cfg),
		commands.NewDoctorCommand(cfg),
	)

	return rootCmd
}

// dumpMetrics writes the keyring's metric families in the text exposition format.
func dumpMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "paramstore_keyring_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
