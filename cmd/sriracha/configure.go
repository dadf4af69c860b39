package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seglab/sriracha/pkg/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set up the local sync directory, log directory, and API tokens",
	Long: `Writes the per-user configuration file (default ~/.sriracha/config.yaml).

Only the values passed as flags are changed; everything else is preserved.
Passing an empty string clears a value.`,
	RunE: runConfigure,
}

var (
	cfgLocalSyncDir string
	cfgLogDir       string
	cfgCircleToken  string
)

func init() {
	configureCmd.Flags().StringVarP(&cfgLocalSyncDir, "local-sync-dir", "s", "", "local mirror directory for S3 downloads")
	configureCmd.Flags().StringVarP(&cfgLogDir, "log-dir", "l", "", "directory for per-command log files")
	configureCmd.Flags().StringVarP(&cfgCircleToken, "circleci-api-token", "c", "", "personal CircleCI API token")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	provider, err := configProvider()
	if err != nil {
		return err
	}

	cfg, err := provider.Load()
	if errors.Is(err, config.ErrNotConfigured) {
		cfg = &config.Config{}
	} else if err != nil {
		return err
	}

	if cmd.Flags().Changed("local-sync-dir") {
		cfg.LocalSyncDir = config.ExpandHome(cfgLocalSyncDir)
	}
	if cmd.Flags().Changed("log-dir") {
		cfg.LogDir = config.ExpandHome(cfgLogDir)
	}
	if cmd.Flags().Changed("circleci-api-token") {
		cfg.CircleCIAPIToken = cfgCircleToken
	}

	if err := provider.Save(cfg); err != nil {
		return fmt.Errorf("can't save configuration: %w", err)
	}
	fmt.Printf("wrote %s\n", provider.Path())
	return nil
}
