// Command sriracha is a grab-bag of data utilities: S3-to-local syncing,
// dataset manifests, run-length segment extraction from time series, and
// CircleCI job triggering.
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/seglab/sriracha/internal/log"
	"github.com/seglab/sriracha/pkg/config"
)

const version = "1.2-" + runtime.GOOS + "/" + runtime.GOARCH

var (
	debug   bool
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:           "sriracha",
	Short:         "Data utilities: S3 sync, segment extraction, CI triggering",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Sync()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sriracha %s\n", version)
	},
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "turn on debugging output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to configuration file (default ~/.sriracha/config.yaml)")
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Errorf("%v", err)
		log.Sync()
		os.Exit(1)
	}
}

// setupLogging initializes the logger, teeing output to a per-command log
// file when a log directory is configured. Commands that run before any
// configuration exists get a plain stderr logger.
func setupLogging(cmd *cobra.Command) error {
	if cmd.Name() == "configure" || cmd.Name() == "version" {
		return log.Init(debug)
	}

	cfg, err := loadConfig()
	if err != nil || cfg.LogDir == "" {
		return log.Init(debug)
	}
	if _, err := log.InitWithFile(debug, cfg.LogDir, "sriracha", cmd.Name()); err != nil {
		return log.Init(debug)
	}
	return nil
}

// loadConfig reads the user configuration from --config or the default
// location.
func loadConfig() (*config.Config, error) {
	provider, err := configProvider()
	if err != nil {
		return nil, err
	}
	return provider.Load()
}

// configProvider returns the provider for the active configuration path,
// whether or not the file exists yet.
func configProvider() (*config.YAMLProvider, error) {
	path := cfgFile
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return config.NewYAMLProvider(path), nil
}
