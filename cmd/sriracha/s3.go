package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seglab/sriracha/pkg/remote"
)

var s3ToLocalCmd = &cobra.Command{
	Use:   "s3-to-local S3_PATH",
	Short: "Mirror an S3 object or prefix into the local sync directory",
	Long: `Downloads s3://bucket/key (or everything under a prefix) into the
configured local sync directory and prints the resulting local path.

A path with no scheme is assumed to be local already and is printed unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runS3ToLocal,
}

var getManifestCmd = &cobra.Command{
	Use:   "get-manifest S3_PREFIX",
	Short: "Print the dataset manifest found under an S3 prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetManifest,
}

var (
	s3Mode     string
	s3Includes []string
)

func init() {
	s3ToLocalCmd.Flags().StringVarP(&s3Mode, "mode", "m", remote.SizeAndTimestamp.String(),
		"download mode: always, if-not-exists, size-only, size-and-timestamp, never")
	s3ToLocalCmd.Flags().StringArrayVarP(&s3Includes, "include", "i", nil,
		"glob pattern of keys to download (repeatable, directories only)")
	rootCmd.AddCommand(s3ToLocalCmd)
	rootCmd.AddCommand(getManifestCmd)
}

func runS3ToLocal(cmd *cobra.Command, args []string) error {
	mode, err := remote.ParseDownloadMode(s3Mode)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	client, err := remote.NewClient(cfg.LocalSyncDir)
	if err != nil {
		return err
	}

	localPath, err := client.S3ToLocal(cmd.Context(), args[0], mode, s3Includes)
	if err != nil {
		return err
	}
	fmt.Println(localPath)
	return nil
}

func runGetManifest(cmd *cobra.Command, args []string) error {
	client, err := remote.NewClient("")
	if err != nil {
		return err
	}

	key, body, err := client.FindManifest(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Printf("# %s\n%s", key, body)
	return nil
}
