package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seglab/sriracha/pkg/fileutil"
)

var gzipCmd = &cobra.Command{
	Use:   "gzip PATH",
	Short: "Compress a file to PATH.gz or a directory to PATH.tar.gz",
	Args:  cobra.ExactArgs(1),
	RunE:  runGzip,
}

func init() {
	rootCmd.AddCommand(gzipCmd)
}

func runGzip(cmd *cobra.Command, args []string) error {
	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}

	if info.IsDir() {
		if err := fileutil.GzipDirectory(args[0]); err != nil {
			return err
		}
		fmt.Printf("%s.tar.gz\n", args[0])
		return nil
	}
	if err := fileutil.GzipFile(args[0]); err != nil {
		return err
	}
	fmt.Printf("%s.gz\n", args[0])
	return nil
}
