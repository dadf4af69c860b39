package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seglab/sriracha/pkg/circleci"
)

var runCICmd = &cobra.Command{
	Use:   "run-ci PROJECT JOB",
	Short: "Trigger a CircleCI job on a project branch",
	Args:  cobra.ExactArgs(2),
	RunE:  runCI,
}

var (
	ciBranch   string
	ciRevision string
	ciTag      string
	ciOrg      string
)

func init() {
	runCICmd.Flags().StringVarP(&ciBranch, "branch", "b", "master", "branch to build")
	runCICmd.Flags().StringVarP(&ciRevision, "revision", "r", "", "build a specific commit")
	runCICmd.Flags().StringVarP(&ciTag, "tag", "t", "", "build a git tag")
	runCICmd.Flags().StringVarP(&ciOrg, "organization", "o", "", "VCS organization (default "+circleci.DefaultOrganization+")")
	rootCmd.AddCommand(runCICmd)
}

func runCI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := circleci.New(cfg.CircleCIAPIToken)
	client.Organization = ciOrg

	resp, err := client.TriggerJob(cmd.Context(), args[0], ciBranch, args[1], ciRevision, ciTag)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
