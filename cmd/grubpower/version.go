package main

import (
	"github.com/spf13/cobra"

	"github.com/GEROGIANNIS/GrubPower/pkg/version"
)

// NewVersionCommand .
func NewVersionCommand() *cobra.Command {
	checkUpdate := false

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.Printf("%s (%s)\n", version.Version, version.GitCommit)

			if !checkUpdate {
				return nil
			}

			latest, newer, err := version.CheckUpdate()
			if err != nil {
				return err
			}
			if newer {
				cmd.Printf("a newer release is available: %s\n", latest)
			} else {
				cmd.Println("you are up to date")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkUpdate, "check-update", false, "check for a newer release")

	return cmd
}
