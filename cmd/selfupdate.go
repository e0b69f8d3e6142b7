package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"unitscope/internal/release"
)

func newSelfUpdateCmd() *cobra.Command {
	var checkOnly bool

	cmd := &cobra.Command{
		Use:   "self-update",
		Short: "Update unitscope to the latest released version",
		RunE: func(cmd *cobra.Command, args []string) error {
			current := rootCmd.Version

			if checkOnly {
				latest, newer, err := release.CheckLatest(cmd.Context(), current)
				if err != nil {
					return err
				}
				switch {
				case latest == "":
					fmt.Println("No published releases found.")
				case newer:
					fmt.Printf("Version %s is available (current: %s).\n", latest, current)
				default:
					fmt.Printf("Already up to date (%s).\n", current)
				}
				return nil
			}

			updated, err := release.UpdateTo(cmd.Context(), current)
			if err != nil {
				return err
			}
			if updated == current {
				fmt.Printf("Already up to date (%s).\n", current)
				return nil
			}
			fmt.Printf("Updated to %s.\n", updated)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "only check for a newer release")
	return cmd
}
