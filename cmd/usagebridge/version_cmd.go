package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/janekbaraniewski/usagebridge/internal/appupdate"
	"github.com/janekbaraniewski/usagebridge/internal/version"
)

func newVersionCommand() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "usagebridge "+version.String())
			if !check {
				return nil
			}

			result, err := appupdate.Check(cmd.Context(), appupdate.CheckOptions{CurrentVersion: version.Version})
			if err != nil {
				return fmt.Errorf("checking for updates: %w", err)
			}
			switch {
			case result.CurrentVersion == "":
				fmt.Fprintln(out, "Development build, update check skipped.")
			case result.UpdateAvailable:
				fmt.Fprintf(out, "Update available: %s -> %s\n  %s\n", result.CurrentVersion, result.LatestVersion, result.UpgradeHint)
			default:
				fmt.Fprintln(out, "Up to date.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "check GitHub for a newer release")
	return cmd
}
