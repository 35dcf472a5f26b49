package main

import (
	"fmt"

	"github.com/spf13/cobra"

	pywardserver "github.com/HendryAvila/pyward/internal/server"
	"github.com/HendryAvila/pyward/internal/updater"
)

func newVersionCommand() *cobra.Command {
	var check bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print the pyward version",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !check {
				if jsonOutput {
					return writeJSON(cmd, map[string]string{"version": pywardserver.Version})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pyward %s\n", pywardserver.Version)
				return nil
			}

			result, err := updater.Check(cmd.Context(), pywardserver.Version)
			if err != nil {
				return fmt.Errorf("check for updates: %w", err)
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			if !result.UpdateAvailable {
				fmt.Fprintf(out, "pyward %s is up to date\n", pywardserver.Version)
				return nil
			}
			fmt.Fprintf(out, "pyward %s → %s available\n", result.CurrentVersion, result.LatestVersion)
			fmt.Fprintf(out, "Release: %s\n", result.ReleaseURL)
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
