package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/gitsync/internal/output"
	"github.com/marcus/gitsync/internal/version"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print the version",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("gitsync %s\n", versionString())

		check, _ := cmd.Flags().GetBool("check")
		if !check {
			return nil
		}

		result := version.CheckCached(versionString())
		if result.Error != nil {
			output.Warning("update check failed: %v", result.Error)
			return nil
		}
		if result.LatestVersion == "" {
			output.Subtle("development build; update check skipped")
			return nil
		}
		if !result.HasUpdate {
			output.Success("You are on the latest version")
			return nil
		}

		output.Info("Update available: %s -> %s", result.CurrentVersion, result.LatestVersion)
		if cmdLine := version.UpdateCommand(result.LatestVersion); cmdLine != "" {
			output.Subtle("upgrade with: %s", cmdLine)
		}
		return nil
	},
}

func versionString() string {
	if appVersion == "" {
		return "dev"
	}
	return appVersion
}

func init() {
	versionCmd.Flags().Bool("check", false, "check for a newer release")
	rootCmd.AddCommand(versionCmd)
}
