package cmd

import (
	"github.com/spf13/cobra"

	"github.com/marcus/gitsync/internal/output"
	"github.com/marcus/gitsync/internal/syncer"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export current editor state",
	GroupID: "sync",
	Long: `Capture settings, keybindings, extensions, and workspace state and
persist them to the configured gist, or to local storage when no gist is
configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildSyncer()
		if err != nil {
			output.Error("%v", err)
			return err
		}

		loc, err := s.Export()
		if err != nil {
			output.Error("export: %v", err)
			return err
		}

		if loc == syncer.LocationRemote {
			output.Success("Settings exported to GitHub Gist successfully")
		} else {
			output.Success("Settings exported locally")
			output.Subtle("run 'gitsync setup' to enable cloud sync")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
