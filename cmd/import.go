package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/marcus/gitsync/internal/output"
	"github.com/marcus/gitsync/internal/syncer"
)

var importCmd = &cobra.Command{
	Use:     "import",
	Short:   "Import the persisted editor state",
	GroupID: "sync",
	Long: `Fetch the persisted snapshot from the configured gist (or from local
storage when no gist is configured) and apply it: allow-listed settings,
keybindings, workspace state, and the extension set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildSyncer()
		if err != nil {
			output.Error("%v", err)
			return err
		}

		res, loc, err := s.Import()
		reportApply(res)
		if err != nil {
			if errors.Is(err, syncer.ErrNoSnapshot) {
				output.Warning("No exported settings found. Run 'gitsync export' first, or 'gitsync setup' for cloud sync.")
				return err
			}
			output.Error("import: %v", err)
			return err
		}

		if loc == syncer.LocationRemote {
			output.Success("Settings imported from GitHub Gist successfully")
		} else {
			output.Success("Settings imported from local storage")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
