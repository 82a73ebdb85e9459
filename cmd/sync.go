package cmd

import (
	"github.com/spf13/cobra"

	"github.com/marcus/gitsync/internal/output"
	"github.com/marcus/gitsync/internal/syncer"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Export, then re-import",
	GroupID: "sync",
	Long: `Upload the current editor state, then immediately download and apply
the persisted snapshot. The snapshot is a single last-writer-wins document;
whatever lands last wins wholesale.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := buildSyncer()
		if err != nil {
			output.Error("%v", err)
			return err
		}

		res, loc, err := s.Sync()
		reportApply(res)
		if err != nil {
			output.Error("sync: %v", err)
			return err
		}

		if loc == syncer.LocationRemote {
			output.Success("Settings synced with GitHub Gist successfully")
		} else {
			output.Success("Settings synced locally")
			output.Subtle("run 'gitsync setup' to enable cloud sync")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
