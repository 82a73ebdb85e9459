package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/gitsync/internal/output"
	"github.com/marcus/gitsync/internal/reconcile"
	"github.com/marcus/gitsync/internal/syncconfig"
)

var prefsCmd = &cobra.Command{
	Use:     "prefs",
	Short:   "Show or change extension-removal preferences",
	GroupID: "system",
	Long: `Removal preferences control whether import may uninstall extensions
that are not in the synced snapshot. Without flags the current preferences are
printed. Setting never-remove overrides always-allow.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := syncconfig.NewPrefStore()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		prefs, err := store.RemovalPrefs()
		if err != nil {
			output.Error("%v", err)
			return err
		}

		changed := false
		if cmd.Flags().Changed("always-allow-removal") {
			prefs.AlwaysAllow, _ = cmd.Flags().GetBool("always-allow-removal")
			changed = true
		}
		if cmd.Flags().Changed("never-remove") {
			prefs.NeverRemove, _ = cmd.Flags().GetBool("never-remove")
			changed = true
		}
		if cmd.Flags().Changed("reset") {
			prefs = reconcile.Prefs{}
			changed = true
		}

		if changed {
			if err := store.SaveRemovalPrefs(prefs); err != nil {
				output.Error("save prefs: %v", err)
				return err
			}
			output.Success("Preferences updated")
		}

		fmt.Printf("always allow removal: %v\n", prefs.AlwaysAllow)
		fmt.Printf("never remove:         %v\n", prefs.NeverRemove)
		if !prefs.AlwaysAllow && !prefs.NeverRemove {
			output.Subtle("removals will prompt for confirmation")
		} else if prefs.NeverRemove {
			output.Subtle("extensions are never removed during import")
		} else {
			output.Subtle("extensions are removed without prompting")
		}
		return nil
	},
}

func init() {
	prefsCmd.Flags().Bool("always-allow-removal", false, "remove extra extensions without prompting")
	prefsCmd.Flags().Bool("never-remove", false, "never remove extensions during import")
	prefsCmd.Flags().Bool("reset", false, "reset both preferences to prompt-every-time")
	rootCmd.AddCommand(prefsCmd)
}
