package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/gitsync/internal/auth"
	"github.com/marcus/gitsync/internal/editor"
	"github.com/marcus/gitsync/internal/gist"
	"github.com/marcus/gitsync/internal/output"
	"github.com/marcus/gitsync/internal/snapshot"
	"github.com/marcus/gitsync/internal/syncconfig"
	"github.com/marcus/gitsync/internal/ui"
)

var setupCmd = &cobra.Command{
	Use:     "setup",
	Short:   "Connect this machine to a sync gist",
	GroupID: "sync",
	Long: `Authenticate with GitHub, then bind this machine to the gist that holds
your synced settings. Existing sync gists are discovered by description tag;
if none fits, a new private gist is created from your current settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		withToken, _ := cmd.Flags().GetBool("with-token")
		return runSetup(withToken)
	},
}

func runSetup(withToken bool) error {
	ws := syncconfig.FindWorkspaceRoot(getBaseDir())
	cfg, err := syncconfig.Load(ws)
	if err != nil {
		output.Error("load config: %v", err)
		return err
	}
	if cfg == nil {
		cfg = &syncconfig.RemoteConfig{}
	}

	// Reuse a stored token when it still authenticates; otherwise run the
	// login flow before touching any gists.
	client, user, err := ensureClient(cfg, withToken)
	if err != nil {
		reportAuthError(err)
		return err
	}
	output.Info("Authenticated as %s", user.Login)

	gists, err := client.List()
	if err != nil {
		output.Error("list gists: %v", err)
		return err
	}

	var chosen *gist.Gist
	matches := gist.FilterSyncGists(gists)
	if len(matches) > 0 && ui.IsTerminal() {
		id, createNew, err := ui.ChooseGist(matches)
		if err != nil {
			return err
		}
		if !createNew {
			for i := range matches {
				if matches[i].ID == id {
					chosen = &matches[i]
				}
			}
		}
	} else if len(matches) == 1 {
		// Non-interactive with exactly one candidate: take it.
		chosen = &matches[0]
	}

	if chosen == nil {
		chosen, err = createSyncGist(client, ws)
		if err != nil {
			output.Error("create gist: %v", err)
			return err
		}
		output.Info("Created gist %s", chosen.ID)
	}

	cfg.GistID = chosen.ID
	cfg.GistDescription = chosen.Description
	path, err := syncconfig.Save(cfg, ws)
	if err != nil {
		output.Error("save config: %v", err)
		return err
	}

	output.Success("GitHub sync setup completed successfully!")
	output.Subtle("configuration saved to %s", path)
	return nil
}

// ensureClient returns an authenticated client, running the login flow when
// the stored token is absent or no longer accepted.
func ensureClient(cfg *syncconfig.RemoteConfig, withToken bool) (*gist.Client, *gist.User, error) {
	if cfg.Token != "" {
		user, err := verifyToken(cfg.Token)
		if err == nil {
			return gist.New(cfg.Token), user, nil
		}
		if !errors.Is(err, auth.ErrRemoteRejected) {
			return nil, nil, err
		}
		output.Warning("stored token no longer accepted; re-authenticating")
	}

	token, err := obtainToken(withToken)
	if err != nil {
		return nil, nil, err
	}
	user, err := verifyToken(token)
	if err != nil {
		return nil, nil, err
	}
	cfg.Token = token
	return gist.New(token), user, nil
}

// createSyncGist seeds a new private gist with the current editor state so
// the first import on another machine has something to pull.
func createSyncGist(client *gist.Client, workspaceRoot string) (*gist.Gist, error) {
	description := "Git Sync - My Settings"
	if ui.IsTerminal() {
		var err error
		description, err = ui.PromptDescription()
		if err != nil {
			return nil, err
		}
	}

	host, err := editor.NewCLIHost(workspaceRoot)
	if err != nil {
		return nil, err
	}
	snap, err := snapshot.Capture(host)
	if err != nil {
		return nil, err
	}
	snap.Stamp(time.Now())
	content, err := snap.Encode()
	if err != nil {
		return nil, err
	}

	g, err := client.Create(description, content)
	if err != nil {
		return nil, fmt.Errorf("create gist: %w", err)
	}
	return g, nil
}

func init() {
	setupCmd.Flags().Bool("with-token", false, "enter a personal access token instead of the device flow")
	rootCmd.AddCommand(setupCmd)
}
