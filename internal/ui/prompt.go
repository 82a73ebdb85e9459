// Package ui holds the interactive prompt surfaces: gist selection, token
// entry, and the extension-removal confirmation.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/marcus/gitsync/internal/gist"
	"github.com/marcus/gitsync/internal/output"
	"github.com/marcus/gitsync/internal/reconcile"
)

// IsTerminal reports whether stdin is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadToken reads a personal access token without echoing it.
func ReadToken() (string, error) {
	fmt.Print("GitHub personal access token (ghp_...): ")
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ChooseGist offers existing sync gists plus a create-new entry. Returns the
// selected gist id, or createNew=true when the user wants a fresh one.
func ChooseGist(gists []gist.Gist) (id string, createNew bool, err error) {
	const newGist = "__create_new__"

	options := make([]huh.Option[string], 0, len(gists)+1)
	for _, g := range gists {
		label := g.Description
		if label == "" {
			label = "Gist " + g.ID
		}
		if t, perr := time.Parse(time.RFC3339, g.UpdatedAt); perr == nil {
			label = fmt.Sprintf("%s (updated %s)", label, output.FormatTimeAgo(t))
		}
		options = append(options, huh.NewOption(label, g.ID))
	}
	options = append(options, huh.NewOption("Create a new gist", newGist))

	var choice string
	sel := huh.NewSelect[string]().
		Title("Select the gist holding your synced settings").
		Options(options...).
		Value(&choice)
	if err := sel.Run(); err != nil {
		return "", false, err
	}
	if choice == newGist {
		return "", true, nil
	}
	return choice, false, nil
}

// PromptDescription asks for a gist description, prefilled with the default
// used by every prior release (it doubles as the discovery tag).
func PromptDescription() (string, error) {
	desc := "Git Sync - My Settings"
	in := huh.NewInput().
		Title("Description for your sync gist").
		Value(&desc)
	if err := in.Run(); err != nil {
		return "", err
	}
	if strings.TrimSpace(desc) == "" {
		desc = "Git Sync - My Settings"
	}
	return desc, nil
}

// RemovalPrompt implements reconcile.Prompter with a four-way choice.
type RemovalPrompt struct{}

// ConfirmRemoval lists the removal candidates and asks how to proceed. In a
// non-interactive session removals are skipped; installing is safe to do
// unattended, removing is not.
func (RemovalPrompt) ConfirmRemoval(ids []string) (reconcile.Decision, error) {
	if !IsTerminal() {
		output.Warning("non-interactive session: skipping removal of %d extensions", len(ids))
		return reconcile.DecisionSkip, nil
	}

	output.Info("The following %d extensions are not in the synced snapshot:", len(ids))
	for i, id := range ids {
		output.Info("  %d. %s", i+1, id)
	}

	choice := reconcile.DecisionSkip
	sel := huh.NewSelect[reconcile.Decision]().
		Title("Remove these extensions?").
		Options(
			huh.NewOption("Remove extensions", reconcile.DecisionProceed),
			huh.NewOption("Always allow removal", reconcile.DecisionAlwaysAllow),
			huh.NewOption("Never remove extensions", reconcile.DecisionNeverRemove),
			huh.NewOption("Skip this time", reconcile.DecisionSkip),
		).
		Value(&choice)
	if err := sel.Run(); err != nil {
		return reconcile.DecisionSkip, err
	}

	switch choice {
	case reconcile.DecisionAlwaysAllow:
		output.Info("Extension removal set to always allow. Change it with: gitsync prefs")
	case reconcile.DecisionNeverRemove:
		output.Info("Extension removal disabled. Change it with: gitsync prefs")
	}
	return choice, nil
}
