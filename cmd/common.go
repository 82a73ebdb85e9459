package cmd

import (
	"github.com/marcus/gitsync/internal/editor"
	"github.com/marcus/gitsync/internal/gist"
	"github.com/marcus/gitsync/internal/localstore"
	"github.com/marcus/gitsync/internal/output"
	"github.com/marcus/gitsync/internal/reconcile"
	"github.com/marcus/gitsync/internal/snapshot"
	"github.com/marcus/gitsync/internal/syncconfig"
	"github.com/marcus/gitsync/internal/syncer"
	"github.com/marcus/gitsync/internal/ui"
)

// buildSyncer wires one orchestrator for the current process: workspace
// detection, persisted config, editor host, stores, and reconciler.
func buildSyncer() (*syncer.Syncer, error) {
	ws := syncconfig.FindWorkspaceRoot(getBaseDir())

	cfg, err := syncconfig.Load(ws)
	if err != nil {
		return nil, err
	}

	host, err := editor.NewCLIHost(ws)
	if err != nil {
		return nil, err
	}

	local, err := localstore.New()
	if err != nil {
		return nil, err
	}

	prefs, err := syncconfig.NewPrefStore()
	if err != nil {
		return nil, err
	}

	rec := &reconcile.Reconciler{
		Manager:  host,
		Prompter: ui.RemovalPrompt{},
		Prefs:    prefs,
	}

	s := &syncer.Syncer{
		Config:  cfg,
		Local:   local,
		Host:    host,
		Applier: &snapshot.Applier{Host: host, Reconciler: rec},
	}
	if cfg.IsConfigured() {
		s.Remote = gist.New(cfg.Token)
	}
	return s, nil
}

// reportApply prints the per-item outcomes and the summary line. Counts are
// attempted operations; a failed item still counts toward its total.
func reportApply(res *snapshot.ApplyResult) {
	if res == nil {
		return
	}
	for _, key := range res.SkippedKeys {
		output.Subtle("skipping unrecognized setting: %s", key)
	}
	for _, f := range res.SettingFailures {
		output.Warning("apply setting %s: %v", f.ID, f.Err)
	}
	for _, f := range res.Extensions.InstallFailures {
		output.Warning("install %s: %v", f.ID, f.Err)
	}
	for _, f := range res.Extensions.RemoveFailures {
		output.Warning("uninstall %s: %v", f.ID, f.Err)
	}
	if res.Extensions.SkippedByPreference {
		output.Info("Extension removal is disabled. No extensions will be removed.")
	}
	if res.Extensions.Installed > 0 || res.Extensions.Removed > 0 {
		output.Info("Extensions updated: %d installed, %d removed",
			res.Extensions.Installed, res.Extensions.Removed)
	}
}
