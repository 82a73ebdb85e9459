// Package reconcile converges the installed extension set toward a target
// set: exact-identifier set difference, best-effort per-item application, and
// a confirmation policy guarding removals.
package reconcile

import (
	"fmt"
	"sort"
)

// Decision is the outcome of a removal confirmation prompt.
type Decision int

const (
	// DecisionSkip defers removal for this run only.
	DecisionSkip Decision = iota
	// DecisionProceed approves removal for this run only.
	DecisionProceed
	// DecisionAlwaysAllow approves removal and persists the sticky override.
	DecisionAlwaysAllow
	// DecisionNeverRemove aborts removal and persists the sticky override.
	DecisionNeverRemove
)

// Manager installs and uninstalls extensions on the host editor.
type Manager interface {
	InstallExtension(id string) error
	UninstallExtension(id string) error
}

// Prompter asks the user whether the listed extensions may be removed. It is
// only consulted when neither sticky override is set.
type Prompter interface {
	ConfirmRemoval(ids []string) (Decision, error)
}

// Prefs is the sticky removal preference pair. Both default to false (always
// prompt). When both are set, NeverRemove wins.
type Prefs struct {
	AlwaysAllow bool `json:"alwaysAllow"`
	NeverRemove bool `json:"neverRemove"`
}

// PrefStore persists Prefs across runs.
type PrefStore interface {
	RemovalPrefs() (Prefs, error)
	SaveRemovalPrefs(Prefs) error
}

// ItemError records a single failed install or uninstall. Item failures never
// abort the rest of the batch.
type ItemError struct {
	ID  string
	Err error
}

// Result summarizes one convergence run. Installed and Removed count
// attempted operations, not confirmed successes; a failed item still counts.
type Result struct {
	Installed       int
	Removed         int
	InstallFailures []ItemError
	RemoveFailures  []ItemError
	// RemovalSkipped is true when pending removals were left alone this run
	// (never-remove preference, skip-once, or a declined prompt). The set is
	// not mutated; the same diff is recomputed on the next sync.
	RemovalSkipped bool
	// SkippedByPreference is true when the sticky never-remove preference
	// suppressed the removals without prompting.
	SkippedByPreference bool
}

// Reconciler applies the convergence procedure.
type Reconciler struct {
	Manager  Manager
	Prompter Prompter
	Prefs    PrefStore
}

// Diff computes the two disjoint operation sets. Output is sorted so results
// are independent of input ordering.
func Diff(current, target []string) (toInstall, toRemove []string) {
	have := make(map[string]bool, len(current))
	for _, id := range current {
		have[id] = true
	}
	want := make(map[string]bool, len(target))
	for _, id := range target {
		want[id] = true
		if !have[id] {
			toInstall = append(toInstall, id)
		}
	}
	for _, id := range current {
		if !want[id] {
			toRemove = append(toRemove, id)
		}
	}
	sort.Strings(toInstall)
	sort.Strings(toRemove)
	// Duplicate inputs must not produce duplicate operations.
	toInstall = dedupe(toInstall)
	toRemove = dedupe(toRemove)
	return toInstall, toRemove
}

func dedupe(ids []string) []string {
	var out []string
	for i, id := range ids {
		if i == 0 || ids[i-1] != id {
			out = append(out, id)
		}
	}
	return out
}

// Converge installs missing extensions and, subject to the removal policy,
// uninstalls extra ones. Per-item failures are collected, never propagated.
func (r *Reconciler) Converge(current, target []string) (Result, error) {
	toInstall, toRemove := Diff(current, target)
	var res Result

	res.Installed = len(toInstall)
	for _, id := range toInstall {
		if err := r.Manager.InstallExtension(id); err != nil {
			res.InstallFailures = append(res.InstallFailures, ItemError{ID: id, Err: err})
		}
	}

	if len(toRemove) == 0 {
		return res, nil
	}

	approved, byPreference, err := r.approveRemoval(toRemove)
	if err != nil {
		return res, err
	}
	if !approved {
		res.RemovalSkipped = true
		res.SkippedByPreference = byPreference
		return res, nil
	}

	res.Removed = len(toRemove)
	for _, id := range toRemove {
		if err := r.Manager.UninstallExtension(id); err != nil {
			res.RemoveFailures = append(res.RemoveFailures, ItemError{ID: id, Err: err})
		}
	}
	return res, nil
}

// approveRemoval runs the confirmation state machine. NeverRemove is checked
// before AlwaysAllow. A sticky choice made at the prompt is persisted
// immediately so it governs future runs.
func (r *Reconciler) approveRemoval(ids []string) (approved, byPreference bool, err error) {
	prefs, err := r.Prefs.RemovalPrefs()
	if err != nil {
		return false, false, fmt.Errorf("load removal prefs: %w", err)
	}

	if prefs.NeverRemove {
		return false, true, nil
	}
	if prefs.AlwaysAllow {
		return true, false, nil
	}

	decision, err := r.Prompter.ConfirmRemoval(ids)
	if err != nil {
		return false, false, fmt.Errorf("removal prompt: %w", err)
	}

	switch decision {
	case DecisionProceed:
		return true, false, nil
	case DecisionAlwaysAllow:
		prefs.AlwaysAllow = true
		if err := r.Prefs.SaveRemovalPrefs(prefs); err != nil {
			return false, false, fmt.Errorf("save removal prefs: %w", err)
		}
		return true, false, nil
	case DecisionNeverRemove:
		prefs.NeverRemove = true
		if err := r.Prefs.SaveRemovalPrefs(prefs); err != nil {
			return false, false, fmt.Errorf("save removal prefs: %w", err)
		}
		return false, false, nil
	default:
		return false, false, nil
	}
}
