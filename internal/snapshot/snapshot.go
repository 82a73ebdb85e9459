// Package snapshot defines the serializable configuration bundle that moves
// between machines, and its capture/apply logic against the host editor.
package snapshot

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/marcus/gitsync/internal/editor"
	"github.com/marcus/gitsync/internal/reconcile"
)

// Snapshot is the full exported bundle at one point in time. It is a pure
// value: no identity beyond its content. Settings values and keybindings are
// raw JSON so arbitrary documents round-trip without reinterpretation.
type Snapshot struct {
	Settings       map[string]json.RawMessage `json:"settings"`
	Keybindings    json.RawMessage            `json:"keybindings"`
	Extensions     []string                   `json:"extensions"`
	WorkspaceState map[string]json.RawMessage `json:"workspaceState"`
	// LastUpdated is stamped at upload time. Advisory only; conflict
	// resolution is last-writer-wins on the whole document.
	LastUpdated string `json:"lastUpdated,omitempty"`
}

// Stamp sets LastUpdated to now in ISO-8601.
func (s *Snapshot) Stamp(now time.Time) {
	s.LastUpdated = now.UTC().Format(time.RFC3339)
}

// Encode renders the snapshot as indented JSON, the on-disk and on-gist form.
func (s *Snapshot) Encode() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	return string(data), nil
}

// Decode parses a snapshot document.
func Decode(content string) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &s, nil
}

// Capture reads the current editor state. It is a pure read and tolerates
// absent pieces: no keybindings file yields an empty array, no open workspace
// yields an empty state map.
func Capture(h editor.Host) (*Snapshot, error) {
	settings, err := h.Settings()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if settings == nil {
		settings = map[string]json.RawMessage{}
	}

	keybindings, err := h.Keybindings()
	if err != nil {
		return nil, fmt.Errorf("read keybindings: %w", err)
	}

	extensions, err := h.Extensions()
	if err != nil {
		return nil, fmt.Errorf("list extensions: %w", err)
	}
	if extensions == nil {
		extensions = []string{}
	}

	state, err := h.WorkspaceState()
	if err != nil {
		return nil, fmt.Errorf("read workspace state: %w", err)
	}

	return &Snapshot{
		Settings:       settings,
		Keybindings:    keybindings,
		Extensions:     extensions,
		WorkspaceState: state,
	}, nil
}

// ApplyResult reports what an apply run did. SettingsApplied counts attempted
// writes, matching the extension accounting; a failed key still counts and
// shows up in SettingFailures.
type ApplyResult struct {
	SettingsApplied int
	// SkippedKeys are settings whose namespace is not on the allow-list.
	// Skipping is a safety valve, not an error.
	SkippedKeys []string
	// SettingFailures are allowed keys whose write failed. A failing key never
	// stops the rest of the apply.
	SettingFailures []reconcile.ItemError
	Extensions      reconcile.Result
}

// Applier applies snapshots to a host editor, delegating extension
// convergence to the reconciler.
type Applier struct {
	Host       editor.Host
	Reconciler *reconcile.Reconciler
}

// Apply writes allow-listed settings key by key, replaces keybindings and
// workspace state wholesale, then converges extensions. Settings are applied
// best-effort per key: a failing key is recorded and the loop continues.
// Unrecognized keys are skipped, never raised.
func (a *Applier) Apply(snap *Snapshot) (*ApplyResult, error) {
	var res ApplyResult

	for _, key := range sortedKeys(snap.Settings) {
		if !SettingAllowed(key) {
			res.SkippedKeys = append(res.SkippedKeys, key)
			continue
		}
		res.SettingsApplied++
		if err := a.Host.ApplySetting(key, snap.Settings[key]); err != nil {
			res.SettingFailures = append(res.SettingFailures, reconcile.ItemError{ID: key, Err: err})
		}
	}

	if err := a.Host.WriteKeybindings(snap.Keybindings); err != nil {
		return &res, fmt.Errorf("write keybindings: %w", err)
	}
	if err := a.Host.WriteWorkspaceState(snap.WorkspaceState); err != nil {
		return &res, fmt.Errorf("write workspace state: %w", err)
	}

	current, err := a.Host.Extensions()
	if err != nil {
		return &res, fmt.Errorf("list extensions: %w", err)
	}
	res.Extensions, err = a.Reconciler.Converge(current, snap.Extensions)
	if err != nil {
		return &res, err
	}

	return &res, nil
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
