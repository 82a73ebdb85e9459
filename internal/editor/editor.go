// Package editor abstracts the host editor: its user-level settings and
// keybindings files, its extension manager, and per-workspace state.
package editor

import "encoding/json"

// Host is the editor surface the sync engine reads and writes. Implementations
// must treat absent state (no settings file, no open workspace) as empty, not
// as an error.
type Host interface {
	// Settings returns the current user settings flattened to dotted keys.
	Settings() (map[string]json.RawMessage, error)
	// ApplySetting writes a single dotted-key setting.
	ApplySetting(key string, value json.RawMessage) error

	// Keybindings returns the raw keybindings document (a JSON array).
	Keybindings() (json.RawMessage, error)
	// WriteKeybindings replaces the keybindings document wholesale.
	WriteKeybindings(rules json.RawMessage) error

	// Extensions returns installed non-builtin extension identifiers.
	Extensions() ([]string, error)
	InstallExtension(id string) error
	UninstallExtension(id string) error

	// WorkspaceState returns the state of the open workspace, or an empty map
	// when no workspace is open.
	WorkspaceState() (map[string]json.RawMessage, error)
	// WriteWorkspaceState replaces the workspace state wholesale. A no-op when
	// no workspace is open.
	WriteWorkspaceState(state map[string]json.RawMessage) error
}
