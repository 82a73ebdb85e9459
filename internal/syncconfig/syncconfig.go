// Package syncconfig persists the credential/location record (token, gist id,
// gist description) and the sticky extension-removal preferences.
package syncconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marcus/gitsync/internal/reconcile"
)

const (
	configFile = "cursor-sync-config.json"
	prefsFile  = "removal-prefs.json"
	globalDir  = ".cursor-global"
)

// RemoteConfig is the persisted credential/location record. The token is a
// secret and must never be logged. An empty GistID means "not yet bound".
type RemoteConfig struct {
	Token           string `json:"token"`
	GistID          string `json:"gistId"`
	GistDescription string `json:"gistDescription"`
}

// IsConfigured reports whether both a credential and a gist binding exist.
func (c *RemoteConfig) IsConfigured() bool {
	return c != nil && c.Token != "" && c.GistID != ""
}

// FindWorkspaceRoot walks up from start looking for a directory containing
// .vscode. Returns "" when no workspace is open.
func FindWorkspaceRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".vscode")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// GlobalDir returns the per-user fallback directory (~/.cursor-global).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, globalDir), nil
}

// configPath returns the single location for this process: workspace-scoped
// when a workspace is open, else global. The two are never merged.
func configPath(workspaceRoot string) (string, error) {
	if workspaceRoot != "" {
		return filepath.Join(workspaceRoot, ".vscode", configFile), nil
	}
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the record from the location implied by workspace presence.
// A missing file yields nil with no error.
func Load(workspaceRoot string) (*RemoteConfig, error) {
	path, err := configPath(workspaceRoot)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// The env token works without any config file, e.g. on a machine
		// that has never run setup.
		if v := os.Getenv("GITSYNC_TOKEN"); v != "" {
			return &RemoteConfig{Token: v}, nil
		}
		return nil, nil
	}
	var cfg RemoteConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if v := os.Getenv("GITSYNC_TOKEN"); v != "" {
		cfg.Token = v
	}
	return &cfg, nil
}

// Save writes the record and reports the path actually written. When the
// workspace path cannot be written the global location is used instead; the
// caller sees which one won rather than a swallowed failure.
func Save(cfg *RemoteConfig, workspaceRoot string) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	path, err := configPath(workspaceRoot)
	if err != nil {
		return "", err
	}
	writeErr := writeSecret(path, data)
	if writeErr == nil {
		return path, nil
	}
	if workspaceRoot == "" {
		return "", writeErr
	}

	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	fallback := filepath.Join(dir, configFile)
	if err := writeSecret(fallback, data); err != nil {
		return "", err
	}
	return fallback, nil
}

// ClearToken removes the credential but keeps the gist binding.
func ClearToken(workspaceRoot string) error {
	cfg, err := Load(workspaceRoot)
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}
	cfg.Token = ""
	_, err = Save(cfg, workspaceRoot)
	return err
}

// writeSecret writes a file containing a credential with 0600 perms.
func writeSecret(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// PrefStore persists removal preferences in the global directory. Preferences
// are per-user, not per-workspace, so a sticky choice governs every checkout.
type PrefStore struct {
	Dir string
}

// NewPrefStore returns the per-user preference store.
func NewPrefStore() (*PrefStore, error) {
	dir, err := GlobalDir()
	if err != nil {
		return nil, err
	}
	return &PrefStore{Dir: dir}, nil
}

// RemovalPrefs loads the sticky preferences; absent file means defaults
// (always prompt).
func (p *PrefStore) RemovalPrefs() (reconcile.Prefs, error) {
	var prefs reconcile.Prefs
	data, err := os.ReadFile(filepath.Join(p.Dir, prefsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return prefs, nil
		}
		return prefs, fmt.Errorf("read prefs: %w", err)
	}
	if err := json.Unmarshal(data, &prefs); err != nil {
		return prefs, fmt.Errorf("parse prefs: %w", err)
	}
	return prefs, nil
}

// SaveRemovalPrefs persists the sticky preferences immediately.
func (p *PrefStore) SaveRemovalPrefs(prefs reconcile.Prefs) error {
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(p.Dir, prefsFile), data, 0644)
}
