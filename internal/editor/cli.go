package editor

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

const (
	defaultBin         = "cursor"
	settingsFile       = "settings.json"
	keybindingsFile    = "keybindings.json"
	workspaceStateFile = "workspace-state.json"
)

// CLIHost talks to a VS Code-family editor through its user configuration
// directory and its command-line extension manager.
type CLIHost struct {
	// UserDir holds settings.json and keybindings.json
	// (default ~/.cursor/User).
	UserDir string
	// Bin is the editor binary used for extension management.
	Bin string
	// WorkspaceDir is the open workspace root, empty when none.
	WorkspaceDir string

	run func(name string, args ...string) ([]byte, error)
}

// NewCLIHost builds a host for the default editor layout. workspaceDir may be
// empty. The editor binary can be overridden with GITSYNC_EDITOR.
func NewCLIHost(workspaceDir string) (*CLIHost, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}
	bin := defaultBin
	if v := os.Getenv("GITSYNC_EDITOR"); v != "" {
		bin = v
	}
	return &CLIHost{
		UserDir:      filepath.Join(home, ".cursor", "User"),
		Bin:          bin,
		WorkspaceDir: workspaceDir,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
	}, nil
}

// Settings reads the user settings file and flattens one level of section
// nesting, so {"editor":{"fontSize":12}} and {"editor.fontSize":12} both
// yield the dotted key. Deeper objects stay opaque values.
func (h *CLIHost) Settings() (map[string]json.RawMessage, error) {
	raw, err := readJSONMap(filepath.Join(h.UserDir, settingsFile))
	if err != nil {
		return nil, err
	}
	return FlattenSettings(raw), nil
}

// ApplySetting sets one dotted key in the settings file, creating the file
// and its directory if needed.
func (h *CLIHost) ApplySetting(key string, value json.RawMessage) error {
	path := filepath.Join(h.UserDir, settingsFile)
	settings, err := readJSONMap(path)
	if err != nil {
		return err
	}
	if settings == nil {
		settings = map[string]json.RawMessage{}
	}
	settings[key] = value
	return writeJSON(path, settings)
}

func (h *CLIHost) Keybindings() (json.RawMessage, error) {
	data, err := os.ReadFile(filepath.Join(h.UserDir, keybindingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return json.RawMessage("[]"), nil
		}
		return nil, fmt.Errorf("read keybindings: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("keybindings file is not valid JSON")
	}
	return json.RawMessage(data), nil
}

func (h *CLIHost) WriteKeybindings(rules json.RawMessage) error {
	if len(rules) == 0 {
		rules = json.RawMessage("[]")
	}
	return writeRaw(filepath.Join(h.UserDir, keybindingsFile), rules)
}

// Extensions lists installed extensions via the editor's CLI. Builtins are
// not reported by --list-extensions, so no extra filtering is needed.
func (h *CLIHost) Extensions() ([]string, error) {
	out, err := h.run(h.Bin, "--list-extensions")
	if err != nil {
		return nil, fmt.Errorf("list extensions: %w", err)
	}
	var ids []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			ids = append(ids, line)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (h *CLIHost) InstallExtension(id string) error {
	if _, err := h.run(h.Bin, "--install-extension", id); err != nil {
		return fmt.Errorf("install %s: %w", id, err)
	}
	return nil
}

func (h *CLIHost) UninstallExtension(id string) error {
	if _, err := h.run(h.Bin, "--uninstall-extension", id); err != nil {
		return fmt.Errorf("uninstall %s: %w", id, err)
	}
	return nil
}

// WorkspaceState reads <workspace>/.cursor/workspace-state.json. Absent
// workspace or file yields an empty map.
func (h *CLIHost) WorkspaceState() (map[string]json.RawMessage, error) {
	if h.WorkspaceDir == "" {
		return map[string]json.RawMessage{}, nil
	}
	state, err := readJSONMap(filepath.Join(h.WorkspaceDir, ".cursor", workspaceStateFile))
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = map[string]json.RawMessage{}
	}
	return state, nil
}

func (h *CLIHost) WriteWorkspaceState(state map[string]json.RawMessage) error {
	if h.WorkspaceDir == "" {
		return nil
	}
	return writeJSON(filepath.Join(h.WorkspaceDir, ".cursor", workspaceStateFile), state)
}

// FlattenSettings expands one level of section objects into dotted keys.
// Keys that already contain a dot are kept as-is, matching the editor's own
// section.key granularity.
func FlattenSettings(raw map[string]json.RawMessage) map[string]json.RawMessage {
	flat := make(map[string]json.RawMessage, len(raw))
	for key, value := range raw {
		if strings.Contains(key, ".") {
			flat[key] = value
			continue
		}
		var section map[string]json.RawMessage
		if err := json.Unmarshal(value, &section); err != nil || len(section) == 0 {
			flat[key] = value
			continue
		}
		for sub, v := range section {
			flat[key+"."+sub] = v
		}
	}
	return flat
}

// readJSONMap reads a JSON object file, returning nil with no error when the
// file does not exist.
func readJSONMap(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return m, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeRaw(path, data)
}

func writeRaw(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
