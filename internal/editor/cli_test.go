package editor

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func testHost(t *testing.T, output string, runErr error) (*CLIHost, *[][]string) {
	t.Helper()
	var calls [][]string
	return &CLIHost{
		UserDir:      t.TempDir(),
		Bin:          "cursor",
		WorkspaceDir: t.TempDir(),
		run: func(name string, args ...string) ([]byte, error) {
			calls = append(calls, append([]string{name}, args...))
			return []byte(output), runErr
		},
	}, &calls
}

func TestFlattenSettings(t *testing.T) {
	raw := map[string]json.RawMessage{
		"editor":          json.RawMessage(`{"fontSize":14,"tabSize":2}`),
		"editor.wordWrap": json.RawMessage(`"on"`),
		"telemetry":       json.RawMessage(`false`),
		"emptySection":    json.RawMessage(`{}`),
	}

	flat := FlattenSettings(raw)

	want := map[string]string{
		"editor.fontSize": "14",
		"editor.tabSize":  "2",
		"editor.wordWrap": `"on"`,
		"telemetry":       "false",
		"emptySection":    "{}",
	}
	if len(flat) != len(want) {
		t.Fatalf("flattened to %d keys, want %d: %v", len(flat), len(want), flat)
	}
	for key, val := range want {
		if string(flat[key]) != val {
			t.Errorf("flat[%q] = %s, want %s", key, flat[key], val)
		}
	}
}

func TestSettingsAbsentFile(t *testing.T) {
	h, _ := testHost(t, "", nil)
	settings, err := h.Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if len(settings) != 0 {
		t.Errorf("settings = %v, want empty", settings)
	}
}

func TestApplySettingCreatesFile(t *testing.T) {
	h, _ := testHost(t, "", nil)
	h.UserDir = filepath.Join(h.UserDir, "User")

	if err := h.ApplySetting("editor.fontSize", json.RawMessage("14")); err != nil {
		t.Fatalf("ApplySetting: %v", err)
	}
	if err := h.ApplySetting("editor.tabSize", json.RawMessage("2")); err != nil {
		t.Fatalf("ApplySetting: %v", err)
	}

	settings, err := h.Settings()
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if string(settings["editor.fontSize"]) != "14" || string(settings["editor.tabSize"]) != "2" {
		t.Errorf("settings = %v", settings)
	}
}

func TestKeybindingsDefaultsToEmptyArray(t *testing.T) {
	h, _ := testHost(t, "", nil)
	rules, err := h.Keybindings()
	if err != nil {
		t.Fatalf("Keybindings: %v", err)
	}
	if string(rules) != "[]" {
		t.Errorf("rules = %s, want []", rules)
	}
}

func TestKeybindingsRoundTrip(t *testing.T) {
	h, _ := testHost(t, "", nil)
	in := json.RawMessage(`[{"key":"ctrl+k","command":"noop"}]`)

	if err := h.WriteKeybindings(in); err != nil {
		t.Fatalf("WriteKeybindings: %v", err)
	}
	out, err := h.Keybindings()
	if err != nil {
		t.Fatalf("Keybindings: %v", err)
	}
	if string(out) != string(in) {
		t.Errorf("round trip = %s, want %s", out, in)
	}
}

func TestExtensionsParsesAndSorts(t *testing.T) {
	h, calls := testHost(t, "zeta.last\n\nalpha.first\n  beta.mid  \n", nil)

	ids, err := h.Extensions()
	if err != nil {
		t.Fatalf("Extensions: %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"alpha.first", "beta.mid", "zeta.last"}) {
		t.Errorf("ids = %v", ids)
	}
	if len(*calls) != 1 || !reflect.DeepEqual((*calls)[0], []string{"cursor", "--list-extensions"}) {
		t.Errorf("calls = %v", *calls)
	}
}

func TestInstallUninstallInvokeCLI(t *testing.T) {
	h, calls := testHost(t, "", nil)

	if err := h.InstallExtension("golang.go"); err != nil {
		t.Fatalf("InstallExtension: %v", err)
	}
	if err := h.UninstallExtension("old.ext"); err != nil {
		t.Fatalf("UninstallExtension: %v", err)
	}

	want := [][]string{
		{"cursor", "--install-extension", "golang.go"},
		{"cursor", "--uninstall-extension", "old.ext"},
	}
	if !reflect.DeepEqual(*calls, want) {
		t.Errorf("calls = %v, want %v", *calls, want)
	}
}

func TestExtensionCommandFailure(t *testing.T) {
	h, _ := testHost(t, "", errors.New("command not found"))
	if _, err := h.Extensions(); err == nil {
		t.Error("Extensions succeeded despite CLI failure")
	}
	if err := h.InstallExtension("x.y"); err == nil {
		t.Error("InstallExtension succeeded despite CLI failure")
	}
}

func TestWorkspaceStateNoWorkspace(t *testing.T) {
	h, _ := testHost(t, "", nil)
	h.WorkspaceDir = ""

	state, err := h.WorkspaceState()
	if err != nil {
		t.Fatalf("WorkspaceState: %v", err)
	}
	if len(state) != 0 {
		t.Errorf("state = %v, want empty", state)
	}
	// Writing without a workspace is a no-op, not an error.
	if err := h.WriteWorkspaceState(map[string]json.RawMessage{"k": json.RawMessage("1")}); err != nil {
		t.Errorf("WriteWorkspaceState: %v", err)
	}
}

func TestWorkspaceStateRoundTrip(t *testing.T) {
	h, _ := testHost(t, "", nil)
	in := map[string]json.RawMessage{"openFiles": json.RawMessage(`["main.go"]`)}

	if err := h.WriteWorkspaceState(in); err != nil {
		t.Fatalf("WriteWorkspaceState: %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.WorkspaceDir, ".cursor", "workspace-state.json")); err != nil {
		t.Fatalf("state file: %v", err)
	}

	out, err := h.WorkspaceState()
	if err != nil {
		t.Fatalf("WorkspaceState: %v", err)
	}
	var files []string
	if err := json.Unmarshal(out["openFiles"], &files); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if !reflect.DeepEqual(files, []string{"main.go"}) {
		t.Errorf("openFiles = %v", files)
	}
}

func TestNewCLIHostEditorOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GITSYNC_EDITOR", "code")

	h, err := NewCLIHost("")
	if err != nil {
		t.Fatalf("NewCLIHost: %v", err)
	}
	if h.Bin != "code" {
		t.Errorf("Bin = %q, want code", h.Bin)
	}
	if filepath.Base(filepath.Dir(h.UserDir)) != ".cursor" {
		t.Errorf("UserDir = %q, want under ~/.cursor", h.UserDir)
	}
}
