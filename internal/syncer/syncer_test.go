package syncer

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/marcus/gitsync/internal/localstore"
	"github.com/marcus/gitsync/internal/reconcile"
	"github.com/marcus/gitsync/internal/snapshot"
	"github.com/marcus/gitsync/internal/syncconfig"
)

type fakeHost struct {
	settings   map[string]json.RawMessage
	applied    map[string]json.RawMessage
	extensions []string
	installed  []string
	state      map[string]json.RawMessage
}

func (h *fakeHost) Settings() (map[string]json.RawMessage, error) { return h.settings, nil }

func (h *fakeHost) ApplySetting(key string, value json.RawMessage) error {
	if h.applied == nil {
		h.applied = map[string]json.RawMessage{}
	}
	h.applied[key] = value
	return nil
}

func (h *fakeHost) Keybindings() (json.RawMessage, error)  { return json.RawMessage("[]"), nil }
func (h *fakeHost) WriteKeybindings(json.RawMessage) error { return nil }

func (h *fakeHost) Extensions() ([]string, error) { return h.extensions, nil }

func (h *fakeHost) InstallExtension(id string) error {
	h.installed = append(h.installed, id)
	return nil
}

func (h *fakeHost) UninstallExtension(id string) error { return nil }

func (h *fakeHost) WorkspaceState() (map[string]json.RawMessage, error) { return h.state, nil }
func (h *fakeHost) WriteWorkspaceState(map[string]json.RawMessage) error { return nil }

type fakeRemote struct {
	stored    *snapshot.Snapshot
	uploads   int
	downloads int
	failUp    error
	failDown  error
}

func (r *fakeRemote) DownloadSnapshot(id string) (*snapshot.Snapshot, error) {
	r.downloads++
	if r.failDown != nil {
		return nil, r.failDown
	}
	return r.stored, nil
}

func (r *fakeRemote) UploadSnapshot(id, description string, snap *snapshot.Snapshot) error {
	r.uploads++
	if r.failUp != nil {
		return r.failUp
	}
	r.stored = snap
	return nil
}

type allowAllPrefs struct{}

func (allowAllPrefs) RemovalPrefs() (reconcile.Prefs, error) {
	return reconcile.Prefs{AlwaysAllow: true}, nil
}
func (allowAllPrefs) SaveRemovalPrefs(reconcile.Prefs) error { return nil }

type noPrompt struct{}

func (noPrompt) ConfirmRemoval([]string) (reconcile.Decision, error) {
	return reconcile.DecisionSkip, nil
}

func newSyncer(t *testing.T, host *fakeHost, cfg *syncconfig.RemoteConfig, remote RemoteStore) *Syncer {
	t.Helper()
	return &Syncer{
		Config: cfg,
		Remote: remote,
		Local:  &localstore.Store{Dir: t.TempDir()},
		Host:   host,
		Applier: &snapshot.Applier{
			Host: host,
			Reconciler: &reconcile.Reconciler{
				Manager:  host,
				Prompter: noPrompt{},
				Prefs:    allowAllPrefs{},
			},
		},
		Now: func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
}

func TestExportLocalWhenUnconfigured(t *testing.T) {
	host := &fakeHost{extensions: []string{"golang.go"}}
	s := newSyncer(t, host, &syncconfig.RemoteConfig{}, nil)

	loc, err := s.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if loc != LocationLocal {
		t.Errorf("location = %v, want local", loc)
	}

	snap, err := s.Local.ReadSnapshot()
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if snap == nil {
		t.Fatal("nothing persisted locally")
	}
	if snap.LastUpdated != "2025-06-01T12:00:00Z" {
		t.Errorf("LastUpdated = %q", snap.LastUpdated)
	}
}

func TestExportRemoteWhenConfigured(t *testing.T) {
	host := &fakeHost{extensions: []string{"golang.go"}}
	remote := &fakeRemote{}
	cfg := &syncconfig.RemoteConfig{Token: "ghp_abc", GistID: "g1"}
	s := newSyncer(t, host, cfg, remote)

	loc, err := s.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if loc != LocationRemote {
		t.Errorf("location = %v, want remote", loc)
	}
	if remote.uploads != 1 {
		t.Errorf("uploads = %d, want 1", remote.uploads)
	}

	// The remote path must not also write the local store.
	if snap, _ := s.Local.ReadSnapshot(); snap != nil {
		t.Error("remote export also wrote local storage")
	}
}

func TestImportNoLocalSnapshot(t *testing.T) {
	s := newSyncer(t, &fakeHost{}, &syncconfig.RemoteConfig{}, nil)

	_, loc, err := s.Import()
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("err = %v, want ErrNoSnapshot", err)
	}
	if loc != LocationLocal {
		t.Errorf("location = %v, want local", loc)
	}
}

func TestImportFromRemote(t *testing.T) {
	host := &fakeHost{}
	remote := &fakeRemote{stored: &snapshot.Snapshot{
		Settings:   map[string]json.RawMessage{"editor.fontSize": json.RawMessage("14")},
		Extensions: []string{"golang.go"},
	}}
	cfg := &syncconfig.RemoteConfig{Token: "ghp_abc", GistID: "g1"}
	s := newSyncer(t, host, cfg, remote)

	res, loc, err := s.Import()
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if loc != LocationRemote {
		t.Errorf("location = %v, want remote", loc)
	}
	if res.SettingsApplied != 1 {
		t.Errorf("SettingsApplied = %d, want 1", res.SettingsApplied)
	}
	if string(host.applied["editor.fontSize"]) != "14" {
		t.Errorf("applied = %v", host.applied)
	}
	if len(host.installed) != 1 || host.installed[0] != "golang.go" {
		t.Errorf("installed = %v", host.installed)
	}
}

func TestSyncLocalRoundTrip(t *testing.T) {
	host := &fakeHost{
		settings:   map[string]json.RawMessage{"editor.tabSize": json.RawMessage("4")},
		extensions: []string{"golang.go"},
	}
	s := newSyncer(t, host, &syncconfig.RemoteConfig{}, nil)

	want, err := snapshot.Capture(host)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}

	res, loc, err := s.Sync()
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if loc != LocationLocal {
		t.Errorf("location = %v, want local", loc)
	}
	if res.SettingsApplied != 1 {
		t.Errorf("SettingsApplied = %d, want 1", res.SettingsApplied)
	}

	// What comes back out of the store is the captured state, differing only
	// in the upload timestamp.
	got, err := s.Local.ReadSnapshot()
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	if got.LastUpdated == "" {
		t.Error("persisted snapshot has no timestamp")
	}
	got.LastUpdated = ""
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got: %+v\nwant: %+v", got, want)
	}
}

func TestSyncUploadsThenDownloads(t *testing.T) {
	host := &fakeHost{extensions: []string{"golang.go"}}
	remote := &fakeRemote{}
	cfg := &syncconfig.RemoteConfig{Token: "ghp_abc", GistID: "g1"}
	s := newSyncer(t, host, cfg, remote)

	if _, _, err := s.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if remote.uploads != 1 || remote.downloads != 1 {
		t.Errorf("uploads/downloads = %d/%d, want 1/1", remote.uploads, remote.downloads)
	}
}

func TestExportUploadFailureSurfaces(t *testing.T) {
	remote := &fakeRemote{failUp: errors.New("rate limited")}
	cfg := &syncconfig.RemoteConfig{Token: "ghp_abc", GistID: "g1"}
	s := newSyncer(t, &fakeHost{}, cfg, remote)

	loc, err := s.Export()
	if err == nil {
		t.Fatal("Export succeeded despite upload failure")
	}
	if loc != LocationRemote {
		t.Errorf("location = %v, want remote (no silent local fallback)", loc)
	}
	// A configured remote never falls back to local on failure.
	if snap, _ := s.Local.ReadSnapshot(); snap != nil {
		t.Error("upload failure fell back to local storage")
	}
}

func TestLocationString(t *testing.T) {
	if LocationRemote.String() != "GitHub Gist" {
		t.Errorf("remote = %q", LocationRemote.String())
	}
	if LocationLocal.String() != "local storage" {
		t.Errorf("local = %q", LocationLocal.String())
	}
}
