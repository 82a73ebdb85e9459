package version

import (
	"testing"
	"time"
)

func TestParseSemver(t *testing.T) {
	tests := []struct {
		in   string
		want [3]int
	}{
		{"v1.2.3", [3]int{1, 2, 3}},
		{"1.2.3", [3]int{1, 2, 3}},
		{"v1.2.3-beta.1", [3]int{1, 2, 3}},
		{"v1.2.3+build.5", [3]int{1, 2, 3}},
		{"v2.0", [3]int{2, 0, 0}},
		{"v10.20.30", [3]int{10, 20, 30}},
		{"garbage", [3]int{}},
		{"", [3]int{}},
	}
	for _, tt := range tests {
		if got := parseSemver(tt.in); got != tt.want {
			t.Errorf("parseSemver(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		latest  string
		current string
		want    bool
	}{
		{"v1.2.4", "v1.2.3", true},
		{"v1.3.0", "v1.2.9", true},
		{"v2.0.0", "v1.9.9", true},
		{"v1.2.3", "v1.2.3", false},
		{"v1.2.2", "v1.2.3", false},
		{"v1.2.3", "1.2.3", false},
	}
	for _, tt := range tests {
		if got := isNewer(tt.latest, tt.current); got != tt.want {
			t.Errorf("isNewer(%q, %q) = %v, want %v", tt.latest, tt.current, got, tt.want)
		}
	}
}

func TestIsDevelopmentVersion(t *testing.T) {
	for _, v := range []string{"", "unknown", "dev", "devel", "devel+abc123"} {
		if !IsDevelopmentVersion(v) {
			t.Errorf("IsDevelopmentVersion(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"v1.2.3", "1.0.0"} {
		if IsDevelopmentVersion(v) {
			t.Errorf("IsDevelopmentVersion(%q) = true, want false", v)
		}
	}
}

func TestUpdateCommand(t *testing.T) {
	cmd := UpdateCommand("v1.2.3")
	if cmd == "" {
		t.Fatal("UpdateCommand rejected a valid version")
	}
	want := `go install -ldflags "-X main.Version=v1.2.3" github.com/marcus/gitsync@v1.2.3`
	if cmd != want {
		t.Errorf("cmd = %q, want %q", cmd, want)
	}
}

func TestUpdateCommandRejectsInjection(t *testing.T) {
	for _, v := range []string{
		"v1.2.3; rm -rf /",
		"v1.2.3$(whoami)",
		"v1.2.3-",
		"v1.2.3--beta",
		"not-a-version",
		"",
	} {
		if cmd := UpdateCommand(v); cmd != "" {
			t.Errorf("UpdateCommand(%q) = %q, want empty", v, cmd)
		}
	}
}

func TestCheckSkipsDevelopmentBuilds(t *testing.T) {
	result := Check("dev")
	if result.Error != nil || result.LatestVersion != "" || result.HasUpdate {
		t.Errorf("dev build check = %+v, want empty result", result)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	entry := &CacheEntry{
		LatestVersion:  "v1.3.0",
		CurrentVersion: "v1.2.3",
		CheckedAt:      time.Now(),
		HasUpdate:      true,
	}
	if err := SaveCache(entry); err != nil {
		t.Fatalf("SaveCache: %v", err)
	}

	loaded, err := LoadCache()
	if err != nil {
		t.Fatalf("LoadCache: %v", err)
	}
	if loaded.LatestVersion != entry.LatestVersion || !loaded.HasUpdate {
		t.Errorf("loaded = %+v, want %+v", loaded, entry)
	}
}

func TestIsCacheValid(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		entry *CacheEntry
		want  bool
	}{
		{"nil entry", nil, false},
		{
			"fresh same version",
			&CacheEntry{CurrentVersion: "v1.2.3", CheckedAt: now.Add(-time.Hour)},
			true,
		},
		{
			"expired",
			&CacheEntry{CurrentVersion: "v1.2.3", CheckedAt: now.Add(-7 * time.Hour)},
			false,
		},
		{
			"different running version",
			&CacheEntry{CurrentVersion: "v1.2.2", CheckedAt: now.Add(-time.Hour)},
			false,
		},
	}
	for _, tt := range tests {
		if got := IsCacheValid(tt.entry, "v1.2.3"); got != tt.want {
			t.Errorf("%s: IsCacheValid = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLoadCacheMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := LoadCache(); err == nil {
		t.Error("LoadCache succeeded with no cache file")
	}
}
