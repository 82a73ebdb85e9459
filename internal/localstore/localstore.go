// Package localstore is the filesystem fallback for snapshot persistence
// when no gist is configured.
package localstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/marcus/gitsync/internal/snapshot"
)

const snapshotFile = "cursor-settings.json"

// Store reads and writes snapshots under a fixed directory
// (default ~/.cursor-global).
type Store struct {
	Dir string
}

// New returns a store rooted at the global fallback directory.
func New() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}
	return &Store{Dir: filepath.Join(home, ".cursor-global")}, nil
}

// ReadSnapshot returns the previously exported snapshot, or nil when none
// exists. "No prior export" is a normal state, not a failure.
func (s *Store) ReadSnapshot() (*snapshot.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, snapshotFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return snapshot.Decode(string(data))
}

// WriteSnapshot persists the snapshot, creating the directory if absent.
func (s *Store) WriteSnapshot(snap *snapshot.Snapshot) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	content, err := snap.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.Dir, snapshotFile), []byte(content), 0644)
}
