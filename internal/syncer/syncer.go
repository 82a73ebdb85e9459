// Package syncer sequences the export, import, and bidirectional sync
// operations over either the gist remote or the local fallback store.
package syncer

import (
	"errors"
	"fmt"
	"time"

	"github.com/marcus/gitsync/internal/editor"
	"github.com/marcus/gitsync/internal/localstore"
	"github.com/marcus/gitsync/internal/snapshot"
	"github.com/marcus/gitsync/internal/syncconfig"
)

// ErrNoSnapshot means the local fallback had nothing to import. It is the
// only fatal import condition; everything else degrades per item.
var ErrNoSnapshot = errors.New("no exported snapshot found")

// Location reports where an operation persisted or read its snapshot.
type Location int

const (
	LocationRemote Location = iota
	LocationLocal
)

func (l Location) String() string {
	if l == LocationRemote {
		return "GitHub Gist"
	}
	return "local storage"
}

// RemoteStore is the remote document contract the orchestrator needs.
// *gist.Client satisfies it.
type RemoteStore interface {
	DownloadSnapshot(id string) (*snapshot.Snapshot, error)
	UploadSnapshot(id, description string, snap *snapshot.Snapshot) error
}

// Syncer drives one operation at a time. The remote is used when a bound,
// authenticated configuration exists; otherwise the local store is chosen
// deliberately, never via a caught failure.
type Syncer struct {
	Config  *syncconfig.RemoteConfig
	Remote  RemoteStore
	Local   *localstore.Store
	Host    editor.Host
	Applier *snapshot.Applier

	// Now stamps uploads; replaceable in tests.
	Now func() time.Time
}

func (s *Syncer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Syncer) remoteReady() bool {
	return s.Config.IsConfigured() && s.Remote != nil
}

// Export captures the current state and persists it, reporting where.
func (s *Syncer) Export() (Location, error) {
	snap, err := snapshot.Capture(s.Host)
	if err != nil {
		return LocationLocal, err
	}
	snap.Stamp(s.now())

	if s.remoteReady() {
		if err := s.Remote.UploadSnapshot(s.Config.GistID, s.Config.GistDescription, snap); err != nil {
			return LocationRemote, fmt.Errorf("upload snapshot: %w", err)
		}
		return LocationRemote, nil
	}

	if err := s.Local.WriteSnapshot(snap); err != nil {
		return LocationLocal, err
	}
	return LocationLocal, nil
}

// Import fetches the persisted snapshot and applies it.
func (s *Syncer) Import() (*snapshot.ApplyResult, Location, error) {
	if s.remoteReady() {
		snap, err := s.Remote.DownloadSnapshot(s.Config.GistID)
		if err != nil {
			return nil, LocationRemote, fmt.Errorf("download snapshot: %w", err)
		}
		res, err := s.Applier.Apply(snap)
		return res, LocationRemote, err
	}

	snap, err := s.Local.ReadSnapshot()
	if err != nil {
		return nil, LocationLocal, err
	}
	if snap == nil {
		return nil, LocationLocal, ErrNoSnapshot
	}
	res, err := s.Applier.Apply(snap)
	return res, LocationLocal, err
}

// Sync uploads the current state, then immediately re-downloads and applies
// so changes merged on the remote side land locally. If another machine
// writes between the two steps its document wins wholesale; the remote is a
// single last-writer-wins document and that race is accepted.
func (s *Syncer) Sync() (*snapshot.ApplyResult, Location, error) {
	loc, err := s.Export()
	if err != nil {
		return nil, loc, err
	}
	return s.Import()
}
