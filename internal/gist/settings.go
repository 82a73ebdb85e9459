package gist

import "github.com/marcus/gitsync/internal/snapshot"

// DownloadSnapshot fetches the sync gist and parses its settings document.
func (c *Client) DownloadSnapshot(id string) (*snapshot.Snapshot, error) {
	g, err := c.Get(id)
	if err != nil {
		return nil, err
	}
	content, err := g.SettingsContent()
	if err != nil {
		return nil, err
	}
	return snapshot.Decode(content)
}

// UploadSnapshot replaces the sync gist's settings document. The gist
// description is rewritten on every upload so renames propagate.
func (c *Client) UploadSnapshot(id, description string, snap *snapshot.Snapshot) error {
	content, err := snap.Encode()
	if err != nil {
		return err
	}
	return c.Update(id, description, content)
}
