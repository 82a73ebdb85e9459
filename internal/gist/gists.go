package gist

import (
	"fmt"
	"strings"
)

// SettingsFile is the file name inside the sync gist. Older releases used the
// same name; changing it would orphan existing gists.
const SettingsFile = "git-sync-settings.json"

// syncTags are the description substrings that identify a sync gist. Past
// versions of this tool shipped under two names, so all four spellings must
// keep matching during discovery.
var syncTags = []string{
	"Git Sync",
	"git-sync",
	"Cursor Settings Sync",
	"cursor-settings",
}

// File is a single file within a gist.
type File struct {
	Content string `json:"content"`
}

// Gist is a gist resource as returned by the API.
type Gist struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Public      bool            `json:"public"`
	Files       map[string]File `json:"files"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// createRequest is the body for POST /gists and PATCH /gists/{id}.
type createRequest struct {
	Description string          `json:"description"`
	Public      *bool           `json:"public,omitempty"`
	Files       map[string]File `json:"files"`
}

// Create creates a private gist holding content under SettingsFile and
// returns the new gist.
func (c *Client) Create(description, content string) (*Gist, error) {
	public := false
	body := createRequest{
		Description: description,
		Public:      &public,
		Files:       map[string]File{SettingsFile: {Content: content}},
	}
	var g Gist
	if err := c.do("POST", "/gists", body, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Get fetches a gist by id.
func (c *Client) Get(id string) (*Gist, error) {
	var g Gist
	if err := c.do("GET", "/gists/"+id, nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Update replaces the settings file content of an existing gist.
func (c *Client) Update(id, description, content string) error {
	body := createRequest{
		Description: description,
		Files:       map[string]File{SettingsFile: {Content: content}},
	}
	return c.do("PATCH", "/gists/"+id, body, nil)
}

// List fetches all gists of the authenticated user.
func (c *Client) List() ([]Gist, error) {
	var gists []Gist
	if err := c.do("GET", "/gists", nil, &gists); err != nil {
		return nil, err
	}
	return gists, nil
}

// SettingsContent extracts the settings file from a gist.
func (g *Gist) SettingsContent() (string, error) {
	f, ok := g.Files[SettingsFile]
	if !ok {
		return "", fmt.Errorf("gist %s has no %s file", g.ID, SettingsFile)
	}
	return f.Content, nil
}

// FilterSyncGists returns the gists whose description contains one of the
// known sync tags. This substring heuristic is the load-bearing discovery
// contract for finding "your" gist across tool versions; it is deliberately
// kept in one place.
func FilterSyncGists(gists []Gist) []Gist {
	var matches []Gist
	for _, g := range gists {
		if matchesSyncTag(g.Description) {
			matches = append(matches, g)
		}
	}
	return matches
}

func matchesSyncTag(description string) bool {
	for _, tag := range syncTags {
		if strings.Contains(description, tag) {
			return true
		}
	}
	return false
}
