package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const maxRecent = 10

type RecentEntry struct {
	Path     string    `json:"path"`
	OpenedAt time.Time `json:"opened_at"`
}

// RecentCatalogs is the list of recently opened catalog databases, kept as
// JSON in the user config dir.
type RecentCatalogs struct {
	file string
}

func NewRecentCatalogs(file string) RecentCatalogs {
	if file == "" {
		cfg, _ := os.UserConfigDir()
		file = filepath.Join(cfg, "pinmap", "recent.json")
	}
	return RecentCatalogs{file: file}
}

func (r RecentCatalogs) Load() []RecentEntry {
	data, err := os.ReadFile(r.file)
	if err != nil {
		return nil
	}
	var entries []RecentEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

// Save moves dbPath to the front of the list.
func (r RecentCatalogs) Save(dbPath string, now time.Time) error {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		abs = dbPath
	}

	entries := r.Load()
	filtered := make([]RecentEntry, 0, len(entries)+1)
	filtered = append(filtered, RecentEntry{Path: abs, OpenedAt: now})
	for _, e := range entries {
		if e.Path != abs {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) > maxRecent {
		filtered = filtered[:maxRecent]
	}

	data, err := json.MarshalIndent(filtered, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(r.file), 0o755); err != nil {
		return err
	}
	return os.WriteFile(r.file, data, 0o644)
}
