package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const tuiPrefsFileName = "tui_prefs.json"

// TUIPrefs holds presentation preferences only. Which screen is shown always comes
// from the session check, never from disk.
//
// Loading is best effort: callers get defaults for a missing or corrupt file.
type TUIPrefs struct {
	Version int `json:"version"`

	CollapseInProgress bool `json:"collapseInProgress,omitempty"`
	CollapseCompleted  bool `json:"collapseCompleted,omitempty"`

	// HidePreview turns off the markdown description pane.
	HidePreview bool `json:"hidePreview,omitempty"`
}

func (s Store) tuiPrefsPath() string {
	return filepath.Join(s.Dir, tuiPrefsFileName)
}

func (s Store) LoadTUIPrefs() (*TUIPrefs, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return &TUIPrefs{Version: 1}, nil
	}
	b, err := os.ReadFile(s.tuiPrefsPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &TUIPrefs{Version: 1}, nil
		}
		return nil, err
	}
	var p TUIPrefs
	if err := json.Unmarshal(b, &p); err != nil {
		// Corrupt prefs are treated as missing.
		return &TUIPrefs{Version: 1}, nil
	}
	if p.Version == 0 {
		p.Version = 1
	}
	return &p, nil
}

func (s Store) SaveTUIPrefs(p *TUIPrefs) error {
	if p == nil || strings.TrimSpace(s.Dir) == "" {
		return nil
	}
	if err := s.Ensure(); err != nil {
		return err
	}
	if p.Version == 0 {
		p.Version = 1
	}
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(s.Dir, tuiPrefsFileName+".*.tmp", s.tuiPrefsPath(), b, 0o644)
}
