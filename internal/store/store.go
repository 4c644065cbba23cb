// Package store keeps the client's local state: the session cookie jar and TUI
// preferences. Server data is never cached here.
package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const sqliteFileName = "state.sqlite"

// Store is rooted at the config directory.
type Store struct {
	Dir string
}

// Open returns a Store at dir, or at ConfigDir when dir is empty.
func Open(dir string) (Store, error) {
	if strings.TrimSpace(dir) == "" {
		d, err := ConfigDir()
		if err != nil {
			return Store{}, err
		}
		dir = d
	}
	return Store{Dir: filepath.Clean(dir)}, nil
}

func (s Store) Ensure() error {
	if strings.TrimSpace(s.Dir) == "" {
		return errors.New("store dir is empty")
	}
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, sqliteFileName)
}
