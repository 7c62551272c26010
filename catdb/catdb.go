// Package catdb picks a persistence backend for a history store.
package catdb

import (
	"strings"

	"github.com/rotblauer/catwatch/catdb/flat"
	"github.com/rotblauer/catwatch/history"
	"github.com/rotblauer/catwatch/params"
	"github.com/rotblauer/catwatch/state"
)

// Backend loads and saves a whole store.
type Backend interface {
	// Load returns the persisted store, or an empty one if nothing is persisted yet.
	Load() (*history.Store, error)
	// Save persists s. A failed save leaves the previous state intact.
	Save(s *history.Store) error
	Close() error
	Path() string
}

var (
	_ Backend = (*flat.Flat)(nil)
	_ Backend = (*state.State)(nil)
)

// Open returns the backend for path: bbolt for *.db and *.bbolt,
// gzipped JSON for anything else.
func Open(path string, config *params.CompactionConfig, readOnly bool) (Backend, error) {
	switch {
	case strings.HasSuffix(path, ".db"), strings.HasSuffix(path, ".bbolt"):
		return state.Open(path, config, readOnly)
	default:
		f := flat.New(path, config)
		f.Mirror = !readOnly
		return f, nil
	}
}
