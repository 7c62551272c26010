// Package flat persists a history store as a single gzipped JSON document,
// with a YAML copy alongside for people to read.
package flat

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rotblauer/catwatch/catz"
	"github.com/rotblauer/catwatch/conceptual"
	"github.com/rotblauer/catwatch/history"
	"github.com/rotblauer/catwatch/params"
	"gopkg.in/yaml.v3"
)

var ErrVersion = errors.New("unsupported store version")

// Document is the on-disk shape of a store.
type Document struct {
	Version int                                     `json:"version" yaml:"version"`
	SavedAt time.Time                               `json:"saved_at,omitempty" yaml:"saved_at,omitempty"`
	People  map[conceptual.PersonID]history.History `json:"people" yaml:"people"`
}

type Flat struct {
	path   string
	config *params.CompactionConfig

	// Mirror enables the YAML copy at path + params.YAMLMirrorSuffix.
	Mirror bool
}

// New returns a flat backend for path. Relative paths are made absolute.
// Loaded stores use config for compaction.
func New(path string, config *params.CompactionConfig) *Flat {
	path = filepath.Clean(path)
	if !filepath.IsAbs(path) {
		path, _ = filepath.Abs(path)
	}
	return &Flat{path: path, config: config, Mirror: true}
}

func (f *Flat) Path() string {
	return f.path
}

func (f *Flat) MirrorPath() string {
	return f.path + params.YAMLMirrorSuffix
}

// Exists returns true if the store file exists.
func (f *Flat) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// Load reads the store. A missing file is an empty store.
func (f *Flat) Load() (*history.Store, error) {
	r, err := catz.NewGZFileReader(f.path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("Store file does not exist, starting empty", "path", f.path)
		return history.NewStore(f.config), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer r.MaybeClose()

	doc := &Document{}
	if err := json.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", f.path, err)
	}
	if doc.Version != params.StoreFormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, doc.Version)
	}
	s := history.NewStoreFromSnapshot(f.config, doc.People)
	slog.Info("Loaded store", "path", f.path, "people", len(doc.People), "records", s.Count())
	return s, nil
}

// Save replaces the store file with the current contents of s.
// The previous file survives any failure.
func (f *Flat) Save(s *history.Store) error {
	doc := &Document{
		Version: params.StoreFormatVersion,
		SavedAt: time.Now().UTC(),
		People:  s.Snapshot(),
	}
	w, err := catz.NewReplaceWriter(f.path)
	if err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		w.Abort()
		return fmt.Errorf("encode store: %w", err)
	}
	if err := w.Commit(); err != nil {
		return fmt.Errorf("save store: %w", err)
	}
	if f.Mirror {
		if err := f.writeMirror(doc); err != nil {
			// The mirror is a convenience; the gz file is the store.
			slog.Warn("Failed to write YAML mirror", "path", f.MirrorPath(), "error", err)
		}
	}
	return nil
}

func (f *Flat) writeMirror(doc *Document) error {
	b, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return catz.WriteFileReplace(f.MirrorPath(), b, 0660)
}

// ReadMirror decodes the YAML mirror.
func (f *Flat) ReadMirror() (*Document, error) {
	b, err := os.ReadFile(f.MirrorPath())
	if err != nil {
		return nil, err
	}
	doc := &Document{}
	if err := yaml.Unmarshal(b, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (f *Flat) Close() error {
	return nil
}
