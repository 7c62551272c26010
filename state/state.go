// Package state persists a history store in a bbolt database.
//
// Each person gets a bucket under "people", holding their records
// keyed by big-endian sequence number, so a cursor walks them in order.
package state

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rotblauer/catwatch/conceptual"
	"github.com/rotblauer/catwatch/history"
	"github.com/rotblauer/catwatch/params"
	"github.com/rotblauer/catwatch/types/record"
	"go.etcd.io/bbolt"
)

var (
	peopleBucket = []byte("people")
	metaBucket   = []byte("meta")

	keyVersion = []byte("version")
	keySavedAt = []byte("saved_at")
)

// ErrVersion means the database was written in a format this build can't read.
var ErrVersion = errors.New("unsupported state db version")

type State struct {
	DB     *bbolt.DB
	path   string
	config *params.CompactionConfig
	rOnly  bool
}

// Open opens (or creates) the database at path.
// Opening a writable DB blocks all other writers and readers of the file
// with a flock, so a read-only open times out rather than waiting forever.
func Open(path string, config *params.CompactionConfig, readOnly bool) (*State, error) {
	if !readOnly {
		if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
			return nil, err
		}
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{
		ReadOnly: readOnly,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	return &State{DB: db, path: path, config: config, rOnly: readOnly}, nil
}

func (s *State) Path() string {
	return s.path
}

func (s *State) Close() error {
	return s.DB.Close()
}

func seqKey(i int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(i))
	return k
}

// Save replaces the persisted people with the contents of st,
// in a single transaction.
func (s *State) Save(st *history.Store) error {
	if s.rOnly {
		return fmt.Errorf("state db is read-only")
	}
	snap := st.Snapshot()
	return s.DB.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket(peopleBucket) != nil {
			if err := tx.DeleteBucket(peopleBucket); err != nil {
				return err
			}
		}
		people, err := tx.CreateBucket(peopleBucket)
		if err != nil {
			return err
		}
		for person, h := range snap {
			b, err := people.CreateBucket([]byte(person))
			if err != nil {
				return fmt.Errorf("bucket %q: %w", person, err)
			}
			b.FillPercent = 1
			for i, r := range h {
				j, err := json.Marshal(r)
				if err != nil {
					return err
				}
				if err := b.Put(seqKey(i), j); err != nil {
					return err
				}
			}
		}
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}
		if err := meta.Put(keyVersion, []byte(strconv.Itoa(params.StoreFormatVersion))); err != nil {
			return err
		}
		return meta.Put(keySavedAt, []byte(time.Now().UTC().Format(time.RFC3339Nano)))
	})
}

// Load reads all persisted people. An empty database is an empty store.
func (s *State) Load() (*history.Store, error) {
	snap := map[conceptual.PersonID]history.History{}
	err := s.DB.View(func(tx *bbolt.Tx) error {
		people := tx.Bucket(peopleBucket)
		if people == nil {
			return nil
		}
		var version []byte
		if meta := tx.Bucket(metaBucket); meta != nil {
			version = meta.Get(keyVersion)
		}
		if string(version) != strconv.Itoa(params.StoreFormatVersion) {
			return fmt.Errorf("%w: %q", ErrVersion, version)
		}
		return people.ForEach(func(k, v []byte) error {
			if v != nil {
				return nil // not a bucket
			}
			b := people.Bucket(k)
			h := history.History{}
			// Gotcha! Values are only valid in the scope of the transaction;
			// json.Unmarshal copies what it needs.
			err := b.ForEach(func(_, v []byte) error {
				r := record.Record{}
				if err := json.Unmarshal(v, &r); err != nil {
					return err
				}
				h = append(h, r)
				return nil
			})
			if err != nil {
				return fmt.Errorf("person %q: %w", k, err)
			}
			snap[conceptual.PersonID(k)] = h
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	st := history.NewStoreFromSnapshot(s.config, snap)
	slog.Info("Loaded state db", "path", s.path, "people", len(snap), "records", st.Count())
	return st, nil
}

func (s *State) readKV(bucket, key []byte) ([]byte, error) {
	var out []byte
	err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if got := b.Get(key); got != nil {
			out = bytes.Clone(got)
		}
		return nil
	})
	return out, err
}

// SavedAt returns the time of the last successful Save, or the zero time.
func (s *State) SavedAt() (time.Time, error) {
	got, err := s.readKV(metaBucket, keySavedAt)
	if err != nil || got == nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, string(got))
}
