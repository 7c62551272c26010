package state

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	cattestingdata "github.com/rotblauer/catwatch/testing/testdata"
	"go.etcd.io/bbolt"
)

func TestState_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	s, err := Open(path, nil, false)
	if err != nil {
		t.Fatal(err)
	}

	empty, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if empty.Count() != 0 {
		t.Fatalf("new db count = %d", empty.Count())
	}

	// Saving replaces; people missing from a later save are dropped.
	ghost := cattestingdata.Store()
	ghost.Insert("Ghost", cattestingdata.Sample("Ghost", 1, 1, cattestingdata.T0), cattestingdata.T0)
	if err := s.Save(ghost); err != nil {
		t.Fatal(err)
	}

	want := cattestingdata.Store()
	if err := s.Save(want); err != nil {
		t.Fatal(err)
	}
	savedAt, err := s.SavedAt()
	if err != nil {
		t.Fatal(err)
	}
	if time.Since(savedAt) > time.Minute {
		t.Errorf("saved at = %v", savedAt)
	}

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	ro, err := Open(path, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	defer ro.Close()
	got, err := ro.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.People()) != len(want.People()) {
		t.Fatalf("people: want %v, got %v", want.People(), got.People())
	}
	if got.Count() != want.Count() {
		t.Fatalf("count: want %d, got %d", want.Count(), got.Count())
	}
	for _, p := range want.People() {
		wh, gh := want.History(p), got.History(p)
		if len(wh) != len(gh) {
			t.Fatalf("%s: len want %d, got %d", p, len(wh), len(gh))
		}
		for i := range wh {
			if !wh[i].Equal(gh[i]) {
				t.Errorf("%s[%d]: want %+v, got %+v", p, i, wh[i], gh[i])
			}
		}
	}
	if err := ro.Save(want); err == nil {
		t.Error("read-only save succeeded")
	}
}

func TestSeqKeyOrder(t *testing.T) {
	for i := 0; i < 300; i++ {
		if string(seqKey(i)) >= string(seqKey(i+1)) {
			t.Fatalf("key %d does not sort before %d", i, i+1)
		}
	}
}

func TestState_LoadVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	s, err := Open(path, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Save(cattestingdata.Store()); err != nil {
		t.Fatal(err)
	}

	for _, v := range []string{"99", ""} {
		err := s.DB.Update(func(tx *bbolt.Tx) error {
			meta := tx.Bucket(metaBucket)
			if v == "" {
				return meta.Delete(keyVersion)
			}
			return meta.Put(keyVersion, []byte(v))
		})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.Load(); !errors.Is(err, ErrVersion) {
			t.Errorf("version %q: err = %v", v, err)
		}
	}
}
