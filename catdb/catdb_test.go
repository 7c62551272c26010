package catdb

import (
	"path/filepath"
	"testing"

	"github.com/rotblauer/catwatch/catdb/flat"
	"github.com/rotblauer/catwatch/state"
	cattestingdata "github.com/rotblauer/catwatch/testing/testdata"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name string
		db   bool
	}{
		{"store.json.gz", false},
		{"store.db", true},
		{"store.bbolt", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, err := Open(filepath.Join(dir, c.name), nil, false)
			if err != nil {
				t.Fatal(err)
			}
			defer b.Close()
			switch b.(type) {
			case *state.State:
				if !c.db {
					t.Fatalf("got bbolt backend for %s", c.name)
				}
			case *flat.Flat:
				if c.db {
					t.Fatalf("got flat backend for %s", c.name)
				}
			}

			want := cattestingdata.Store()
			if err := b.Save(want); err != nil {
				t.Fatal(err)
			}
			got, err := b.Load()
			if err != nil {
				t.Fatal(err)
			}
			if got.Count() != want.Count() {
				t.Errorf("count: want %d, got %d", want.Count(), got.Count())
			}
		})
	}
}
