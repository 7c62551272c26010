package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotblauer/catwatch/catdb"
	"github.com/rotblauer/catwatch/feed/replay"
	"github.com/rotblauer/catwatch/history"
	"github.com/rotblauer/catwatch/testing/testdata"
)

// execute runs the root command with args, returning stdout.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, errOut.String())
	}
	return out.String()
}

func savedStore(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	backend, err := catdb.Open(p, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()
	if err := backend.Save(testdata.Store()); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestExport_GeoJSON(t *testing.T) {
	p := savedStore(t, "store.json.gz")
	out := execute(t, "export", "--store", p, "--format", "geojson", "--person", "")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != testdata.Store().Count() {
		t.Fatalf("want one line per record (%d), got %d", testdata.Store().Count(), len(lines))
	}
	// Exports replay.
	for _, line := range lines {
		s, err := replay.ParseTrack([]byte(line))
		if err != nil {
			t.Fatal(err)
		}
		if s.Name == "" {
			t.Errorf("no name in %s", line)
		}
	}
}

func TestExport_JSONPerson(t *testing.T) {
	p := savedStore(t, "store.db")
	out := execute(t, "export", "--store", p, "--format", "json", "--person", string(testdata.PersonRye))

	doc := map[string]history.History{}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatal(err)
	}
	if len(doc) != 1 {
		t.Fatalf("want 1 person, got %d", len(doc))
	}
	if got := len(doc[string(testdata.PersonRye)]); got != 3 {
		t.Errorf("want 3 records, got %d", got)
	}
}

func TestExport_YAML(t *testing.T) {
	p := savedStore(t, "store.json.gz")
	out := execute(t, "export", "--store", p, "--format", "yaml", "--person", "")
	for _, want := range []string{"Rye Cat:", "Ia:", "observed_at:"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in\n%s", want, out)
		}
	}
}

func TestStats(t *testing.T) {
	p := savedStore(t, "store.json.gz")
	out := execute(t, "stats", "--store", p, "--json=false")
	if !strings.Contains(out, "3 people, 5 records") {
		t.Errorf("unexpected stats:\n%s", out)
	}
	if !strings.Contains(out, "Rye Cat: 3 records") {
		t.Errorf("unexpected stats:\n%s", out)
	}

	out = execute(t, "stats", "--store", p, "--json")
	var sums []history.Summary
	if err := json.Unmarshal([]byte(out), &sums); err != nil {
		t.Fatal(err)
	}
	if len(sums) != 3 {
		t.Errorf("want 3 summaries, got %d", len(sums))
	}
}

func TestWatch_FeedFile(t *testing.T) {
	dir := t.TempDir()
	feedFile := filepath.Join(dir, "feed.json")
	if err := os.WriteFile(feedFile, []byte(testdata.FeedDocument), 0644); err != nil {
		t.Fatal(err)
	}
	store := filepath.Join(dir, "store.json.gz")

	execute(t, "watch",
		"--feed-file", feedFile,
		"--replay", "",
		"--http.address", "",
		"--store", store,
		"--count", "2",
		"--wait", "0",
		"--autosave-interval", "5",
	)

	backend, err := catdb.Open(store, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()
	s, err := backend.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got := len(s.People()); got != 2 {
		t.Errorf("want 2 people, got %d", got)
	}
	// The same document twice is one record each.
	if got := s.Count(); got != 2 {
		t.Errorf("want 2 records, got %d", got)
	}
}

func TestWatch_Replay(t *testing.T) {
	dir := t.TempDir()
	tracks := filepath.Join(dir, "tracks.geojson")
	if err := os.WriteFile(tracks, []byte(testdata.ReplayTracks), 0644); err != nil {
		t.Fatal(err)
	}
	store := filepath.Join(dir, "store.db")

	execute(t, "watch",
		"--replay", tracks,
		"--replay-self", "ranga",
		"--feed-file", "",
		"--http.address", "",
		"--store", store,
		"--count=-1",
		"--wait", "0",
	)

	backend, err := catdb.Open(store, nil, true)
	if err != nil {
		t.Fatal(err)
	}
	defer backend.Close()
	s, err := backend.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got := len(s.People()); got != 2 {
		t.Errorf("want 2 people, got %d: %v", got, s.People())
	}
}
