package catz

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func readAllGZ(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	gr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer gr.Close()
	read, err := io.ReadAll(gr)
	if err != nil {
		t.Fatal(err)
	}
	return string(read)
}

func TestGZFileWriter_Appends(t *testing.T) {
	target := filepath.Join(t.TempDir(), "sub", "lines.txt.gz")

	for _, name := range []string{"w1", "w2"} {
		w, err := NewGZFileWriter(target, nil)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 3; i++ {
			if _, err := w.Write([]byte(fmt.Sprintf("%s testing... %d\n", name, i))); err != nil {
				t.Fatal(err)
			}
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
	}

	r, err := NewGZFileReader(target)
	if err != nil {
		t.Fatal(err)
	}
	defer r.MaybeClose()
	scanner := bufio.NewScanner(r)
	first, last := "", ""
	for scanner.Scan() {
		if first == "" {
			first = scanner.Text()
		}
		last = scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}
	if first != "w1 testing... 0" {
		t.Fatalf("unexpected first: %s", first)
	}
	if last != "w2 testing... 2" {
		t.Fatalf("unexpected last: %s", last)
	}
}

func TestGZFileReader_LineCount(t *testing.T) {
	target := filepath.Join(t.TempDir(), "count.gz")
	w, err := NewGZFileWriter(target, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 42; i++ {
		fmt.Fprintf(w, "%d\n", i)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	r, err := NewGZFileReader(target)
	if err != nil {
		t.Fatal(err)
	}
	defer r.MaybeClose()
	n, err := r.LineCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 42 {
		t.Errorf("count = %d", n)
	}
}

func TestGZFileReader_Missing(t *testing.T) {
	_, err := NewGZFileReader(filepath.Join(t.TempDir(), "nope.gz"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want not-exist, got %v", err)
	}
}

func TestReplaceWriter(t *testing.T) {
	target := filepath.Join(t.TempDir(), "store.json.gz")

	write := func(content string) {
		w, err := NewReplaceWriter(target)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
		if err := w.Commit(); err != nil {
			t.Fatal(err)
		}
	}
	write("first")
	write("second")

	if got := readAllGZ(t, target); got != "second" {
		t.Errorf("content = %q", got)
	}
	if _, err := os.Stat(target + TmpSuffix); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	// An aborted write leaves the previous content in place.
	w, err := NewReplaceWriter(target)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = w.Write([]byte("partial"))
	w.Abort()
	if got := readAllGZ(t, target); got != "second" {
		t.Errorf("content after abort = %q", got)
	}
	if _, err := os.Stat(target + TmpSuffix); !os.IsNotExist(err) {
		t.Errorf("temp file left behind after abort: %v", err)
	}
}

func TestWriteFileReplace(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "mirror.yaml")
	if err := WriteFileReplace(target, []byte("one: 1\n"), 0660); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileReplace(target, []byte("two: 2\n"), 0660); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "two: 2\n" {
		t.Errorf("content = %q", b)
	}
}
