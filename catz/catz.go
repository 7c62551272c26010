package catz

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/rotblauer/catwatch/params"
)

// TmpSuffix names the sibling file a ReplaceWriter writes to before renaming.
const TmpSuffix = ".tmp"

type GZFileWriter struct {
	f      *os.File
	gzw    *gzip.Writer
	locked bool
	closed bool

	GZFileWriterConfig
}

type GZFileWriterConfig struct {
	CompressionLevel int
	Flag             int
	FilePerm         os.FileMode
	DirPerm          os.FileMode
}

func DefaultGZFileWriterConfig() *GZFileWriterConfig {
	return &GZFileWriterConfig{
		CompressionLevel: params.DefaultGZipCompressionLevel,
		Flag:             os.O_WRONLY | os.O_APPEND | os.O_CREATE,
		FilePerm:         0660,
		DirPerm:          0770,
	}
}

// NewGZFileWriter opens path for (by default, appending) gzip writes.
// Appended gzip members read back as one stream.
func NewGZFileWriter(path string, config *GZFileWriterConfig) (*GZFileWriter, error) {
	if config == nil {
		config = DefaultGZFileWriterConfig()
	}
	if err := os.MkdirAll(filepath.Dir(path), config.DirPerm); err != nil {
		return nil, err
	}
	fi, err := os.OpenFile(path, config.Flag, config.FilePerm)
	if err != nil {
		return nil, err
	}
	gzw, err := gzip.NewWriterLevel(fi, config.CompressionLevel)
	if err != nil {
		_ = fi.Close()
		return nil, err
	}
	return &GZFileWriter{
		f:                  fi,
		gzw:                gzw,
		GZFileWriterConfig: *config,
	}, nil
}

func (g *GZFileWriter) Write(p []byte) (int, error) {
	g.lock()
	return g.gzw.Write(p)
}

// lock locks the file for exclusive access.
// The lock will be invalidated if and when the file is closed.
func (g *GZFileWriter) lock() {
	if g.locked || g.closed || g.f == nil {
		return
	}
	_ = syscall.Flock(int(g.f.Fd()), syscall.LOCK_EX)
	g.locked = true
}

func (g *GZFileWriter) unlock() {
	if !g.locked || g.closed || g.f == nil {
		return
	}
	_ = syscall.Flock(int(g.f.Fd()), syscall.LOCK_UN)
	g.locked = false
}

// Close flushes the gzip stream and syncs the file to disk before closing it.
func (g *GZFileWriter) Close() error {
	if g.closed {
		return nil
	}
	defer func() {
		g.closed = true
	}()
	defer g.unlock()
	if err := g.gzw.Close(); err != nil {
		_ = g.f.Close()
		return err
	}
	if err := g.f.Sync(); err != nil {
		_ = g.f.Close()
		return err
	}
	return g.f.Close()
}

// MaybeClose closes the writer, ignoring errors.
func (g *GZFileWriter) MaybeClose() {
	_ = g.Close()
}

func (g *GZFileWriter) Path() string {
	return g.f.Name()
}

// ReplaceWriter writes a gzip file next to its target and moves it into
// place on Commit. Readers of the target see either the old or the new
// content, never a partial write.
type ReplaceWriter struct {
	*GZFileWriter
	target string
}

func NewReplaceWriter(target string) (*ReplaceWriter, error) {
	config := DefaultGZFileWriterConfig()
	config.Flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	w, err := NewGZFileWriter(target+TmpSuffix, config)
	if err != nil {
		return nil, err
	}
	return &ReplaceWriter{GZFileWriter: w, target: target}, nil
}

// Commit closes (and syncs) the temporary file and renames it over the target.
func (r *ReplaceWriter) Commit() error {
	tmp := r.GZFileWriter.Path()
	if err := r.GZFileWriter.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, r.target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

// Abort discards the temporary file. The target is untouched.
func (r *ReplaceWriter) Abort() {
	tmp := r.GZFileWriter.Path()
	r.GZFileWriter.MaybeClose()
	_ = os.Remove(tmp)
}

func (r *ReplaceWriter) Target() string {
	return r.target
}

// WriteFileReplace writes data uncompressed to path via a synced temp file and rename.
func WriteFileReplace(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		return err
	}
	tmp := path + TmpSuffix
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

type GZFileReader struct {
	f      *os.File
	gzr    *gzip.Reader
	closed bool
}

func NewGZFileReader(path string) (*GZFileReader, error) {
	fi, err := os.OpenFile(path, os.O_RDONLY, 0660)
	if err != nil {
		return nil, err
	}
	gzr, err := gzip.NewReader(fi)
	if err != nil {
		_ = fi.Close()
		return nil, err
	}
	return &GZFileReader{f: fi, gzr: gzr}, nil
}

func (g *GZFileReader) Path() string {
	return g.f.Name()
}

// Read satisfies the io.Reader interface.
func (g *GZFileReader) Read(p []byte) (int, error) {
	return g.gzr.Read(p)
}

// Close closes the gzip reader and the file.
func (g *GZFileReader) Close() error {
	if g.closed {
		return nil
	}
	defer func() {
		g.closed = true
	}()
	if err := g.gzr.Close(); err != nil {
		_ = g.f.Close()
		return err
	}
	return g.f.Close()
}

func (g *GZFileReader) MaybeClose() {
	_ = g.Close()
}

func (g *GZFileReader) LineCount() (int, error) {
	count := 0
	scanner := bufio.NewScanner(g)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
