package feed

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rotblauer/catwatch/catz"
)

// FileFeed re-reads a location document from disk on every fetch.
// Files ending in .gz are decompressed.
type FileFeed struct {
	Path string
}

func NewFileFeed(path string) *FileFeed {
	return &FileFeed{Path: path}
}

func (f *FileFeed) Fetch(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	var err error
	if strings.HasSuffix(f.Path, ".gz") {
		var r *catz.GZFileReader
		r, err = catz.NewGZFileReader(f.Path)
		if err != nil {
			return nil, err
		}
		defer r.MaybeClose()
		data, err = io.ReadAll(r)
	} else {
		data, err = os.ReadFile(f.Path)
	}
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
