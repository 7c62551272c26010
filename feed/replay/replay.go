// Package replay feeds recorded cat tracks back through the collector,
// one position per person per fetch.
package replay

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotblauer/catwatch/catdb/cache"
	"github.com/rotblauer/catwatch/catz"
	"github.com/rotblauer/catwatch/conceptual"
	"github.com/rotblauer/catwatch/feed"
	"github.com/rotblauer/catwatch/types/sample"
	"github.com/tidwall/gjson"
)

// dedupeSize is the number of recent tracks remembered for deduplication.
const dedupeSize = 10_000

// Feed replays newline-delimited GeoJSON point features,
// optionally gzipped, in file order.
type Feed struct {
	// Self names the person whose samples are also reported as the
	// watching account's own position.
	Self conceptual.PersonID

	closer  io.Closer
	scanner *bufio.Scanner
	pending *sample.Sample
	dedupe  *cache.Dedupe
	done    bool
	skipped int
}

func Open(path string) (*Feed, error) {
	var r io.ReadCloser
	if strings.HasSuffix(path, ".gz") {
		gzr, err := catz.NewGZFileReader(path)
		if err != nil {
			return nil, err
		}
		r = gzr
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		r = f
	}
	return New(r), nil
}

// New replays tracks from r. If r is an io.Closer it's closed
// when the feed is exhausted or closed.
func New(r io.Reader) *Feed {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	f := &Feed{
		scanner: scanner,
		dedupe:  cache.NewDedupe(dedupeSize),
	}
	if c, ok := r.(io.Closer); ok {
		f.closer = c
	}
	return f
}

func (f *Feed) Close() error {
	f.done = true
	if f.closer == nil {
		return nil
	}
	c := f.closer
	f.closer = nil
	return c.Close()
}

// Skipped returns how many lines were dropped as malformed or duplicate.
func (f *Feed) Skipped() int {
	return f.skipped
}

// Fetch returns the next batch of tracks: lines are consumed until a
// person repeats, and that line is held over for the next fetch.
func (f *Feed) Fetch(ctx context.Context) (*feed.Snapshot, error) {
	if f.done && f.pending == nil {
		return nil, feed.ErrExhausted
	}
	snap := &feed.Snapshot{}
	seen := map[conceptual.PersonID]bool{}
	add := func(s *sample.Sample) {
		seen[s.Name] = true
		snap.People = append(snap.People, s)
		if !f.Self.Empty() && s.Name == f.Self {
			snap.Me = s
		}
	}
	if f.pending != nil {
		add(f.pending)
		f.pending = nil
	}
	for !f.done {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !f.scanner.Scan() {
			err := f.scanner.Err()
			_ = f.Close()
			if err != nil {
				return nil, fmt.Errorf("replay: %w", err)
			}
			break
		}
		s, err := ParseTrack(f.scanner.Bytes())
		if err != nil {
			f.skipped++
			slog.Debug("Skipping replay line", "error", err)
			continue
		}
		if !f.dedupe.Pass(dedupeKey(s)) {
			f.skipped++
			continue
		}
		if seen[s.Name] {
			f.pending = s
			break
		}
		add(s)
	}
	if len(snap.People) == 0 {
		return nil, feed.ErrExhausted
	}
	return snap, nil
}

type trackKey struct {
	Name     string
	Lat, Lon float64
	Accuracy float64
	UnixNano int64
}

// dedupeKey flattens a sample for hashing; hashstructure skips
// the unexported fields of time.Time.
func dedupeKey(s *sample.Sample) trackKey {
	return trackKey{
		Name:     s.Name.String(),
		Lat:      s.Lat,
		Lon:      s.Lon,
		Accuracy: s.Accuracy,
		UnixNano: s.Time.UnixNano(),
	}
}

// ParseTrack decodes one GeoJSON point feature with cat track properties.
// The person is the Alias property, falling back to Name.
// The time is the RFC3339 Time property, falling back to UnixTime seconds.
func ParseTrack(line []byte) (*sample.Sample, error) {
	f, err := geojson.UnmarshalFeature(line)
	if err != nil {
		return nil, err
	}
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return nil, fmt.Errorf("not a point: %s", f.Geometry.GeoJSONType())
	}
	props := gjson.GetBytes(line, "properties")
	name := props.Get("Alias").String()
	if name == "" {
		name = props.Get("Name").String()
	}
	var t time.Time
	if v := props.Get("Time"); v.Exists() {
		t, err = time.Parse(time.RFC3339Nano, v.String())
		if err != nil {
			return nil, err
		}
	} else if v := props.Get("UnixTime"); v.Exists() {
		t = time.Unix(v.Int(), 0).UTC()
	}
	s := &sample.Sample{
		Name:     conceptual.PersonID(strings.TrimSpace(name)),
		Lat:      pt.Lat(),
		Lon:      pt.Lon(),
		Accuracy: props.Get("Accuracy").Float(),
		Time:     t,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
