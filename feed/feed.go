// Package feed fetches everyone's current position from upstream.
package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotblauer/catwatch/conceptual"
	"github.com/rotblauer/catwatch/types/sample"
	"github.com/tidwall/gjson"
)

var (
	// ErrNoCredentials means the credentials artifact is missing or empty.
	ErrNoCredentials = errors.New("no credentials")

	// ErrExhausted means a finite feed has nothing more to give.
	ErrExhausted = errors.New("feed exhausted")
)

// Snapshot is one response from upstream.
type Snapshot struct {
	// Me is the watching account's own position. It may be nil.
	Me     *sample.Sample
	People []*sample.Sample
}

type Feed interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// Decode parses a location document:
//
//	{"me": {...}, "people": [{...}, ...]}
//
// where each position has name, lat, lon, accuracy and timestamp,
// the timestamp being epoch milliseconds or an RFC3339 string.
// Malformed people are dropped; a malformed "me" is an error.
func Decode(data []byte) (*Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON document")
	}
	doc := gjson.ParseBytes(data)
	snap := &Snapshot{}

	if me := doc.Get("me"); me.Exists() && me.Type != gjson.Null {
		s, err := parseSample(me)
		if err != nil {
			return nil, fmt.Errorf("me: %w", err)
		}
		snap.Me = s
	}

	people := doc.Get("people")
	if !people.IsArray() {
		return nil, errors.New("missing people array")
	}
	people.ForEach(func(_, v gjson.Result) bool {
		s, err := parseSample(v)
		if err != nil {
			// Keep going. One broken entry shouldn't blind us to everyone else.
			return true
		}
		snap.People = append(snap.People, s)
		return true
	})
	return snap, nil
}

func parseSample(v gjson.Result) (*sample.Sample, error) {
	for _, k := range []string{"lat", "lon", "timestamp"} {
		if !v.Get(k).Exists() {
			return nil, fmt.Errorf("missing %s", k)
		}
	}
	t, err := ParseTimestamp(v.Get("timestamp"))
	if err != nil {
		return nil, err
	}
	s := &sample.Sample{
		Name:     conceptualName(v.Get("name").String()),
		Lat:      v.Get("lat").Float(),
		Lon:      v.Get("lon").Float(),
		Accuracy: v.Get("accuracy").Float(),
		Time:     t,
	}
	return s, nil
}

// ParseTimestamp accepts epoch milliseconds (number or numeric string)
// or an RFC3339 string.
func ParseTimestamp(v gjson.Result) (time.Time, error) {
	switch v.Type {
	case gjson.Number:
		return time.UnixMilli(v.Int()).UTC(), nil
	case gjson.String:
		if t, err := time.Parse(time.RFC3339Nano, v.Str); err == nil {
			return t, nil
		}
		if n := gjson.Parse(v.Str); n.Type == gjson.Number {
			return time.UnixMilli(n.Int()).UTC(), nil
		}
		return time.Time{}, fmt.Errorf("unparseable timestamp: %q", v.Str)
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp: %s", v.Raw)
}

func conceptualName(s string) conceptual.PersonID {
	return conceptual.PersonID(strings.TrimSpace(s))
}
