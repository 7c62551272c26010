package record

import (
	"fmt"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotblauer/catwatch/common"
	"github.com/rotblauer/catwatch/geo/move"
	"github.com/rotblauer/catwatch/types/sample"
)

// Record is a history entry derived from one or more samples.
// ObservedAt is when the position was valid, per upstream.
// RecordedAt is when the record was first created, on our clock.
// FirstObservedAt is the upstream time of the first sample folded into it.
// Compaction carries both forward, so for a dwell they say "when did they get here".
type Record struct {
	RecordedAt      time.Time `json:"recorded_at" yaml:"recorded_at"`
	FirstObservedAt time.Time `json:"first_observed_at" yaml:"first_observed_at"`
	ObservedAt      time.Time `json:"observed_at" yaml:"observed_at"`
	Lat             float64   `json:"lat" yaml:"lat"`
	Lon             float64   `json:"lon" yaml:"lon"`
	Accuracy        float64   `json:"accuracy" yaml:"accuracy"`
	MapLink         string    `json:"map_link" yaml:"map_link"`
}

// FromSample builds a fresh record, recorded at receivedAt.
func FromSample(s *sample.Sample, receivedAt time.Time) Record {
	return Record{
		RecordedAt:      receivedAt,
		FirstObservedAt: s.Time,
		ObservedAt:      s.Time,
		Lat:             s.Lat,
		Lon:             s.Lon,
		Accuracy:        s.Accuracy,
		MapLink:         MapLink(s.Lat, s.Lon),
	}
}

// MapLink is a display-only link to the position on a map.
func MapLink(lat, lon float64) string {
	return "https://maps.google.com/?q=" +
		strconv.FormatFloat(lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(lon, 'f', -1, 64)
}

func (r Record) Point() orb.Point {
	return orb.Point{r.Lon, r.Lat}
}

// Fix exposes the record to the movement classifier.
func (r Record) Fix() move.Fix {
	return move.Fix{Point: r.Point(), Time: r.ObservedAt, Accuracy: r.Accuracy}
}

// Equal compares records by value, with time instants compared by Equal
// (so that monotonic clock readings and locations don't matter).
func (r Record) Equal(o Record) bool {
	return r.RecordedAt.Equal(o.RecordedAt) &&
		r.FirstObservedAt.Equal(o.FirstObservedAt) &&
		r.ObservedAt.Equal(o.ObservedAt) &&
		r.Lat == o.Lat && r.Lon == o.Lon &&
		r.Accuracy == o.Accuracy &&
		r.MapLink == o.MapLink
}

// Dwell is how long the record has represented the person's position,
// measured on the upstream clock. Records saved without FirstObservedAt
// have no known dwell.
func (r Record) Dwell() time.Duration {
	if r.FirstObservedAt.IsZero() || r.ObservedAt.Before(r.FirstObservedAt) {
		return 0
	}
	return r.ObservedAt.Sub(r.FirstObservedAt)
}

// Feature renders the record as a GeoJSON point feature.
func (r Record) Feature(person string) *geojson.Feature {
	f := geojson.NewFeature(r.Point())
	f.Properties["Name"] = person
	f.Properties["Time"] = r.ObservedAt.UTC().Format(time.RFC3339)
	f.Properties["UnixTime"] = r.ObservedAt.Unix()
	f.Properties["RecordedAt"] = r.RecordedAt.UTC().Format(time.RFC3339)
	if !r.FirstObservedAt.IsZero() {
		f.Properties["FirstObservedAt"] = r.FirstObservedAt.UTC().Format(time.RFC3339)
	}
	f.Properties["Accuracy"] = r.Accuracy
	f.Properties["MapLink"] = r.MapLink
	return f
}

func (r Record) StringPretty() string {
	return fmt.Sprintf("%v [%v,%v]+/-%.0fm (since %v)",
		r.ObservedAt.In(time.Local).Format("2006-01-02 15:04:05"),
		common.DecimalToFixed(r.Lat, common.GPSPrecision5),
		common.DecimalToFixed(r.Lon, common.GPSPrecision5),
		r.Accuracy,
		r.RecordedAt.In(time.Local).Format("15:04:05"),
	)
}
