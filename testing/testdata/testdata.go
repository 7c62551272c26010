package testdata

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/rotblauer/catwatch/conceptual"
	"github.com/rotblauer/catwatch/history"
	"github.com/rotblauer/catwatch/types/record"
	"github.com/rotblauer/catwatch/types/sample"
)

// basepath is the root directory of this package.
var basepath string

func init() {
	_, currentFile, _, _ := runtime.Caller(0)
	basepath = filepath.Dir(currentFile)
}

// Path returns the absolute path the given relative file or directory path,
// relative to this testdata/ directory.
// If rel is already absolute, it is returned unmodified.
// Taken from https://github.com/grpc/grpc-go/blob/master/testdata/testdata.go.
func Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(basepath, rel)
}

var (
	PersonRye = conceptual.PersonID("Rye Cat")
	PersonIa  = conceptual.PersonID("Ia")
	PersonÁgi = conceptual.PersonID("Ági")
)

// T0 anchors the fixture timeline.
var T0 = time.Date(2024, 12, 16, 8, 0, 0, 0, time.UTC)

// metersPerDegreeLat is close enough for building fixtures.
const metersPerDegreeLat = 111_200.0

// Sample returns a sample for person at lat/lon, observed at t.
func Sample(person conceptual.PersonID, lat, lon float64, t time.Time) *sample.Sample {
	return &sample.Sample{
		Name:     person,
		Lat:      lat,
		Lon:      lon,
		Accuracy: 10,
		Time:     t,
	}
}

// SampleNear returns a sample meters north of r, observed after r.
func SampleNear(person conceptual.PersonID, r record.Record, meters float64, after time.Duration) *sample.Sample {
	return Sample(person, r.Lat+meters/metersPerDegreeLat, r.Lon, r.ObservedAt.Add(after))
}

// Store returns a small multi-person store:
// Rye dwells then travels, Ia only dwells, Ági has a single fix.
func Store() *history.Store {
	s := history.NewStore(nil)

	rye := []struct {
		lat, lon float64
		after    time.Duration
	}{
		{44.98896789550781, -93.2554931640625, 0},
		{44.98897, -93.25549, 15 * time.Minute},
		{44.98896, -93.25550, 2 * time.Hour},
		{44.99806, -93.25549, 2*time.Hour + 10*time.Minute},
		{45.01200, -93.25549, 2*time.Hour + 20*time.Minute},
		{45.01201, -93.25550, 5 * time.Hour},
	}
	for _, p := range rye {
		t := T0.Add(p.after)
		s.Insert(PersonRye, Sample(PersonRye, p.lat, p.lon, t), t.Add(3*time.Second))
	}

	for i := 0; i < 8; i++ {
		t := T0.Add(time.Duration(i) * 15 * time.Minute)
		s.Insert(PersonIa, Sample(PersonIa, 47.1787276, -113.4730765, t), t.Add(time.Second))
	}

	s.Insert(PersonÁgi, Sample(PersonÁgi, 47.4979, 19.0402, T0), T0)
	return s
}
