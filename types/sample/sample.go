package sample

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotblauer/catwatch/conceptual"
	"github.com/rotblauer/catwatch/geo/move"
)

// Sample is one observation of a person's position, as reported upstream.
// It's read-only input; the store builds its own records from it.
type Sample struct {
	Name     conceptual.PersonID
	Lat      float64
	Lon      float64
	Accuracy float64 // meters
	Time     time.Time
}

// Point returns the sample's position as an orb point (lon,lat).
func (s *Sample) Point() orb.Point {
	return orb.Point{s.Lon, s.Lat}
}

// Fix exposes the sample to the movement classifier.
func (s *Sample) Fix() move.Fix {
	return move.Fix{Point: s.Point(), Time: s.Time, Accuracy: s.Accuracy}
}

func (s *Sample) IsValid() bool {
	return s.Validate() == nil
}

// Validate checks the sample for basic validity.
// It returns the first error it encounters.
func (s *Sample) Validate() error {
	if s == nil {
		return errors.New("nil sample")
	}
	if s.Name.Empty() {
		return errors.New("empty name")
	}
	if math.IsNaN(s.Lat) || math.IsInf(s.Lat, 0) || s.Lat < -90 || s.Lat > 90 {
		return fmt.Errorf("invalid coordinate: lat=%.14f", s.Lat)
	}
	if math.IsNaN(s.Lon) || math.IsInf(s.Lon, 0) || s.Lon < -180 || s.Lon > 180 {
		return fmt.Errorf("invalid coordinate: lon=%.14f", s.Lon)
	}
	if math.IsNaN(s.Accuracy) || s.Accuracy < 0 {
		return fmt.Errorf("invalid accuracy: %v", s.Accuracy)
	}
	if s.Time.IsZero() {
		return errors.New("zero time")
	}
	return nil
}

func (s *Sample) String() string {
	return fmt.Sprintf("%s %s [%.5f,%.5f]+/-%.0fm",
		s.Name, s.Time.In(time.Local).Format("2006-01-02 15:04:05"),
		s.Lat, s.Lon, s.Accuracy)
}
