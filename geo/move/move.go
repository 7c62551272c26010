package move

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"
	"github.com/rotblauer/catwatch/common"
	"github.com/rotblauer/catwatch/geo/compass"
	"github.com/rotblauer/catwatch/geo/geodesic"
	"github.com/rotblauer/catwatch/params"
)

// Fix is a position at a point in time, with a radius of uncertainty.
type Fix struct {
	Point    orb.Point // lon,lat
	Time     time.Time
	Accuracy float64 // meters
}

// Assessment describes the movement from one fix to another.
// It is never stored.
type Assessment struct {
	Distance    float64 // meters
	Bearing     float64 // degrees, [0,360)
	BearingName string
	Elapsed     time.Duration
	SpeedKMH    float64

	// Accuracy is the combined accuracy radius of both fixes.
	Accuracy float64

	// DifferentPointsForSure is true when the fixes are farther apart than
	// their combined accuracy, so GPS noise alone can't explain the distance.
	DifferentPointsForSure bool
}

// SameInstant reports whether the fixes had identical times,
// in which case SpeedKMH is the sentinel rather than a real speed.
func (a Assessment) SameInstant() bool {
	return a.Elapsed == 0
}

func (a Assessment) String() string {
	return fmt.Sprintf("%s to %s in %s (%s) +/-%.0fm",
		common.HumanDistance(a.Distance), a.BearingName, a.Elapsed,
		common.HumanSpeed(a.SpeedKMH), a.Accuracy)
}

// Classifier assesses movement with a configured compass and sentinel speed.
type Classifier struct {
	resolution  compass.Resolution
	locale      compass.Locale
	sameInstant float64
}

// NewClassifier validates the compass configuration up front so that
// Assess never has to fail.
func NewClassifier(config *params.MovementConfig) (*Classifier, error) {
	if config == nil {
		config = params.DefaultMovementConfig()
	}
	res, loc := compass.Resolution(config.Points), compass.Locale(config.Locale)
	if err := compass.Validate(res, loc); err != nil {
		return nil, err
	}
	return &Classifier{
		resolution:  res,
		locale:      loc,
		sameInstant: config.SameInstantSpeedKMH,
	}, nil
}

var defaultClassifier = func() *Classifier {
	c, err := NewClassifier(params.DefaultMovementConfig())
	if err != nil {
		panic(err)
	}
	return c
}()

// Assess uses the default classifier.
func Assess(a, b Fix) Assessment {
	return defaultClassifier.Assess(a, b)
}

// Assess compares fix a to a later fix b.
// Callers guarantee b is not earlier than a.
func (c *Classifier) Assess(a, b Fix) Assessment {
	dist, bearing := geodesic.DistanceBearing(a.Point.Lat(), a.Point.Lon(), b.Point.Lat(), b.Point.Lon())
	elapsed := b.Time.Sub(a.Time)

	speed := c.sameInstant
	if elapsed != 0 {
		speed = common.MPSToKMH(dist / elapsed.Seconds())
	}

	accuracy := a.Accuracy + b.Accuracy
	return Assessment{
		Distance:               dist,
		Bearing:                bearing,
		BearingName:            compass.MustSectorName(bearing, c.resolution, c.locale),
		Elapsed:                elapsed,
		SpeedKMH:               speed,
		Accuracy:               accuracy,
		DifferentPointsForSure: dist > accuracy,
	}
}
