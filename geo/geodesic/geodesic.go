// Package geodesic solves the inverse geodesic problem on the WGS84 ellipsoid.
//
// orb/geo's distances are spherical (haversine), which is fine for drawing
// maps but drifts by up to ~0.5% from the ellipsoid. The accuracy radii we
// compare against are tens of meters, so the noise-vs-movement decision
// wants the real thing.
package geodesic

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/tidwall/geodesic"
)

// DistanceBearing returns the ellipsoidal distance in meters between two
// points and the initial bearing in degrees, normalized into [0,360).
// Identical points yield a zero distance and a zero bearing.
func DistanceBearing(lat1, lon1, lat2, lon2 float64) (meters, bearing float64) {
	if lat1 == lat2 && lon1 == lon2 {
		return 0, 0
	}
	var s12, azi1 float64
	geodesic.WGS84.Inverse(lat1, lon1, lat2, lon2, &s12, &azi1, nil)
	if math.IsNaN(s12) {
		s12 = 0
	}
	if math.IsNaN(azi1) {
		azi1 = 0
	}
	return math.Abs(s12), NormalizeBearing(azi1)
}

// Distance is DistanceBearing for orb points (which are lon,lat), distance only.
func Distance(a, b orb.Point) float64 {
	d, _ := DistanceBearing(a.Lat(), a.Lon(), b.Lat(), b.Lon())
	return d
}

// NormalizeBearing wraps any angle in degrees into [0,360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// -1e-15 + 360 rounds to 360.
	if deg >= 360 {
		deg = 0
	}
	return deg
}
