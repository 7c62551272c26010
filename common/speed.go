package common

// SpeedOfCommercialFlightKMH is about as fast as a person gets.
// Anything quicker between two fixes is a bad fix, not a trip.
const SpeedOfCommercialFlightKMH = 900.0

// MPSToKMH converts meters per second to kilometers per hour.
func MPSToKMH(mps float64) float64 {
	return mps * 3.6
}
