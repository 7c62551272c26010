package params

import "github.com/rotblauer/catwatch/common"

// CompactionConfig holds the heuristics that decide whether a new sample
// extends a person's history or gets folded into the most recent record.
type CompactionConfig struct {
	// StationarySpeedKMH is the speed below which two consecutive samples
	// are considered noise around a fixed point.
	// It's typical consumer GPS jitter, not a law of physics.
	StationarySpeedKMH float64
}

func DefaultCompactionConfig() *CompactionConfig {
	return &CompactionConfig{
		StationarySpeedKMH: 1.0,
	}
}

// CompassConfig selects the bearing-name table.
type CompassConfig struct {
	// Points is the compass resolution, 8 or 16.
	Points int
	// Locale is "en" or "hu".
	Locale string
}

// MovementConfig holds the thresholds for the log-worthy movement signals.
type MovementConfig struct {
	CompassConfig

	// SameInstantSpeedKMH is reported instead of dividing by a zero elapsed time.
	SameInstantSpeedKMH float64

	// MovingSpeedMinKMH and MovingSpeedMaxKMH bound (exclusive) the speeds
	// that get reported as "moving". The upper bound excludes the
	// same-instant sentinel and other bogus outliers.
	MovingSpeedMinKMH float64
	MovingSpeedMaxKMH float64

	// ProximityDistance is the "near you" radius, in meters.
	ProximityDistance float64
}

func DefaultMovementConfig() *MovementConfig {
	return &MovementConfig{
		CompassConfig: CompassConfig{
			Points: 8,
			Locale: "en",
		},
		SameInstantSpeedKMH: 999.0,
		MovingSpeedMinKMH:   2.0,
		MovingSpeedMaxKMH:   common.SpeedOfCommercialFlightKMH,
		ProximityDistance:   200.0,
	}
}
