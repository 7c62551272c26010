package common

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// HumanDistance renders meters the way a person would say them out loud.
// Short distances keep a decimal, medium ones are whole meters,
// and anything past a couple kilometers switches units.
func HumanDistance(meters float64) string {
	switch {
	case meters < 0 || math.IsNaN(meters):
		return "?"
	case meters < 20:
		return fmt.Sprintf("%.1f m", meters)
	case meters < 2000:
		return fmt.Sprintf("%d m", Round(meters))
	case meters < 20000:
		return humanize.FtoaWithDigits(meters/1000.0, 1) + " km"
	}
	return humanize.Comma(int64(Round(meters/1000.0))) + " km"
}

// HumanSpeed renders km/h.
func HumanSpeed(kmh float64) string {
	return humanize.FtoaWithDigits(kmh, 1) + " km/h"
}
