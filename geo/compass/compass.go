package compass

import (
	"errors"
	"fmt"
	"math"
)

// Resolution is the number of named sectors on the compass rose.
type Resolution int

const (
	Points8  Resolution = 8
	Points16 Resolution = 16
)

// Locale picks the language of the sector names.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleHU Locale = "hu"
)

var (
	ErrResolution = errors.New("compass resolution must be 8 or 16")
	ErrLocale     = errors.New("unknown compass locale")
)

// Tables start at North and proceed clockwise.
var tables = map[Locale]map[Resolution][]string{
	LocaleEN: {
		Points8: {"North", "North East", "East", "South East",
			"South", "South West", "West", "North West"},
		Points16: {"North", "North North East", "North East", "East North East",
			"East", "East South East", "South East", "South South East",
			"South", "South South West", "South West", "West South West",
			"West", "West North West", "North West", "North North West"},
	},
	LocaleHU: {
		Points8: {"É", "ÉK", "K", "DK", "D", "DNY", "NY", "ÉNY"},
		Points16: {"É", "ÉÉK", "ÉK", "KÉK", "K", "KDK", "DK", "DDK",
			"D", "DDNY", "DNY", "NYDNY", "NY", "NYÉNY", "ÉNY", "ÉÉNY"},
	},
}

// Validate checks a resolution and locale pair.
func Validate(resolution Resolution, locale Locale) error {
	byRes, ok := tables[locale]
	if !ok {
		return fmt.Errorf("%w: %q", ErrLocale, locale)
	}
	if _, ok := byRes[resolution]; !ok {
		return fmt.Errorf("%w: got %d", ErrResolution, resolution)
	}
	return nil
}

// SectorName returns the name of the compass sector a bearing falls into.
// Half a sector width is added before quantizing, so sector boundaries
// fall between the named directions rather than on them.
func SectorName(bearing float64, resolution Resolution, locale Locale) (string, error) {
	if err := Validate(resolution, locale); err != nil {
		return "", err
	}
	names := tables[locale][resolution]
	width := 360.0 / float64(len(names))
	b := math.Mod(bearing+width/2, 360)
	if b < 0 {
		b += 360
	}
	i := int(b/width) % len(names)
	return names[i], nil
}

// MustSectorName is SectorName for resolutions and locales known to be valid.
func MustSectorName(bearing float64, resolution Resolution, locale Locale) string {
	name, err := SectorName(bearing, resolution, locale)
	if err != nil {
		panic(err)
	}
	return name
}
