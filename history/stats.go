package history

import (
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rotblauer/catwatch/conceptual"
	"github.com/rotblauer/catwatch/geo/geodesic"
)

// Summary describes one person's history at a glance.
type Summary struct {
	Person         conceptual.PersonID `json:"person"`
	Records        int                 `json:"records"`
	First          time.Time           `json:"first"`
	Last           time.Time           `json:"last"`
	Distance       float64             `json:"distance"`                   // meters, record to record
	DwellMean      time.Duration       `json:"dwell_mean"`
	DwellMedian    time.Duration       `json:"dwell_median"`
	DwellMax       time.Duration       `json:"dwell_max"`
	LongestDwellAt string              `json:"longest_dwell_at,omitempty"`
}

// Summarize computes a Summary for a history.
// An empty history yields a zero summary (but for the person).
func Summarize(person conceptual.PersonID, h History) Summary {
	sum := Summary{Person: person, Records: len(h)}
	if len(h) == 0 {
		return sum
	}
	sum.First = h[0].FirstObservedAt
	sum.Last = h[len(h)-1].ObservedAt

	dwells := make(stats.Float64Data, 0, len(h))
	longest := 0
	for i, r := range h {
		dwells = append(dwells, r.Dwell().Seconds())
		if r.Dwell() > h[longest].Dwell() {
			longest = i
		}
		if i > 0 {
			sum.Distance += geodesic.Distance(h[i-1].Point(), r.Point())
		}
	}
	sum.LongestDwellAt = h[longest].MapLink

	if v, err := stats.Mean(dwells); err == nil {
		sum.DwellMean = seconds(v)
	}
	if v, err := stats.Median(dwells); err == nil {
		sum.DwellMedian = seconds(v)
	}
	if v, err := stats.Max(dwells); err == nil {
		sum.DwellMax = seconds(v)
	}
	return sum
}

// Summaries summarizes every person in the store, sorted by person.
func (s *Store) Summaries() []Summary {
	people := s.People()
	out := make([]Summary, 0, len(people))
	for _, p := range people {
		out = append(out, Summarize(p, s.History(p)))
	}
	return out
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second)).Round(time.Second)
}
