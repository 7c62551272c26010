// Package metrics holds the process-wide counters.
package metrics

import (
	gethmetrics "github.com/ethereum/go-ethereum/metrics"
)

// Registry holds every catwatch metric.
// The go-ethereum metrics package won't record anything unless enabled,
// and it must be enabled before the metrics are constructed.
var Registry = func() gethmetrics.Registry {
	gethmetrics.Enabled = true
	return gethmetrics.NewRegistry()
}()

var (
	Fetches       = gethmetrics.NewRegisteredCounter("feed/fetches", Registry)
	FetchFailures = gethmetrics.NewRegisteredCounter("feed/fetch/failures", Registry)
	Samples       = gethmetrics.NewRegisteredMeter("feed/samples", Registry)

	Saves        = gethmetrics.NewRegisteredCounter("store/saves", Registry)
	SaveFailures = gethmetrics.NewRegisteredCounter("store/save/failures", Registry)

	Movements = gethmetrics.NewRegisteredCounter("collect/movements", Registry)
	Moving    = gethmetrics.NewRegisteredCounter("collect/moving", Registry)
)

// InsertOutcome returns the counter for a history insert outcome, by name.
func InsertOutcome(outcome string) gethmetrics.Counter {
	return gethmetrics.GetOrRegisterCounter("store/insert/"+outcome, Registry)
}

// Counts returns a snapshot of every counter, by name.
// Meters report their total count.
func Counts() map[string]int64 {
	out := map[string]int64{}
	Registry.Each(func(name string, i interface{}) {
		switch m := i.(type) {
		case gethmetrics.Counter:
			out[name] = m.Snapshot().Count()
		case gethmetrics.Meter:
			out[name] = m.Snapshot().Count()
		}
	})
	return out
}
