// Package history keeps the compacted per-person location history.
//
// Consecutive samples that don't represent a confident change of position
// are folded into a single record, so a person sitting at home all day
// costs one record, not one per poll.
package history

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/rotblauer/catwatch/conceptual"
	"github.com/rotblauer/catwatch/geo/move"
	"github.com/rotblauer/catwatch/params"
	"github.com/rotblauer/catwatch/types/record"
	"github.com/rotblauer/catwatch/types/sample"
)

// History is one person's records in chronological (insertion) order.
// ObservedAt never decreases along it, and only the last record
// is ever rewritten.
type History []record.Record

// Last returns the most recent record, if any.
func (h History) Last() (record.Record, bool) {
	if len(h) == 0 {
		return record.Record{}, false
	}
	return h[len(h)-1], true
}

// Entry is a record attributed to a person.
type Entry struct {
	Person conceptual.PersonID `json:"person"`
	record.Record
}

// Outcome says what Insert did with a sample.
type Outcome int

const (
	// OutcomeSkipped means the sample was nil or malformed.
	OutcomeSkipped Outcome = iota
	// OutcomeStale means the sample was observed before the last record.
	OutcomeStale
	// OutcomeFirst means the sample started a new history.
	OutcomeFirst
	// OutcomeReplaced means the sample had the same observation time as the
	// last record and replaced it outright.
	OutcomeReplaced
	// OutcomeCompacted means the sample was stationary noise; it replaced the
	// last record but kept its RecordedAt.
	OutcomeCompacted
	// OutcomeAppended means the sample was appended as a new record.
	OutcomeAppended
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeStale:
		return "stale"
	case OutcomeFirst:
		return "first"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeCompacted:
		return "compacted"
	case OutcomeAppended:
		return "appended"
	}
	return "unknown"
}

// Changed is true if the outcome wrote to the history.
func (o Outcome) Changed() bool {
	return o >= OutcomeFirst
}

// Store maps people to their histories.
// It is the unit of persistence: loaded once, saved wholesale.
// A single RWMutex guards it; Insert's read-decide-write holds the write lock.
type Store struct {
	Config *params.CompactionConfig

	mu         sync.RWMutex
	people     map[conceptual.PersonID]History
	classifier *move.Classifier
}

func NewStore(config *params.CompactionConfig) *Store {
	if config == nil {
		config = params.DefaultCompactionConfig()
	}
	return &Store{
		Config: config,
		people: make(map[conceptual.PersonID]History),
	}
}

// NewStoreFromSnapshot builds a store from persisted histories.
// The histories are copied.
func NewStoreFromSnapshot(config *params.CompactionConfig, snap map[conceptual.PersonID]History) *Store {
	s := NewStore(config)
	for person, h := range snap {
		s.people[person] = append(History(nil), h...)
	}
	return s
}

// WithClassifier sets the movement classifier used for compaction decisions.
// Only the distance, speed and accuracy of an assessment matter here,
// so the default is fine unless the sentinel speed is changed.
func (s *Store) WithClassifier(c *move.Classifier) *Store {
	s.classifier = c
	return s
}

func (s *Store) assess(a, b move.Fix) move.Assessment {
	if s.classifier != nil {
		return s.classifier.Assess(a, b)
	}
	return move.Assess(a, b)
}

// Insert adds a sample to the person's history, compacting as it goes.
// A nil or malformed sample is a no-op.
func (s *Store) Insert(person conceptual.PersonID, smp *sample.Sample, receivedAt time.Time) Outcome {
	if smp == nil || person.Empty() {
		return OutcomeSkipped
	}
	if err := smp.Validate(); err != nil {
		slog.Debug("Skipping malformed sample", "person", person, "error", err)
		return OutcomeSkipped
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidate := record.FromSample(smp, receivedAt)
	events := s.people[person]
	last, ok := events.Last()
	if !ok {
		s.people[person] = append(events, candidate)
		return OutcomeFirst
	}

	// Same upstream timestamp, same observation. Latest fetch wins.
	if candidate.ObservedAt.Equal(last.ObservedAt) {
		// The dwell it may have accumulated still stands.
		candidate.FirstObservedAt = last.FirstObservedAt
		events[len(events)-1] = candidate
		return OutcomeReplaced
	}

	if candidate.ObservedAt.Before(last.ObservedAt) {
		slog.Debug("Ignoring stale sample", "person", person,
			"observed", candidate.ObservedAt, "last", last.ObservedAt)
		return OutcomeStale
	}

	info := s.assess(last.Fix(), candidate.Fix())

	// Definite displacement beats the speed heuristic:
	// a long dwell followed by a short hop averages out slow,
	// but it's still a move.
	if info.SpeedKMH < s.Config.StationarySpeedKMH && !info.DifferentPointsForSure {
		candidate.RecordedAt = last.RecordedAt
		candidate.FirstObservedAt = last.FirstObservedAt
		events[len(events)-1] = candidate
		return OutcomeCompacted
	}

	s.people[person] = append(events, candidate)
	return OutcomeAppended
}

// Last returns the person's most recent record, if any.
func (s *Store) Last(person conceptual.PersonID) (record.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.people[person].Last()
}

// History returns a copy of the person's history.
func (s *Store) History(person conceptual.PersonID) History {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.people[person]
	if !ok {
		return nil
	}
	return append(History(nil), h...)
}

// Len returns the number of records for the person.
func (s *Store) Len(person conceptual.PersonID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.people[person])
}

// Count returns the total number of records across all people.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, h := range s.people {
		n += len(h)
	}
	return n
}

// People returns the known people, sorted.
func (s *Store) People() []conceptual.PersonID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]conceptual.PersonID, 0, len(s.people))
	for p := range s.people {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Snapshot returns a deep copy of all histories, for persistence.
func (s *Store) Snapshot() map[conceptual.PersonID]History {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[conceptual.PersonID]History, len(s.people))
	for p, h := range s.people {
		out[p] = append(History(nil), h...)
	}
	return out
}

// Latest returns every person's last record, sorted by person.
func (s *Store) Latest() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.people))
	for p, h := range s.people {
		if r, ok := h.Last(); ok {
			out = append(out, Entry{Person: p, Record: r})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Person < out[j].Person })
	return out
}
