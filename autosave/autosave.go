// Package autosave saves a store at most once per interval,
// driven by the caller's clock rather than a timer of its own.
package autosave

import (
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotblauer/catwatch/events"
	"github.com/rotblauer/catwatch/history"
	"github.com/rotblauer/catwatch/metrics"
	"github.com/rotblauer/catwatch/params"
)

type Saver interface {
	Save(s *history.Store) error
	Path() string
}

type Scheduler struct {
	Config *params.AutoSaveConfig

	saver  Saver
	store  *history.Store
	next   time.Time
	streak int
	logger *slog.Logger
}

func New(config *params.AutoSaveConfig, saver Saver, store *history.Store) *Scheduler {
	if config == nil {
		config = params.DefaultAutoSaveConfig()
	}
	return &Scheduler{
		Config: config,
		saver:  saver,
		store:  store,
		logger: slog.With("d", "autosave"),
	}
}

// Next returns the time of the next scheduled save, or the zero time
// if nothing is scheduled yet.
func (s *Scheduler) Next() time.Time {
	return s.next
}

// Tick saves if a save is due at now.
// The first tick only schedules: nothing is saved until a full interval
// has passed. After a save attempt, successful or not, the next save is
// scheduled one interval after now.
func (s *Scheduler) Tick(now time.Time) (saved bool, err error) {
	if s.next.IsZero() {
		s.next = now.Add(s.Config.Interval)
		s.logger.Info("Next save scheduled", "in", s.Config.Interval, "at", s.next.Format(time.Kitchen))
		return false, nil
	}
	if now.Before(s.next) {
		s.logger.Debug("Next save", "in", humanize.RelTime(now, s.next, "ago", "from now"))
		return false, nil
	}
	err = s.SaveNow()
	s.next = now.Add(s.Config.Interval)
	return err == nil, err
}

// SaveNow saves unconditionally. It does not reschedule.
func (s *Scheduler) SaveNow() error {
	start := time.Now()
	err := s.saver.Save(s.store)
	records := s.store.Count()
	events.StoreSavedFeed.Send(events.Saved{Path: s.saver.Path(), Records: records, Err: err})
	if err != nil {
		s.streak++
		metrics.SaveFailures.Inc(1)
		if s.Config.FailureEscalation > 0 && s.streak >= s.Config.FailureEscalation {
			s.logger.Error("Save failed repeatedly", "path", s.saver.Path(), "streak", s.streak, "error", err)
		} else {
			s.logger.Warn("Save failed", "path", s.saver.Path(), "streak", s.streak, "error", err)
		}
		return err
	}
	s.streak = 0
	metrics.Saves.Inc(1)
	s.logger.Info("Saved store", "path", s.saver.Path(),
		"records", humanize.Comma(int64(records)), "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// FailureStreak returns the number of consecutive failed saves.
func (s *Scheduler) FailureStreak() int {
	return s.streak
}
