package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rotblauer/catwatch/autosave"
	"github.com/rotblauer/catwatch/common"
	"github.com/rotblauer/catwatch/conceptual"
	"github.com/rotblauer/catwatch/events"
	"github.com/rotblauer/catwatch/feed"
	"github.com/rotblauer/catwatch/geo/geodesic"
	"github.com/rotblauer/catwatch/geo/move"
	"github.com/rotblauer/catwatch/history"
	"github.com/rotblauer/catwatch/metrics"
	"github.com/rotblauer/catwatch/params"
	"github.com/rotblauer/catwatch/types/record"
	"github.com/rotblauer/catwatch/types/sample"
)

// Exporter receives the records changed by each iteration.
type Exporter interface {
	Export(entries []history.Entry) error
}

// Collector polls a feed into a store.
type Collector struct {
	Config   *params.CollectConfig
	Movement *params.MovementConfig

	Feed     feed.Feed
	Store    *history.Store
	AutoSave *autosave.Scheduler // optional
	Exporter Exporter            // optional

	// Now is the clock. It defaults to time.Now.
	Now func() time.Time

	classifier *move.Classifier
	logger     *slog.Logger
}

func NewCollector(config *params.CollectConfig, movement *params.MovementConfig,
	f feed.Feed, store *history.Store) (*Collector, error) {
	if config == nil {
		config = params.DefaultCollectConfig()
	}
	if movement == nil {
		movement = params.DefaultMovementConfig()
	}
	classifier, err := move.NewClassifier(movement)
	if err != nil {
		return nil, err
	}
	return &Collector{
		Config:     config,
		Movement:   movement,
		Feed:       f,
		Store:      store,
		Now:        time.Now,
		classifier: classifier,
		logger:     slog.With("d", "collect"),
	}, nil
}

// Run polls until the iteration budget is spent, the feed is exhausted,
// or ctx is canceled. A negative budget never runs out.
// There is no wait after the final iteration.
// A canceled context returns ctx.Err().
func (c *Collector) Run(ctx context.Context) error {
	budget := c.Config.Iterations
	for i := 0; budget < 0 || i < budget; {
		err := c.Iterate(ctx)
		if errors.Is(err, feed.ErrExhausted) {
			c.logger.Info("Feed exhausted", "iterations", i+1)
			return nil
		}
		if err != nil {
			return err
		}
		i++
		if budget >= 0 && i >= budget {
			break
		}
		c.logger.Debug("Waiting", "for", c.Config.PollInterval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.Config.PollInterval):
		}
	}
	return nil
}

// Iterate runs one poll: fetch, insert everyone, report movement,
// then give the autosave scheduler and the exporter their turn.
// Fetch failures are logged and counted, not returned;
// only cancellation and feed exhaustion end the loop.
func (c *Collector) Iterate(ctx context.Context) error {
	now := c.Now()
	metrics.Fetches.Inc(1)
	snap, err := c.Feed.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, feed.ErrExhausted) {
			return err
		}
		metrics.FetchFailures.Inc(1)
		c.logger.Warn("Fetch failed", "error", err)
		c.tick(now)
		return nil
	}
	metrics.Samples.Mark(int64(len(snap.People)))
	c.logger.Info("Collected", "people", len(snap.People))

	var changed []history.Entry
	for _, s := range snap.People {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s == nil {
			continue
		}
		pre, hadPre := c.Store.Last(s.Name)
		outcome := c.Store.Insert(s.Name, s, now)
		metrics.InsertOutcome(outcome.String()).Inc(1)
		if !outcome.Changed() {
			continue
		}
		post, _ := c.Store.Last(s.Name)
		changed = append(changed, history.Entry{Person: s.Name, Record: post})
		if !hadPre {
			c.logger.Info("New person", "person", s.Name, "at", post.MapLink)
			continue
		}
		if pre.ObservedAt.Equal(post.ObservedAt) {
			c.logger.Debug("No change", "person", s.Name)
			continue
		}
		c.report(s.Name, pre, post, snap.Me)
	}

	c.tick(now)
	if c.Exporter != nil && len(changed) > 0 {
		if err := c.Exporter.Export(changed); err != nil {
			c.logger.Warn("Export failed", "records", len(changed), "error", err)
		}
	}
	return nil
}

func (c *Collector) tick(now time.Time) {
	if c.AutoSave == nil {
		return
	}
	// The scheduler logs its own failures.
	_, _ = c.AutoSave.Tick(now)
}

// report logs and publishes a person's movement from pre to post,
// and their distance from me, if known.
func (c *Collector) report(person conceptual.PersonID, pre, post record.Record, me *sample.Sample) {
	info := c.classifier.Assess(pre.Fix(), post.Fix())
	moving := c.Movement.MovingSpeedMinKMH < info.SpeedKMH && info.SpeedKMH < c.Movement.MovingSpeedMaxKMH

	ev := events.Movement{
		Person:     person,
		Record:     post,
		Assessment: info,
		Moving:     moving,
	}
	logger := c.logger.With("person", person)
	if moving {
		metrics.Moving.Inc(1)
		logger.Warn("Moving", "speed", common.HumanSpeed(info.SpeedKMH),
			"bearing", info.BearingName, "distance", common.HumanDistance(info.Distance))
	} else {
		logger.Info("Not moving", "speed", common.HumanSpeed(info.SpeedKMH))
	}

	if me != nil {
		d := geodesic.Distance(me.Point(), post.Point())
		ev.SelfDistance = &d
		ev.Near = d < c.Movement.ProximityDistance
		if ev.Near {
			logger.Info("Near you", "distance", common.HumanDistance(d))
		} else {
			logger.Info("Far from you", "distance", common.HumanDistance(d))
		}
	}

	metrics.Movements.Inc(1)
	events.MovementFeed.Send(ev)
}
