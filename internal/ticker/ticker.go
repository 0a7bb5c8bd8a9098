// Package ticker re-evaluates progress on a fixed interval and publishes the
// result, so long-running views track wall-clock time.
package ticker

import (
	"context"
	"time"

	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/progress"
)

// Entry is the evaluated state of one habit at a tick.
type Entry struct {
	Habit    models.Habit
	Elapsed  progress.Elapsed
	Days     int
	Progress progress.Progress
	Saved    float64
}

// Snapshot is one published evaluation of the whole collection.
type Snapshot struct {
	At      time.Time
	Entries []Entry
	Summary progress.Summary
}

// Source supplies the current collection at each tick.
type Source func() ([]models.Habit, error)

// Evaluate computes a Snapshot for habits at now.
func Evaluate(habits []models.Habit, now time.Time) Snapshot {
	snap := Snapshot{
		At:      now,
		Entries: make([]Entry, 0, len(habits)),
		Summary: progress.Summarize(habits, now),
	}
	for _, h := range habits {
		snap.Entries = append(snap.Entries, Entry{
			Habit:    h,
			Elapsed:  progress.ElapsedSince(h.LastEngaged, now),
			Days:     progress.DaysSince(h.LastEngaged, now),
			Progress: progress.Of(h, now),
			Saved:    progress.TotalSaved(h, now),
		})
	}
	return snap
}

// Run publishes a Snapshot immediately and then once per interval until ctx
// is cancelled. A failing source skips that tick.
func Run(ctx context.Context, interval time.Duration, clock func() time.Time, source Source, publish func(Snapshot)) error {
	if interval <= 0 {
		interval = time.Second
	}

	emit := func() {
		habits, err := source()
		if err != nil {
			logger.Warn("Skipping tick", "error", err)
			return
		}
		publish(Evaluate(habits, clock()))
	}

	emit()
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			emit()
		}
	}
}
