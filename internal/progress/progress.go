package progress

import (
	"math"
	"time"

	"github.com/julianstephens/quitlog/internal/models"
)

const day = 24 * time.Hour

// Hours per goal unit for time goals. Months are approximated as 30 days.
var hoursPerUnit = map[models.GoalUnit]float64{
	models.UnitHours:  1,
	models.UnitDays:   24,
	models.UnitWeeks:  24 * 7,
	models.UnitMonths: 24 * 30,
}

// Elapsed is a duration broken into display components. Hours are not
// capped at 24.
type Elapsed struct {
	Hours   int
	Minutes int
	Seconds int
}

// Progress is how far a habit is toward its goal. Current is expressed in
// the goal's own scale; Percentage is always in [0, 100].
type Progress struct {
	Current    float64
	Percentage float64
}

// Summary aggregates a collection for the stats view.
type Summary struct {
	MoneySaved    float64
	LongestStreak int
	Active        int
	Relapses      int
}

func absSince(last, now time.Time) time.Duration {
	if last.IsZero() {
		return 0
	}
	d := now.Sub(last)
	if d < 0 {
		d = -d
	}
	return d
}

// ElapsedSince returns the absolute time between last and now. A zero last
// yields a zero Elapsed.
func ElapsedSince(last, now time.Time) Elapsed {
	d := absSince(last, now)
	return Elapsed{
		Hours:   int(d / time.Hour),
		Minutes: int(d % time.Hour / time.Minute),
		Seconds: int(d % time.Minute / time.Second),
	}
}

// DaysSince returns the number of whole days between last and now.
func DaysSince(last, now time.Time) int {
	return int(absSince(last, now) / day)
}

// Of computes goal progress for h at now. A missing or non-positive goal, or
// any non-finite intermediate value, yields the zero Progress.
func Of(h models.Habit, now time.Time) Progress {
	if h.Goal == nil || !finite(h.Goal.Value) || h.Goal.Value <= 0 {
		return Progress{}
	}

	var current float64
	switch h.Goal.Type {
	case models.GoalTime:
		hours := absSince(h.LastEngaged, now).Hours()
		per, ok := hoursPerUnit[h.Goal.Unit]
		if !ok {
			per = hoursPerUnit[models.UnitDays]
		}
		current = hours / per
	case models.GoalMoney:
		current = cost(h) * float64(DaysSince(h.LastEngaged, now))
	default:
		return Progress{}
	}

	pct := current / h.Goal.Value * 100
	if !finite(current) || !finite(pct) {
		return Progress{}
	}
	return Progress{
		Current:    math.Max(0, current),
		Percentage: clamp(pct, 0, 100),
	}
}

// TotalSaved is cost multiplied by whole days since last engagement,
// whatever the cost type.
func TotalSaved(h models.Habit, now time.Time) float64 {
	saved := cost(h) * float64(DaysSince(h.LastEngaged, now))
	if !finite(saved) {
		return 0
	}
	return math.Max(0, saved)
}

// MoneySaved sums TotalSaved over habits whose cost is money.
func MoneySaved(habits []models.Habit, now time.Time) float64 {
	var total float64
	for _, h := range habits {
		if h.CostType == models.CostMoney {
			total += TotalSaved(h, now)
		}
	}
	return total
}

// LongestStreak returns the largest DaysSince across habits, or 0 for none.
func LongestStreak(habits []models.Habit, now time.Time) int {
	longest := 0
	for _, h := range habits {
		if d := DaysSince(h.LastEngaged, now); d > longest {
			longest = d
		}
	}
	return longest
}

// Summarize computes the stats-view aggregates for habits at now.
func Summarize(habits []models.Habit, now time.Time) Summary {
	s := Summary{
		MoneySaved:    MoneySaved(habits, now),
		LongestStreak: LongestStreak(habits, now),
		Active:        len(habits),
	}
	for _, h := range habits {
		s.Relapses += len(h.Notes)
	}
	return s
}

// RelapseDays returns the days of month (1-31) in the month starting at
// monthStart that have at least one relapse, with the events on each day.
// Events with a zero date are skipped.
func RelapseDays(h models.Habit, monthStart time.Time) map[int][]models.RelapseEvent {
	days := make(map[int][]models.RelapseEvent)
	loc := monthStart.Location()
	for _, ev := range h.Notes {
		if ev.Date.IsZero() {
			continue
		}
		d := ev.Date.In(loc)
		if d.Year() == monthStart.Year() && d.Month() == monthStart.Month() {
			days[d.Day()] = append(days[d.Day()], ev)
		}
	}
	return days
}

func cost(h models.Habit) float64 {
	if !finite(h.Cost) {
		return 0
	}
	return h.Cost
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
