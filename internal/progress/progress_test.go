package progress

import (
	"math"
	"testing"
	"time"

	"github.com/julianstephens/quitlog/internal/models"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func habit(cost float64, ct models.CostType, last time.Time, goal *models.Goal) models.Habit {
	return models.Habit{ID: "h", Name: "h", Cost: cost, CostType: ct, LastEngaged: last, Goal: goal}
}

func TestMoneyGoalScenario(t *testing.T) {
	h := habit(5, models.CostMoney, now.Add(-3*day), &models.Goal{Type: models.GoalMoney, Value: 20, Unit: models.UnitDollars})

	if got := DaysSince(h.LastEngaged, now); got != 3 {
		t.Errorf("DaysSince = %d, want 3", got)
	}
	if got := TotalSaved(h, now); got != 15 {
		t.Errorf("TotalSaved = %v, want 15", got)
	}
	p := Of(h, now)
	if p.Current != 15 || p.Percentage != 75 {
		t.Errorf("Of = %+v, want {15 75}", p)
	}
}

func TestWeeksGoalScenario(t *testing.T) {
	h := habit(0, models.CostHealth, now.Add(-21*day), &models.Goal{Type: models.GoalTime, Value: 2, Unit: models.UnitWeeks})

	p := Of(h, now)
	if p.Current != 3 {
		t.Errorf("Current = %v, want 3", p.Current)
	}
	if p.Percentage != 100 {
		t.Errorf("Percentage = %v, want 100", p.Percentage)
	}
}

func TestOf_TimeUnits(t *testing.T) {
	last := now.Add(-48 * time.Hour)

	tests := []struct {
		unit models.GoalUnit
		want float64
	}{
		{models.UnitHours, 48},
		{models.UnitDays, 2},
		{models.UnitWeeks, 48.0 / 168},
		{models.UnitMonths, 48.0 / 720},
		{models.GoalUnit("fortnights"), 2},
		{models.UnitDollars, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			h := habit(0, models.CostTime, last, &models.Goal{Type: models.GoalTime, Value: 1000, Unit: tt.unit})
			if got := Of(h, now).Current; math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Current = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOf_MoneyIgnoresUnit(t *testing.T) {
	last := now.Add(-36 * time.Hour)
	for _, unit := range []models.GoalUnit{models.UnitHours, models.UnitWeeks, models.UnitDollars, ""} {
		h := habit(4, models.CostMoney, last, &models.Goal{Type: models.GoalMoney, Value: 8, Unit: unit})
		p := Of(h, now)
		if p.Current != 4 || p.Percentage != 50 {
			t.Errorf("unit %q: Of = %+v, want {4 50}", unit, p)
		}
	}
}

func TestOf_ZeroGoalGuard(t *testing.T) {
	last := now.Add(-10 * day)
	goals := map[string]*models.Goal{
		"nil":      nil,
		"zero":     {Type: models.GoalTime, Value: 0, Unit: models.UnitDays},
		"negative": {Type: models.GoalMoney, Value: -5},
		"nan":      {Type: models.GoalTime, Value: math.NaN(), Unit: models.UnitDays},
		"inf":      {Type: models.GoalTime, Value: math.Inf(1), Unit: models.UnitDays},
		"bad type": {Type: models.GoalType("karma"), Value: 3},
	}

	for name, g := range goals {
		t.Run(name, func(t *testing.T) {
			if p := Of(habit(10, models.CostMoney, last, g), now); p != (Progress{}) {
				t.Errorf("Of = %+v, want zero", p)
			}
		})
	}
}

func TestOf_PercentageClamped(t *testing.T) {
	costs := []float64{0, 0.01, 1, 1e6, math.MaxFloat64, math.NaN(), math.Inf(1), -3}
	values := []float64{0.001, 1, 7, 1e9}
	lasts := []time.Time{now, now.Add(-time.Minute), now.Add(-400 * day), now.Add(5 * day), {}}

	for _, c := range costs {
		for _, v := range values {
			for _, last := range lasts {
				for _, gt := range []models.GoalType{models.GoalTime, models.GoalMoney} {
					p := Of(habit(c, models.CostMoney, last, &models.Goal{Type: gt, Value: v, Unit: models.UnitDays}), now)
					if p.Percentage < 0 || p.Percentage > 100 || math.IsNaN(p.Percentage) {
						t.Fatalf("cost=%v value=%v last=%v type=%s: percentage %v out of range", c, v, last, gt, p.Percentage)
					}
					if math.IsNaN(p.Current) || p.Current < 0 {
						t.Fatalf("cost=%v value=%v: current %v", c, v, p.Current)
					}
				}
			}
		}
	}
}

func TestDaysSince_Monotonic(t *testing.T) {
	last := now.Add(-5 * time.Hour)
	prev := -1
	for i := 0; i < 24*60; i++ {
		at := now.Add(time.Duration(i) * 17 * time.Minute)
		d := DaysSince(last, at)
		if d < prev {
			t.Fatalf("DaysSince decreased at %v: %d < %d", at, d, prev)
		}
		prev = d
	}
}

func TestDaysSince_Edges(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		want int
	}{
		{"same instant", now, 0},
		{"just under a day", now.Add(-day + time.Second), 0},
		{"exactly a day", now.Add(-day), 1},
		{"future is absolute", now.Add(50 * time.Hour), 2},
		{"zero time", time.Time{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysSince(tt.last, now); got != tt.want {
				t.Errorf("DaysSince = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestElapsedSince(t *testing.T) {
	last := now.Add(-(27*time.Hour + 4*time.Minute + 5*time.Second))
	got := ElapsedSince(last, now)
	if got != (Elapsed{Hours: 27, Minutes: 4, Seconds: 5}) {
		t.Errorf("ElapsedSince = %+v", got)
	}
	if FormatElapsed(got) != "27h 4m 5s" {
		t.Errorf("FormatElapsed = %q", FormatElapsed(got))
	}
	if ElapsedSince(time.Time{}, now) != (Elapsed{}) {
		t.Error("zero last should yield zero elapsed")
	}
}

func TestTotalSaved(t *testing.T) {
	last := now.Add(-4 * day)
	tests := []struct {
		name string
		h    models.Habit
		want float64
	}{
		{"money", habit(2.5, models.CostMoney, last, nil), 10},
		{"time still counted", habit(30, models.CostTime, last, nil), 120},
		{"nan cost", habit(math.NaN(), models.CostMoney, last, nil), 0},
		{"negative cost", habit(-2, models.CostMoney, last, nil), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalSaved(tt.h, now); got != tt.want {
				t.Errorf("TotalSaved = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAggregates(t *testing.T) {
	habits := []models.Habit{
		habit(5, models.CostMoney, now.Add(-3*day), nil),
		habit(30, models.CostTime, now.Add(-10*day), nil),
		habit(1, models.CostMoney, now.Add(-7*day), nil),
	}
	habits[0].Notes = []models.RelapseEvent{{Date: now}, {Date: now}}
	habits[2].Notes = []models.RelapseEvent{{}}

	if got := MoneySaved(habits, now); got != 22 {
		t.Errorf("MoneySaved = %v, want 22", got)
	}
	if got := LongestStreak(habits, now); got != 10 {
		t.Errorf("LongestStreak = %d, want 10", got)
	}
	if LongestStreak(nil, now) != 0 || MoneySaved(nil, now) != 0 {
		t.Error("empty collection should aggregate to zero")
	}

	s := Summarize(habits, now)
	if s != (Summary{MoneySaved: 22, LongestStreak: 10, Active: 3, Relapses: 3}) {
		t.Errorf("Summarize = %+v", s)
	}
}

func TestRelapseDays(t *testing.T) {
	h := models.Habit{Notes: []models.RelapseEvent{
		{Date: time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC), Text: "a"},
		{Date: time.Date(2024, 5, 3, 22, 0, 0, 0, time.UTC), Text: "b"},
		{Date: time.Date(2024, 5, 31, 1, 0, 0, 0, time.UTC)},
		{Date: time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)},
		{},
	}}

	days := RelapseDays(h, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	if len(days) != 2 {
		t.Fatalf("got %d days, want 2: %v", len(days), days)
	}
	if len(days[3]) != 2 || days[3][1].Text != "b" {
		t.Errorf("day 3 = %+v", days[3])
	}
	if len(days[31]) != 1 {
		t.Errorf("day 31 = %+v", days[31])
	}
}

func TestLabels(t *testing.T) {
	last := now.Add(-2 * day)
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"money cost", CostLabel(habit(3, models.CostMoney, last, nil)), "$3.00"},
		{"time cost", CostLabel(habit(45, models.CostTime, last, nil)), "45 min"},
		{"health cost", CostLabel(habit(2.5, models.CostHealth, last, nil)), "2.5 impact"},
		{"money saved", SavedLabel(habit(3, models.CostMoney, last, nil), now), "$6.00"},
		{"time saved", SavedLabel(habit(45, models.CostTime, last, nil), now), "90.00"},
		{"money goal", GoalLabel(&models.Goal{Type: models.GoalMoney, Value: 50}), "$50.00"},
		{"time goal", GoalLabel(&models.Goal{Type: models.GoalTime, Value: 2, Unit: models.UnitWeeks}), "2 weeks"},
		{"no unit", GoalLabel(&models.Goal{Type: models.GoalTime, Value: 2}), "2 units"},
		{"no goal", GoalLabel(nil), "No goal set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
