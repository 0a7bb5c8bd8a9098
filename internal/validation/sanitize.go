package validation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
)

// Accepted layouts for stored or hand-edited timestamps, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	constants.DateFormat,
}

// Epoch-millisecond inputs beyond this are not valid instants.
const maxEpochMillis = 8.64e15

// ValidateNumber returns value as a finite, non-negative float64. Numeric
// strings are accepted. Anything that does not parse to a finite number
// yields fallback.
func ValidateNumber(value any, fallback float64) float64 {
	n, ok := toFloat(value)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return fallback
	}
	return math.Max(0, n)
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

// ValidateDate returns value as a valid instant, or now when it cannot be
// interpreted. Strings are parsed as ISO-8601 and numbers as epoch
// milliseconds.
func ValidateDate(value any, now time.Time) time.Time {
	if t, ok := parseDate(value); ok {
		return t
	}
	return now
}

func parseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case nil, bool:
		return time.Time{}, false
	}

	ms, ok := toFloat(value)
	if !ok || math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > maxEpochMillis {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

// ValidateString returns the trimmed string, or fallback when value is not a
// string or is blank.
func ValidateString(value any, fallback string) string {
	s, ok := value.(string)
	if !ok {
		return fallback
	}
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}

// ValidateGoal normalizes a goal object. Non-objects yield the default goal.
func ValidateGoal(value any) models.Goal {
	var raw map[string]any
	switch v := value.(type) {
	case map[string]any:
		raw = v
	case models.Goal:
		raw = map[string]any{"type": string(v.Type), "value": v.Value, "unit": string(v.Unit)}
	case *models.Goal:
		if v == nil {
			return models.DefaultGoal()
		}
		return ValidateGoal(*v)
	default:
		return models.DefaultGoal()
	}

	goal := models.Goal{Type: models.GoalTime, Unit: models.UnitDays}
	if t, _ := raw["type"].(string); models.GoalType(t) == models.GoalMoney {
		goal.Type = models.GoalMoney
	}

	goal.Value = ValidateNumber(raw["value"], 1)
	if goal.Value <= 0 {
		goal.Value = 1
	}

	if u := models.GoalUnit(ValidateString(raw["unit"], "")); u.Valid() {
		goal.Unit = u
	}
	return goal
}

// SanitizeRecord turns an arbitrarily shaped decoded record into a Habit that
// satisfies every model invariant. It never fails. newID is called only when
// the record has no usable id.
func SanitizeRecord(raw any, now time.Time, newID func() string) models.Habit {
	m, _ := raw.(map[string]any)
	if m == nil {
		m = map[string]any{}
	}

	id := ValidateString(m["id"], "")
	if id == "" {
		id = newID()
	}

	costType := models.CostType(ValidateString(m["costType"], ""))
	if !costType.Valid() {
		costType = models.CostMoney
	}

	lastEngaged := m["lastEngaged"]
	if lastEngaged == nil {
		lastEngaged = m["lastEngagedAt"]
	}

	goal := ValidateGoal(m["goal"])

	notesRaw, ok := m["notes"].([]any)
	if !ok {
		notesRaw, _ = m["relapseEvents"].([]any)
	}
	notes := make([]models.RelapseEvent, 0, len(notesRaw))
	for _, n := range notesRaw {
		nm, _ := n.(map[string]any)
		notes = append(notes, models.RelapseEvent{
			Date: ValidateDate(nm["date"], now),
			Text: ValidateString(nm["text"], ""),
		})
	}

	return models.Habit{
		ID:          id,
		Name:        ValidateString(m["name"], constants.DefaultHabitName),
		Icon:        ValidateString(m["icon"], constants.DefaultHabitIcon),
		Cost:        ValidateNumber(m["cost"], 0),
		CostType:    costType,
		LastEngaged: ValidateDate(lastEngaged, now),
		CreatedAt:   ValidateDate(m["createdAt"], now),
		Goal:        &goal,
		Notes:       notes,
	}
}

// SanitizeAll sanitizes one loaded collection. Missing ids come from newID,
// or fresh UUIDs when newID is nil.
func SanitizeAll(raw []any, now time.Time, newID func() string) []models.Habit {
	if newID == nil {
		newID = uuid.NewString
	}
	habits := make([]models.Habit, 0, len(raw))
	for _, r := range raw {
		habits = append(habits, SanitizeRecord(r, now, newID))
	}
	return habits
}

// Normalize applies the same invariants to an already typed Habit.
func Normalize(h models.Habit, now time.Time) models.Habit {
	out := h.Clone()
	out.Name = ValidateString(h.Name, constants.DefaultHabitName)
	out.Icon = ValidateString(h.Icon, constants.DefaultHabitIcon)
	out.Cost = ValidateNumber(h.Cost, 0)
	if !out.CostType.Valid() {
		out.CostType = models.CostMoney
	}
	out.LastEngaged = ValidateDate(h.LastEngaged, now)
	out.CreatedAt = ValidateDate(h.CreatedAt, now)
	goal := ValidateGoal(h.Goal)
	out.Goal = &goal
	for i := range out.Notes {
		out.Notes[i].Date = ValidateDate(out.Notes[i].Date, now)
		out.Notes[i].Text = ValidateString(out.Notes[i].Text, "")
	}
	return out
}
