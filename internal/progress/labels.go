package progress

import (
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/quitlog/internal/models"
)

// CostLabel renders a habit's per-engagement cost with its unit.
func CostLabel(h models.Habit) string {
	c := cost(h)
	switch h.CostType {
	case models.CostMoney:
		return fmt.Sprintf("$%.2f", c)
	case models.CostTime:
		return trimFloat(c) + " min"
	case models.CostHealth:
		return trimFloat(c) + " impact"
	default:
		return trimFloat(c)
	}
}

// SavedLabel renders TotalSaved, with a dollar sign for money habits.
func SavedLabel(h models.Habit, now time.Time) string {
	s := fmt.Sprintf("%.2f", TotalSaved(h, now))
	if h.CostType == models.CostMoney {
		return "$" + s
	}
	return s
}

// GoalLabel renders a goal target, or "No goal set" when there is none.
func GoalLabel(g *models.Goal) string {
	if g == nil || !finite(g.Value) || g.Value <= 0 {
		return "No goal set"
	}
	if g.Type == models.GoalMoney {
		return fmt.Sprintf("$%.2f", g.Value)
	}
	unit := string(g.Unit)
	if unit == "" {
		unit = "units"
	}
	return trimFloat(g.Value) + " " + unit
}

// FormatElapsed renders e as "3h 4m 5s".
func FormatElapsed(e Elapsed) string {
	return fmt.Sprintf("%dh %dm %ds", e.Hours, e.Minutes, e.Seconds)
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
