package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/progress"
	"github.com/julianstephens/quitlog/internal/utils"
)

type ListCmd struct{}

func (c *ListCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	habits, err := ctx.Store.GetAll()
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.println("No habits tracked yet. Add one with 'quitlog add'.")
		return nil
	}

	now := ctx.Store.Now()
	for i, h := range habits {
		printHabit(ctx, i+1, h, now)
	}
	return nil
}

func printHabit(ctx *Context, pos int, h models.Habit, now time.Time) {
	p := progress.Of(h, now)
	ctx.printf("%d. %s %s\n", pos, h.Icon, h.Name)
	ctx.printf("   clean for %d days (%s)\n", progress.DaysSince(h.LastEngaged, now), progress.FormatElapsed(progress.ElapsedSince(h.LastEngaged, now)))
	ctx.printf("   goal %s  %s %.0f%%\n", progress.GoalLabel(h.Goal), textBar(p.Percentage, 20), p.Percentage)
	ctx.printf("   cost %s/day  saved %s  relapses %d\n", progress.CostLabel(h), progress.SavedLabel(h, now), len(h.Notes))
}

func textBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

type StatsCmd struct{}

func (c *StatsCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	habits, err := ctx.Store.GetAll()
	if err != nil {
		return err
	}

	s := progress.Summarize(habits, ctx.Store.Now())
	ctx.printf("Habits tracked:  %d\n", s.Active)
	ctx.printf("Money saved:     $%.2f\n", s.MoneySaved)
	ctx.printf("Longest streak:  %d days\n", s.LongestStreak)
	ctx.printf("Relapses logged: %d\n", s.Relapses)
	return nil
}

type HistoryCmd struct {
	Name  string `arg:"" help:"Habit name, id or list position."`
	Month string `help:"Month in YYYY-MM format (default: current month)."`
}

func (c *HistoryCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	h, err := ctx.findHabit(c.Name)
	if err != nil {
		return err
	}

	month := c.Month
	if month == "" {
		month = ctx.Store.Now().Format(constants.MonthFormat)
	}
	start, _, err := utils.MonthBounds(month, ctx.Store.Location)
	if err != nil {
		return err
	}

	days := progress.RelapseDays(h, start)
	ctx.printf("%s %s: %s\n\n", h.Icon, h.Name, start.Format("January 2006"))
	ctx.println(renderMonth(start, days))

	if len(days) == 0 {
		ctx.println("No relapses this month.")
		return nil
	}

	keys := make([]int, 0, len(days))
	for d := range days {
		keys = append(keys, d)
	}
	sort.Ints(keys)
	for _, d := range keys {
		for _, ev := range days[d] {
			text := ev.Text
			if text == "" {
				text = constants.DefaultNoteText
			}
			ctx.printf("  %s  %s\n", ev.Date.In(ctx.Store.Location).Format("Jan 02 15:04"), text)
		}
	}
	return nil
}

// renderMonth draws a Sunday-first calendar. Days with a relapse are marked
// with an asterisk.
func renderMonth(start time.Time, days map[int][]models.RelapseEvent) string {
	var b strings.Builder
	b.WriteString(" Su  Mo  Tu  We  Th  Fr  Sa\n")
	b.WriteString(strings.Repeat("    ", int(start.Weekday())))

	n := utils.DaysInMonth(start)
	for d := 1; d <= n; d++ {
		mark := " "
		if len(days[d]) > 0 {
			mark = "*"
		}
		fmt.Fprintf(&b, "%3d%s", d, mark)
		if (int(start.Weekday())+d)%7 == 0 && d != n {
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}
