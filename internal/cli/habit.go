package cli

import (
	"fmt"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/progress"
	"github.com/julianstephens/quitlog/internal/validation"
)

type AddCmd struct {
	Name      string `arg:"" help:"Habit name."`
	Icon      string `help:"Icon shown next to the name." default:"🚫"`
	Cost      string `help:"Cost per day (dollars, minutes or impact points)." required:""`
	CostType  string `help:"Cost type: money, time or health." default:"money" enum:"money,time,health"`
	GoalType  string `help:"Goal type: time or money." default:"time" enum:"time,money"`
	GoalValue string `help:"Goal target value." default:"30"`
	GoalUnit  string `help:"Goal unit: hours, days, weeks, months or dollars (default: days for time goals, dollars for money goals)."`
	Date      string `help:"Last engaged date in YYYY-MM-DD format (default: today)."`
	Time      string `help:"Last engaged time in HH:MM format (default: now)."`
}

func (c *AddCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	h, err := ctx.Store.Add(validation.HabitInput{
		Name:      c.Name,
		Icon:      c.Icon,
		Cost:      c.Cost,
		CostType:  c.CostType,
		GoalType:  c.GoalType,
		GoalValue: c.GoalValue,
		GoalUnit:  c.GoalUnit,
		Date:      c.Date,
		Time:      c.Time,
	})
	if err != nil {
		return err
	}

	ctx.printf("Added habit: %s %s (goal: %s)\n", h.Icon, h.Name, progress.GoalLabel(h.Goal))
	return nil
}

type EditCmd struct {
	Name      string `arg:"" help:"Habit name, id or list position."`
	NewName   string `name:"rename" help:"New name."`
	Icon      string `help:"New icon."`
	Cost      string `help:"New cost per day."`
	CostType  string `help:"New cost type: money, time or health."`
	GoalType  string `help:"New goal type: time or money."`
	GoalValue string `help:"New goal target value."`
	GoalUnit  string `help:"New goal unit."`
	Date      string `help:"New last engaged date (YYYY-MM-DD)."`
	Time      string `help:"New last engaged time (HH:MM)."`
}

func (c *EditCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	h, err := ctx.findHabit(c.Name)
	if err != nil {
		return err
	}

	in := validation.FromHabit(h, ctx.Store.Location)
	override(&in.Name, c.NewName)
	override(&in.Icon, c.Icon)
	override(&in.Cost, c.Cost)
	override(&in.CostType, c.CostType)
	override(&in.GoalValue, c.GoalValue)
	override(&in.Date, c.Date)
	override(&in.Time, c.Time)
	if c.GoalType != "" && c.GoalType != in.GoalType {
		in.GoalType = c.GoalType
		// the old unit rarely fits the new goal type
		in.GoalUnit = ""
	}
	override(&in.GoalUnit, c.GoalUnit)

	updated, err := ctx.Store.Update(h.ID, in)
	if err != nil {
		return err
	}

	ctx.printf("Updated habit: %s %s\n", updated.Icon, updated.Name)
	return nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

type RelapseCmd struct {
	Name string `arg:"" help:"Habit name, id or list position."`
	Date string `help:"Relapse date in YYYY-MM-DD format (default: today)."`
	Time string `help:"Relapse time in HH:MM format (default: now)."`
	Note string `help:"Optional note for this relapse."`
}

func (c *RelapseCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	h, err := ctx.findHabit(c.Name)
	if err != nil {
		return err
	}

	at, note, err := validation.ParseRelapse(validation.RelapseInput{
		Date: c.Date,
		Time: c.Time,
		Note: c.Note,
	}, ctx.Store.Now(), ctx.Store.Location)
	if err != nil {
		return err
	}

	h, err = ctx.Store.RecordRelapse(h.ID, at, note)
	if err != nil {
		return err
	}

	ctx.printf("Recorded relapse for %s at %s (%d total)\n", h.Name, at.Format(constants.DateFormat+" "+constants.TimeFormat), len(h.Notes))
	return nil
}

type DeleteCmd struct {
	Name string `arg:"" help:"Habit name, id or list position."`
	Yes  bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	h, err := ctx.findHabit(c.Name)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.Confirm(
			fmt.Sprintf("Delete %s?", h.Name),
			fmt.Sprintf("This removes the habit and its %d recorded relapses.", len(h.Notes)),
		)
		if err != nil {
			return err
		}
		if !ok {
			ctx.println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Remove(h.ID); err != nil {
		return err
	}
	ctx.printf("Deleted habit: %s\n", h.Name)
	return nil
}

type MoveCmd struct {
	Name     string `arg:"" help:"Habit name, id or list position."`
	Position int    `arg:"" help:"New 1-based position in the list."`
}

func (c *MoveCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	h, err := ctx.findHabit(c.Name)
	if err != nil {
		return err
	}
	habits, err := ctx.Store.GetAll()
	if err != nil {
		return err
	}

	from := -1
	for i := range habits {
		if habits[i].ID == h.ID {
			from = i
			break
		}
	}
	if err := ctx.Store.Reorder(from, c.Position-1); err != nil {
		return err
	}

	ctx.printf("Moved %s to position %d\n", h.Name, c.Position)
	return nil
}
