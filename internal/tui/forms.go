package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/validation"
)

func notBlank(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

// newHabitForm binds every field of in. Values are checked as a whole by the
// store on submit; the per-field checks only catch empty required fields.
func newHabitForm(in *validation.HabitInput, title string) *huh.Form {
	costTypes := make([]huh.Option[string], 0, len(models.CostTypes))
	for _, c := range models.CostTypes {
		costTypes = append(costTypes, huh.NewOption(string(c), string(c)))
	}
	units := []huh.Option[string]{huh.NewOption("default", "")}
	for _, u := range models.GoalUnits {
		units = append(units, huh.NewOption(string(u), string(u)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Name").
				Value(&in.Name).
				Validate(notBlank("name")),
			huh.NewInput().
				Title("Icon").
				Value(&in.Icon).
				Validate(notBlank("icon")),
			huh.NewInput().
				Title("Cost per day").
				Value(&in.Cost).
				Validate(notBlank("cost")),
			huh.NewSelect[string]().
				Title("Cost type").
				Options(costTypes...).
				Value(&in.CostType),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Goal type").
				Options(
					huh.NewOption("time", string(models.GoalTime)),
					huh.NewOption("money", string(models.GoalMoney)),
				).
				Value(&in.GoalType),
			huh.NewInput().
				Title("Goal value").
				Value(&in.GoalValue).
				Validate(notBlank("goal value")),
			huh.NewSelect[string]().
				Title("Goal unit").
				Options(units...).
				Value(&in.GoalUnit),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Last engaged date (YYYY-MM-DD)").
				Description("Leave empty for today").
				Value(&in.Date),
			huh.NewInput().
				Title("Last engaged time (HH:MM)").
				Description("Leave empty for now").
				Value(&in.Time),
		),
	).WithTheme(huh.ThemeDracula())
}

func newRelapseForm(in *validation.RelapseInput, name string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Relapse: "+name).
				Description("Date (YYYY-MM-DD), empty for today").
				Value(&in.Date),
			huh.NewInput().
				Title("Time (HH:MM)").
				Description("Leave empty for now").
				Value(&in.Time),
			huh.NewText().
				Title("Note").
				CharLimit(500).
				Value(&in.Note),
		),
	).WithTheme(huh.ThemeDracula())
}
