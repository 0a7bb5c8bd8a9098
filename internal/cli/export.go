package cli

import (
	"github.com/julianstephens/quitlog/internal/export"
	"github.com/julianstephens/quitlog/internal/models"
)

type ExportCmd struct {
	Format string `help:"Output format: csv or tsv (default from config)."`
	Habit  string `help:"Export a single habit by name, id or list position."`
	Out    string `help:"Directory to write the file to (default from config)."`
	Stdout bool   `help:"Print the export instead of writing a file."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	raw := c.Format
	if raw == "" {
		raw = ctx.Config.ExportFormat
	}
	format, err := export.ParseFormat(raw)
	if err != nil {
		return err
	}

	var habits []models.Habit
	scope := ""
	if c.Habit != "" {
		h, err := ctx.findHabit(c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
		scope = h.Name
	} else if habits, err = ctx.Store.GetAll(); err != nil {
		return err
	}

	name, payload, err := export.Render(habits, scope, format, ctx.Store.Now())
	if err != nil {
		return err
	}

	if c.Stdout {
		ctx.println(payload)
		return nil
	}

	dir := c.Out
	if dir == "" {
		dir = ctx.Config.ExportDir
	}
	path, err := export.Write(dir, name, payload)
	if err != nil {
		return err
	}
	ctx.printf("Exported %d habits to %s\n", len(habits), path)
	return nil
}
