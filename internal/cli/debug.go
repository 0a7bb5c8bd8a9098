package cli

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/quitlog/internal/config"
	"github.com/julianstephens/quitlog/internal/models"
)

type DebugCmd struct {
	Path DebugPathCmd `cmd:"" help:"Show store, config and backup paths."`
	Dump DebugDumpCmd `cmd:"" help:"Dump sanitized habit data as JSON."`
}

type DebugPathCmd struct{}

func (cmd *DebugPathCmd) Run(ctx *Context) error {
	storePath := ctx.Store.Backend().GetConfigPath()
	output := map[string]string{
		"store":   storePath,
		"config":  config.PathFor(storePath),
		"backups": ctx.Backups.BackupDir(),
	}

	jsonBytes, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	ctx.println(string(jsonBytes))
	return nil
}

type DebugDumpCmd struct {
	Name string `arg:"" optional:"" help:"Only dump this habit (name, id or list position)."`
}

func (cmd *DebugDumpCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}

	var out any
	if cmd.Name != "" {
		h, err := ctx.findHabit(cmd.Name)
		if err != nil {
			return err
		}
		out = h
	} else {
		habits, err := ctx.Store.GetAll()
		if err != nil {
			return err
		}
		if habits == nil {
			habits = []models.Habit{}
		}
		out = habits
	}

	jsonBytes, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal habits: %w", err)
	}
	ctx.println(string(jsonBytes))
	return nil
}
