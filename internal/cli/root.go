package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/quitlog/internal/backup"
	"github.com/julianstephens/quitlog/internal/config"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/storage"
)

type Context struct {
	Store   *storage.Store
	Config  config.Config
	Backups *backup.Manager
	Out     io.Writer

	// Confirm asks a yes/no question. Tests replace it.
	Confirm func(title, description string) (bool, error)
}

func NewContext(store *storage.Store, cfg config.Config) *Context {
	return &Context{
		Store:   store,
		Config:  cfg,
		Backups: backup.NewManager(store.Backend().GetConfigPath(), cfg.BackupsMax),
		Out:     os.Stdout,
		Confirm: confirmPrompt,
	}
}

// Load opens the backend and reads the collection. Commands call it first.
func (c *Context) Load() error {
	return c.Store.Open()
}

// PerformAutomaticBackup creates a backup and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if _, err := c.Backups.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// findHabit resolves a name, id or 1-based list position.
func (c *Context) findHabit(ref string) (models.Habit, error) {
	h, err := c.Store.FindByName(ref)
	if err == nil {
		return h, nil
	}
	if n, convErr := strconv.Atoi(strings.TrimSpace(ref)); convErr == nil {
		habits, listErr := c.Store.GetAll()
		if listErr == nil && n >= 1 && n <= len(habits) {
			return habits[n-1], nil
		}
	}
	return models.Habit{}, err
}

func confirmPrompt(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}
