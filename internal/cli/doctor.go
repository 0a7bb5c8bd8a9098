package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/quitlog/internal/storage"
)

type DoctorCmd struct{}

type check struct {
	name    string
	run     func(*Context) error
	warning bool
}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false
	storeReachable := false

	if err := checkStoreReachable(ctx); err != nil {
		ctx.printf("❌ Store reachable: FAIL\n   Error: %v\n", err)
		hasError = true
	} else {
		ctx.printf("✓ Store reachable: OK\n")
		storeReachable = true
	}

	checks := []check{
		{name: "Schema version", run: checkSchemaVersion},
		{name: "Backups present", run: checkBackupsPresent, warning: true},
	}
	if storeReachable {
		checks = append(checks, check{name: "Data validation", run: checkHabits})
	}
	checks = append(checks, check{name: "Clock/timezone", run: checkClockTimezone})

	for _, c := range checks {
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.printf("✓ %s: OK\n", c.name)
		case c.warning:
			ctx.printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			hasError = true
		}
	}
	if !storeReachable {
		ctx.printf("⊘ Data validation: SKIPPED (store not reachable)\n")
	}

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.println("All diagnostics passed!")
	return nil
}

func checkStoreReachable(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	if b, ok := ctx.Store.Backend().(*storage.SQLiteBackend); ok {
		var result int
		if err := b.DB().QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	b, ok := ctx.Store.Backend().(*storage.SQLiteBackend)
	if !ok {
		// JSON stores have no schema
		return nil
	}
	current, latest, err := b.SchemaVersions()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	backups, err := ctx.Backups.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'quitlog backup create'")
	}
	return nil
}

func checkHabits(ctx *Context) error {
	habits, err := ctx.Store.GetAll()
	if err != nil {
		return err
	}

	now := ctx.Store.Now()
	ids := make(map[string]bool)
	for _, h := range habits {
		if ids[h.ID] {
			return fmt.Errorf("duplicate habit ID found: %s", h.ID)
		}
		ids[h.ID] = true
		if h.LastEngaged.After(now) {
			return fmt.Errorf("habit %q was last engaged in the future (%s)", h.Name, h.LastEngaged.Format(time.RFC3339))
		}
		for _, ev := range h.Notes {
			if ev.Date.After(now) {
				return fmt.Errorf("habit %q has a relapse in the future (%s)", h.Name, ev.Date.Format(time.RFC3339))
			}
		}
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := ctx.Store.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, offset := now.Zone(); offset == 0 && now.Location() == time.UTC {
		ctx.printf("   Note: timezone is UTC\n")
	}
	return nil
}
