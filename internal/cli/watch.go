package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/progress"
	"github.com/julianstephens/quitlog/internal/ticker"
)

type WatchCmd struct {
	Interval time.Duration `help:"Refresh interval (default from config)."`
	Count    int           `help:"Stop after this many updates (0 runs until interrupted)."`
}

func (c *WatchCmd) Run(ctx *Context) error {
	if err := ctx.Load(); err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.watch(runCtx, ctx)
}

func (c *WatchCmd) watch(parent context.Context, ctx *Context) error {
	runCtx, cancel := context.WithCancel(parent)
	defer cancel()

	changes, err := ctx.Store.Watch(runCtx)
	if err != nil {
		logger.Warn("Not watching store for external changes", "error", err)
	} else {
		go func() {
			for range changes {
				if err := ctx.Store.Load(); err != nil {
					logger.Warn("Failed to reload habits", "error", err)
				}
			}
		}()
	}

	interval := c.Interval
	if interval <= 0 {
		interval = ctx.Config.TickInterval
	}

	updates := 0
	err = ticker.Run(runCtx, interval, ctx.Store.Now, ctx.Store.GetAll, func(s ticker.Snapshot) {
		renderSnapshot(ctx, s)
		updates++
		if c.Count > 0 && updates >= c.Count {
			cancel()
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func renderSnapshot(ctx *Context, s ticker.Snapshot) {
	ctx.printf("%s  saved $%.2f  longest streak %d days\n", s.At.Format("15:04:05"), s.Summary.MoneySaved, s.Summary.LongestStreak)
	for _, e := range s.Entries {
		ctx.printf("  %s %-20s %12s  %s %5.1f%%\n",
			e.Habit.Icon, e.Habit.Name, progress.FormatElapsed(e.Elapsed), textBar(e.Progress.Percentage, 10), e.Progress.Percentage)
	}
}
