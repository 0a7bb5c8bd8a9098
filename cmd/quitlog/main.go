package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/quitlog/internal/cli"
	"github.com/julianstephens/quitlog/internal/config"
	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/errors"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Store path. Paths ending in .json use a JSON document, anything else SQLite." type:"path" default:"${default_config}" env:"QUITLOG_CONFIG"`
	Verbose bool   `name:"debug" help:"Log at debug level to stderr as well as the log file." env:"QUITLOG_DEBUG"`

	Init    cli.InitCmd    `cmd:"" help:"Initialize quitlog storage."`
	Tui     cli.TuiCmd     `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Add     cli.AddCmd     `cmd:"" help:"Start tracking a habit."`
	Edit    cli.EditCmd    `cmd:"" help:"Edit a tracked habit."`
	Relapse cli.RelapseCmd `cmd:"" help:"Record a relapse."`
	Delete  cli.DeleteCmd  `cmd:"" help:"Stop tracking a habit."`
	Move    cli.MoveCmd    `cmd:"" help:"Move a habit to a new list position."`
	List    cli.ListCmd    `cmd:"" help:"List habits with their progress."`
	Stats   cli.StatsCmd   `cmd:"" help:"Show money saved and the longest streak."`
	History cli.HistoryCmd `cmd:"" help:"Show a month of relapse history for a habit."`
	Export  cli.ExportCmd  `cmd:"" help:"Export relapse history as CSV or TSV."`
	Watch   cli.WatchCmd   `cmd:"" help:"Print live progress until interrupted."`
	Doctor  cli.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Debug   cli.DebugCmd   `cmd:"" help:"Debug commands for troubleshooting."`
	Backup  struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage store backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Track the habits you are quitting, your streaks and what you have saved"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Verbose, ConfigDir: filepath.Dir(CLI.Config)}); err != nil {
		fmt.Fprintln(os.Stderr, errors.Formatf("failed to initialize logger: %v", err))
	}

	cfg, err := config.Load(config.PathFor(CLI.Config))
	if err != nil {
		errors.Fatal(err)
	}

	store := storage.NewStore(storage.NewBackend(CLI.Config))
	appCtx := cli.NewContext(store, cfg)

	err = ctx.Run(appCtx)
	if cerr := store.Close(); cerr != nil {
		logger.Warn("Failed to close store", "error", cerr)
	}
	errors.Fatal(err)
}
