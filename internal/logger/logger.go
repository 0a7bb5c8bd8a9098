// Package logger owns the process-wide charmbracelet logger. Every helper is
// a no-op until Init or UseWriter runs, so library code can log freely in
// tests.
package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/quitlog/internal/constants"
)

// Logger is the global logger instance
var Logger *log.Logger

// Config holds logger configuration
type Config struct {
	Debug bool
	// ConfigDir is the directory holding the store; logs go to ConfigDir/logs.
	ConfigDir string
}

// LogFile returns the rotating log file path for cfg.
func (c Config) LogFile() string {
	return filepath.Join(c.ConfigDir, "logs", constants.AppName+".log")
}

// Init writes warnings and above to a rotating file. With Debug set the
// level drops to debug and stderr receives a copy.
func Init(cfg Config) error {
	path := cfg.LogFile()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	rotating := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // MB
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	opts := log.Options{
		ReportTimestamp: true,
		Level:           log.WarnLevel,
		Prefix:          constants.AppName,
	}
	var out io.Writer = rotating
	if cfg.Debug {
		opts.Level = log.DebugLevel
		opts.ReportCaller = true
		out = io.MultiWriter(os.Stderr, rotating)
	}

	Logger = log.NewWithOptions(out, opts)
	return nil
}

// UseWriter points the global logger at w. Tests use it to capture output.
func UseWriter(w io.Writer, level log.Level) {
	Logger = log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: constants.AppName,
	})
}

func Debug(msg string, keyvals ...any) { at(log.DebugLevel, msg, keyvals) }

func Info(msg string, keyvals ...any) { at(log.InfoLevel, msg, keyvals) }

func Warn(msg string, keyvals ...any) { at(log.WarnLevel, msg, keyvals) }

func Error(msg string, keyvals ...any) { at(log.ErrorLevel, msg, keyvals) }

func at(level log.Level, msg string, keyvals []any) {
	if Logger == nil {
		return
	}
	Logger.Helper()
	Logger.Log(level, msg, keyvals...)
}
