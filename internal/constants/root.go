package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName           = "quitlog"
	DefaultConfigPath = "~/.config/quitlog/quitlog.db"
	ConfigFileName    = "config.yaml"
	Version           = "v0.1.0"

	// StorageKey is the key the serialized habit collection is kept under
	StorageKey = "addictions"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// MonthFormat is used by the relapse history calendar (YYYY-MM)
	MonthFormat = "2006-01"

	// Sanitization fallbacks
	DefaultHabitName = "Unknown Addiction"
	DefaultHabitIcon = "🚫"
	DefaultNoteText  = "No note provided"

	// Export constants
	ExportBulkScope   = "addiction_tracker"
	ExportInvalidDate = "Invalid Date"
	ExportInvalidTime = "Invalid Time"
	ExportNotApplies  = "N/A"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "quitlog-"

	// Live refresh interval for elapsed-time displays
	DefaultTickInterval = time.Second
)

// Session States
const (
	StateList SessionState = iota
	StateAddHabit
	StateEditHabit
	StateRelapse
	StateConfirmDelete
)
