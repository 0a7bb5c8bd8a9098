package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/quitlog/internal/logger"
)

var (
	// ErrNotLoaded is returned when the store is used before Load
	ErrNotLoaded = stderrors.New("storage not loaded")
	// ErrNotFound is returned when no habit matches an id or name
	ErrNotFound = stderrors.New("habit not found")
	// ErrInvalidInput is returned when user input is rejected at the boundary
	ErrInvalidInput = stderrors.New("invalid input")
	// ErrExportFailed is returned when an export payload cannot be produced
	ErrExportFailed = stderrors.New("export failed")
	// ErrNoHabits is returned when an export is requested with nothing to export
	ErrNoHabits = stderrors.New("no habits to export, add one first")
)

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
