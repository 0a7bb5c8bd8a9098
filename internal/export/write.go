package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/julianstephens/quitlog/internal/errors"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/utils"
)

// Render returns the file name and payload for habits. scope is empty for
// the whole collection, or the name of the single habit being exported.
func Render(habits []models.Habit, scope string, format Format, now time.Time) (string, string, error) {
	if len(habits) == 0 {
		return "", "", apperrors.ErrNoHabits
	}
	return Filename(scope, format, now), ToDelimited(Flatten(habits, now), format), nil
}

// Write stores payload as dir/filename and returns the full path. The file
// either appears complete or not at all.
func Write(dir, filename, payload string) (string, error) {
	if filename == "" || filepath.Base(filename) != filename {
		return "", fmt.Errorf("%w: invalid filename %q", apperrors.ErrExportFailed, filename)
	}

	dir, err := utils.ExpandHome(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrExportFailed, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create export directory: %v", apperrors.ErrExportFailed, err)
	}

	path := filepath.Join(dir, filename)
	if err := utils.WriteFileAtomic(path, []byte(payload), 0644); err != nil {
		logger.Error("Export failed", "path", path, "error", err)
		return "", fmt.Errorf("%w: %v", apperrors.ErrExportFailed, err)
	}

	logger.Info("Exported habits", "path", path, "bytes", len(payload))
	return path, nil
}
