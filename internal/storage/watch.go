package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/quitlog/internal/logger"
)

// Rapid saves (temp file, rename, chmod) collapse into one signal.
const watchDebounce = 250 * time.Millisecond

// Watch reports when the backing file is rewritten, by this or another
// process. The directory is watched rather than the file because atomic
// saves replace the file. The returned channel is closed when ctx ends.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	path := s.backend.GetConfigPath()
	dir, base := filepath.Dir(path), filepath.Base(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer w.Close()

		tick := time.NewTicker(watchDebounce / 2)
		defer tick.Stop()

		var pending time.Time
		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				// SQLite also touches its -wal and -journal siblings.
				if !strings.HasPrefix(filepath.Base(ev.Name), base) {
					continue
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				logger.Debug("Storage file changed", "op", ev.Op.String(), "path", ev.Name)
				pending = time.Now()

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("Storage watcher error", "error", err)

			case <-tick.C:
				if pending.IsZero() || time.Since(pending) < watchDebounce {
					continue
				}
				pending = time.Time{}
				select {
				case changes <- struct{}{}:
				default:
				}
			}
		}
	}()

	return changes, nil
}
