package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/quitlog/internal/migration"
	"github.com/julianstephens/quitlog/migrations"
)

// SQLiteBackend stores documents in the kv table of a SQLite database.
type SQLiteBackend struct {
	path string
	db   *sql.DB
}

func NewSQLiteBackend(path string) *SQLiteBackend {
	return &SQLiteBackend{path: path}
}

func (b *SQLiteBackend) Init() error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := b.open(); err != nil {
		return err
	}

	runner, err := b.runner()
	if err != nil {
		return err
	}
	if _, err := runner.Apply(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Open() error {
	if b.db != nil {
		return nil
	}
	if _, err := os.Stat(b.path); os.IsNotExist(err) {
		return ErrNotInitialized
	}
	if err := b.open(); err != nil {
		return err
	}

	runner, err := b.runner()
	if err != nil {
		return err
	}
	if err := runner.Validate(); err != nil {
		return err
	}
	// Databases created by an older build pick up new tables here.
	if _, err := runner.Apply(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) open() error {
	if b.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", b.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers without busy retries.
	db.SetMaxOpenConns(1)
	b.db = db
	return nil
}

func (b *SQLiteBackend) runner() (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(b.db, sub), nil
}

// SchemaVersions reports the applied and the latest known schema version.
func (b *SQLiteBackend) SchemaVersions() (current, latest int, err error) {
	if b.db == nil {
		return 0, 0, ErrNotInitialized
	}
	runner, err := b.runner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.CurrentVersion(); err != nil {
		return 0, 0, fmt.Errorf("failed to get current schema version: %w", err)
	}
	if latest, err = runner.LatestVersion(); err != nil {
		return 0, 0, fmt.Errorf("failed to get latest schema version: %w", err)
	}
	return current, latest, nil
}

func (b *SQLiteBackend) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

func (b *SQLiteBackend) Read(key string) ([]byte, bool, error) {
	if b.db == nil {
		return nil, false, fmt.Errorf("storage not open")
	}
	var value string
	err := b.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return []byte(value), true, nil
}

func (b *SQLiteBackend) Write(key string, value []byte) error {
	if b.db == nil {
		return fmt.Errorf("storage not open")
	}
	_, err := b.db.Exec(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to write %q: %w", key, err)
	}
	return nil
}

func (b *SQLiteBackend) Remove(key string) error {
	if b.db == nil {
		return fmt.Errorf("storage not open")
	}
	if _, err := b.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to remove %q: %w", key, err)
	}
	return nil
}

func (b *SQLiteBackend) GetConfigPath() string {
	return b.path
}

// DB exposes the handle for backups.
func (b *SQLiteBackend) DB() *sql.DB {
	return b.db
}
