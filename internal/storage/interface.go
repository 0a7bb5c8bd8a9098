package storage

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrCorrupt is returned by Read when the backing document cannot be
// decoded at all.
var ErrCorrupt = errors.New("storage document is corrupt")

// ErrNotInitialized is returned by Open when nothing exists at the path yet.
var ErrNotInitialized = errors.New("storage not initialized, run 'quitlog init' first")

// Backend is a key/value persistence layer. Values are opaque serialized
// documents; the habit collection lives under a single key.
type Backend interface {
	// Lifecycle
	Init() error
	Open() error
	Close() error

	// Documents
	Read(key string) ([]byte, bool, error)
	Write(key string, value []byte) error
	Remove(key string) error

	// Utils
	GetConfigPath() string
}

// NewBackend picks the JSON backend for *.json paths and SQLite otherwise.
func NewBackend(path string) Backend {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONBackend(path)
	}
	return NewSQLiteBackend(path)
}
