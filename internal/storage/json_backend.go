package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/julianstephens/quitlog/internal/utils"
)

// JSONBackend keeps every key in one JSON object on disk. The whole file is
// rewritten on each Write.
type JSONBackend struct {
	path string
	mu   sync.Mutex
}

func NewJSONBackend(path string) *JSONBackend {
	return &JSONBackend{path: path}
}

func (b *JSONBackend) Init() error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(b.path); err == nil {
		return nil
	}
	return b.save(map[string]json.RawMessage{})
}

func (b *JSONBackend) Open() error {
	if _, err := os.Stat(b.path); os.IsNotExist(err) {
		return ErrNotInitialized
	} else if err != nil {
		return fmt.Errorf("failed to access storage: %w", err)
	}
	return nil
}

func (b *JSONBackend) Close() error {
	return nil
}

func (b *JSONBackend) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(b.path)
	if os.IsNotExist(err) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read storage: %w", err)
	}

	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return doc, nil
}

func (b *JSONBackend) save(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}
	if err := utils.WriteFileAtomic(b.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (b *JSONBackend) Read(key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, false, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return buf.Bytes(), true, nil
}

func (b *JSONBackend) Write(key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.load()
	if err != nil {
		return err
	}
	doc[key] = json.RawMessage(value)
	return b.save(doc)
}

// Remove deletes key. A corrupt document is replaced by an empty one.
func (b *JSONBackend) Remove(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.load()
	if err != nil {
		doc = map[string]json.RawMessage{}
	}
	delete(doc, key)
	return b.save(doc)
}

func (b *JSONBackend) GetConfigPath() string {
	return b.path
}
