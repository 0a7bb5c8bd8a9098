package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/quitlog/internal/constants"
	apperrors "github.com/julianstephens/quitlog/internal/errors"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/validation"
)

// Store is the single in-memory copy of the habit collection. Every change
// goes through Mutate, which persists the whole collection before the new
// state becomes visible.
type Store struct {
	backend Backend

	mu     sync.RWMutex
	habits []models.Habit
	loaded bool

	// Clock and NewID are replaceable for tests.
	Clock    func() time.Time
	NewID    func() string
	Location *time.Location
}

func NewStore(backend Backend) *Store {
	return &Store{
		backend:  backend,
		Clock:    time.Now,
		NewID:    uuid.NewString,
		Location: time.Local,
	}
}

func (s *Store) Backend() Backend { return s.backend }

func (s *Store) Now() time.Time { return s.Clock().In(s.Location) }

// Open opens the backend and loads the collection.
func (s *Store) Open() error {
	if err := s.backend.Open(); err != nil {
		return err
	}
	return s.Load()
}

// Load reads the stored collection. A missing value is an empty collection.
// A value that cannot be decoded as an array is removed with a warning.
func (s *Store) Load() error {
	data, ok, err := s.backend.Read(constants.StorageKey)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return fmt.Errorf("failed to load habits: %w", err)
	}

	var habits []models.Habit
	switch {
	case err != nil:
		s.discard(err)
	case !ok:
	default:
		var raw []any
		dec := json.NewDecoder(strings.NewReader(string(data)))
		dec.UseNumber()
		if derr := dec.Decode(&raw); derr != nil {
			s.discard(derr)
		} else {
			habits = validation.SanitizeAll(raw, s.Now(), s.NewID)
		}
	}

	s.mu.Lock()
	s.habits = habits
	s.loaded = true
	s.mu.Unlock()

	logger.Debug("Loaded habits", "count", len(habits), "path", s.backend.GetConfigPath())
	return nil
}

func (s *Store) discard(cause error) {
	logger.Warn("Discarding unreadable habit data", "error", cause)
	if err := s.backend.Remove(constants.StorageKey); err != nil {
		logger.Error("Failed to remove unreadable habit data", "error", err)
	}
}

// GetAll returns a deep copy of the collection in display order.
func (s *Store) GetAll() ([]models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, apperrors.ErrNotLoaded
	}
	return cloneAll(s.habits), nil
}

func (s *Store) Get(id string) (models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return models.Habit{}, apperrors.ErrNotLoaded
	}
	for _, h := range s.habits {
		if h.ID == id {
			return h.Clone(), nil
		}
	}
	return models.Habit{}, fmt.Errorf("%w: %s", apperrors.ErrNotFound, id)
}

// FindByName matches case-insensitively, falling back to an id match.
func (s *Store) FindByName(name string) (models.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return models.Habit{}, apperrors.ErrNotLoaded
	}
	want := strings.TrimSpace(name)
	for _, h := range s.habits {
		if strings.EqualFold(h.Name, want) {
			return h.Clone(), nil
		}
	}
	for _, h := range s.habits {
		if h.ID == want {
			return h.Clone(), nil
		}
	}
	return models.Habit{}, fmt.Errorf("%w: %q", apperrors.ErrNotFound, name)
}

// Mutate derives a new collection from the current one and persists it.
// Every record fn returns is normalized first. If fn or persistence fails the
// in-memory collection is unchanged.
func (s *Store) Mutate(fn func(habits []models.Habit) ([]models.Habit, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return apperrors.ErrNotLoaded
	}

	next, err := fn(cloneAll(s.habits))
	if err != nil {
		return err
	}
	now := s.Now()
	for i := range next {
		next[i] = validation.Normalize(next[i], now)
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.habits = next
	return nil
}

func (s *Store) write(habits []models.Habit) error {
	if habits == nil {
		habits = []models.Habit{}
	}
	data, err := json.Marshal(habits)
	if err != nil {
		return fmt.Errorf("failed to serialize habits: %w", err)
	}
	if err := s.backend.Write(constants.StorageKey, data); err != nil {
		logger.Error("Failed to persist habits", "error", err)
		return fmt.Errorf("failed to persist habits: %w", err)
	}
	return nil
}

// Add validates in and appends a new habit.
func (s *Store) Add(in validation.HabitInput) (models.Habit, error) {
	now := s.Now()
	h, err := validation.ParseHabit(in, now, s.Location)
	if err != nil {
		return models.Habit{}, err
	}
	h.ID = s.NewID()
	h.CreatedAt = now
	h.Notes = []models.RelapseEvent{}

	err = s.Mutate(func(habits []models.Habit) ([]models.Habit, error) {
		return append(habits, h), nil
	})
	if err != nil {
		return models.Habit{}, err
	}
	logger.Info("Added habit", "id", h.ID, "name", h.Name)
	return h.Clone(), nil
}

// Update replaces the editable fields of habit id. The id, creation time and
// relapse history are kept. LastEngaged only moves when the entered date or
// time differs from the current value at minute precision.
func (s *Store) Update(id string, in validation.HabitInput) (models.Habit, error) {
	var out models.Habit
	err := s.Mutate(func(habits []models.Habit) ([]models.Habit, error) {
		i := indexOf(habits, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, id)
		}
		cur := habits[i]

		now := s.Now()
		keepInstant := sameMinute(in, cur, s.Location)
		if keepInstant && cur.LastEngaged.After(now) {
			// tolerate clock skew already in the record
			now = cur.LastEngaged
		}
		edited, err := validation.ParseHabit(in, now, s.Location)
		if err != nil {
			return nil, err
		}

		cur.Name = edited.Name
		cur.Icon = edited.Icon
		cur.Cost = edited.Cost
		cur.CostType = edited.CostType
		if !keepInstant {
			cur.LastEngaged = edited.LastEngaged
		}
		cur.Goal = edited.Goal
		habits[i] = cur
		out = cur.Clone()
		return habits, nil
	})
	if err != nil {
		return models.Habit{}, err
	}
	logger.Info("Updated habit", "id", id)
	return out, nil
}

// sameMinute reports whether in's date and time render h.LastEngaged
// unchanged.
func sameMinute(in validation.HabitInput, h models.Habit, loc *time.Location) bool {
	cur := validation.FromHabit(h, loc)
	return strings.TrimSpace(in.Date) == cur.Date && strings.TrimSpace(in.Time) == cur.Time
}

func (s *Store) Remove(id string) error {
	err := s.Mutate(func(habits []models.Habit) ([]models.Habit, error) {
		i := indexOf(habits, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, id)
		}
		return append(habits[:i], habits[i+1:]...), nil
	})
	if err == nil {
		logger.Info("Removed habit", "id", id)
	}
	return err
}

// RecordRelapse sets the habit's last engagement to at and appends an event.
func (s *Store) RecordRelapse(id string, at time.Time, note string) (models.Habit, error) {
	if at.IsZero() {
		return models.Habit{}, fmt.Errorf("%w: relapse time is required", apperrors.ErrInvalidInput)
	}

	var out models.Habit
	err := s.Mutate(func(habits []models.Habit) ([]models.Habit, error) {
		i := indexOf(habits, id)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, id)
		}
		habits[i].LastEngaged = at
		habits[i].Notes = append(habits[i].Notes, models.RelapseEvent{Date: at, Text: strings.TrimSpace(note)})
		out = habits[i].Clone()
		return habits, nil
	})
	if err != nil {
		return models.Habit{}, err
	}
	logger.Info("Recorded relapse", "id", id, "at", at)
	return out, nil
}

// Reorder moves the habit at index from to index to, shifting the rest.
func (s *Store) Reorder(from, to int) error {
	return s.Mutate(func(habits []models.Habit) ([]models.Habit, error) {
		n := len(habits)
		if from < 0 || from >= n || to < 0 || to >= n {
			return nil, fmt.Errorf("%w: position out of range (have %d habits)", apperrors.ErrInvalidInput, n)
		}
		if from == to {
			return habits, nil
		}
		moved := habits[from]
		habits = append(habits[:from], habits[from+1:]...)
		habits = append(habits[:to], append([]models.Habit{moved}, habits[to:]...)...)
		return habits, nil
	})
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func indexOf(habits []models.Habit, id string) int {
	for i, h := range habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(habits []models.Habit) []models.Habit {
	out := make([]models.Habit, len(habits))
	for i, h := range habits {
		out[i] = h.Clone()
	}
	return out
}
