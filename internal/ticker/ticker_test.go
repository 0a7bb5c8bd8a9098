package ticker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/julianstephens/quitlog/internal/models"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	habits := []models.Habit{{
		ID:          "a",
		Cost:        5,
		CostType:    models.CostMoney,
		LastEngaged: now.Add(-3 * 24 * time.Hour),
		Goal:        &models.Goal{Type: models.GoalMoney, Value: 20},
	}}

	snap := Evaluate(habits, now)
	require.Len(t, snap.Entries, 1)
	e := snap.Entries[0]
	assert.Equal(t, 3, e.Days)
	assert.Equal(t, 72, e.Elapsed.Hours)
	assert.Equal(t, 75.0, e.Progress.Percentage)
	assert.Equal(t, 15.0, e.Saved)
	assert.Equal(t, 15.0, snap.Summary.MoneySaved)
	assert.Equal(t, 3, snap.Summary.LongestStreak)
}

func TestRun_PublishesUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	var snaps []Snapshot

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	start := time.Now()
	source := func() ([]models.Habit, error) {
		return []models.Habit{{ID: "a", LastEngaged: start.Add(-time.Hour)}}, nil
	}
	publish := func(s Snapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		n := len(snaps)
		mu.Unlock()
		if n == 3 {
			cancel()
		}
	}

	go func() { done <- Run(ctx, 10*time.Millisecond, time.Now, source, publish) }()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("Run did not stop after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(snaps), 3)
	for i := 1; i < len(snaps); i++ {
		assert.False(t, snaps[i].At.Before(snaps[i-1].At), "snapshots must not go back in time")
		assert.GreaterOrEqual(t, snaps[i].Entries[0].Elapsed.Hours, 1)
	}
}

func TestRun_SkipsFailingSource(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	calls := 0
	published := 0
	source := func() ([]models.Habit, error) {
		calls++
		return nil, errors.New("not loaded")
	}

	err := Run(ctx, 10*time.Millisecond, time.Now, source, func(Snapshot) { published++ })
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Greater(t, calls, 1)
	assert.Zero(t, published)
}
