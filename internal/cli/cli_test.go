package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/quitlog/internal/config"
	apperrors "github.com/julianstephens/quitlog/internal/errors"
	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/storage"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setupTestContext(t *testing.T, name string) (*Context, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)

	store := storage.NewStore(storage.NewBackend(path))
	store.Clock = func() time.Time { return fixedNow }
	store.Location = time.UTC
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	cfg.ExportDir = filepath.Join(t.TempDir(), "exports")

	ctx := NewContext(store, cfg)
	out := &bytes.Buffer{}
	ctx.Out = out
	ctx.Confirm = func(string, string) (bool, error) {
		t.Fatal("unexpected confirmation prompt")
		return false, nil
	}

	require.NoError(t, (&InitCmd{}).Run(ctx))
	out.Reset()
	return ctx, out
}

func addSmoking(t *testing.T, ctx *Context) {
	t.Helper()
	cmd := &AddCmd{
		Name:      "Smoking",
		Icon:      "🚬",
		Cost:      "5",
		CostType:  "money",
		GoalType:  "money",
		GoalValue: "20",
		Date:      "2024-05-29",
		Time:      "12:00",
	}
	require.NoError(t, cmd.Run(ctx))
}

func TestAddListStats(t *testing.T) {
	for _, name := range []string{"quitlog.db", "quitlog.json"} {
		t.Run(name, func(t *testing.T) {
			ctx, out := setupTestContext(t, name)
			addSmoking(t, ctx)
			assert.Contains(t, out.String(), "Added habit: 🚬 Smoking (goal: $20.00)")

			out.Reset()
			require.NoError(t, (&ListCmd{}).Run(ctx))
			assert.Contains(t, out.String(), "1. 🚬 Smoking")
			assert.Contains(t, out.String(), "clean for 3 days (72h 0m 0s)")
			assert.Contains(t, out.String(), "75%")
			assert.Contains(t, out.String(), "saved $15.00")

			out.Reset()
			require.NoError(t, (&StatsCmd{}).Run(ctx))
			assert.Contains(t, out.String(), "Money saved:     $15.00")
			assert.Contains(t, out.String(), "Longest streak:  3 days")
		})
	}
}

func TestListEmpty(t *testing.T) {
	ctx, out := setupTestContext(t, "quitlog.db")
	require.NoError(t, (&ListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No habits tracked yet")
}

func TestAddRejectsInvalidInput(t *testing.T) {
	ctx, _ := setupTestContext(t, "quitlog.db")

	tests := []struct {
		name string
		cmd  AddCmd
	}{
		{"negative cost", AddCmd{Name: "A", Icon: "x", Cost: "-1", CostType: "money", GoalType: "time", GoalValue: "1"}},
		{"zero goal", AddCmd{Name: "A", Icon: "x", Cost: "1", CostType: "money", GoalType: "time", GoalValue: "0"}},
		{"future date", AddCmd{Name: "A", Icon: "x", Cost: "1", CostType: "money", GoalType: "time", GoalValue: "1", Date: "2030-01-01"}},
		{"bad time", AddCmd{Name: "A", Icon: "x", Cost: "1", CostType: "money", GoalType: "time", GoalValue: "1", Time: "25:99"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(ctx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput), "got %v", err)
		})
	}

	habits, err := ctx.Store.GetAll()
	require.NoError(t, err)
	assert.Empty(t, habits)
}

func TestRelapse(t *testing.T) {
	ctx, out := setupTestContext(t, "quitlog.db")
	addSmoking(t, ctx)

	out.Reset()
	require.NoError(t, (&RelapseCmd{Name: "smoking", Date: "2024-06-01", Time: "10:00", Note: "  stressful day "}).Run(ctx))
	assert.Contains(t, out.String(), "Recorded relapse for Smoking at 2024-06-01 10:00 (1 total)")

	h, err := ctx.Store.FindByName("Smoking")
	require.NoError(t, err)
	require.Len(t, h.Notes, 1)
	assert.Equal(t, "stressful day", h.Notes[0].Text)
	assert.True(t, h.LastEngaged.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)))

	err = (&RelapseCmd{Name: "Smoking", Date: "2024-07-01"}).Run(ctx)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	err = (&RelapseCmd{Name: "Drinking"}).Run(ctx)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestEdit(t *testing.T) {
	ctx, _ := setupTestContext(t, "quitlog.db")
	addSmoking(t, ctx)
	require.NoError(t, (&RelapseCmd{Name: "Smoking", Note: "one"}).Run(ctx))

	require.NoError(t, (&EditCmd{Name: "1", NewName: "Cigarettes", GoalType: "time"}).Run(ctx))

	h, err := ctx.Store.FindByName("Cigarettes")
	require.NoError(t, err)
	require.NotNil(t, h.Goal)
	assert.Equal(t, models.GoalTime, h.Goal.Type)
	assert.Equal(t, models.UnitDays, h.Goal.Unit)
	assert.Equal(t, 20.0, h.Goal.Value)
	assert.Len(t, h.Notes, 1, "edit must keep relapse history")
}

func TestDelete(t *testing.T) {
	ctx, out := setupTestContext(t, "quitlog.db")
	addSmoking(t, ctx)

	asked := 0
	ctx.Confirm = func(title, _ string) (bool, error) {
		asked++
		assert.Equal(t, "Delete Smoking?", title)
		return false, nil
	}
	require.NoError(t, (&DeleteCmd{Name: "Smoking"}).Run(ctx))
	assert.Equal(t, 1, asked)
	assert.Contains(t, out.String(), "Delete cancelled.")
	_, err := ctx.Store.FindByName("Smoking")
	require.NoError(t, err)

	require.NoError(t, (&DeleteCmd{Name: "Smoking", Yes: true}).Run(ctx))
	assert.Equal(t, 1, asked)
	_, err = ctx.Store.FindByName("Smoking")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestMove(t *testing.T) {
	ctx, _ := setupTestContext(t, "quitlog.json")
	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, (&AddCmd{Name: name, Icon: "x", Cost: "1", CostType: "health", GoalType: "time", GoalValue: "1"}).Run(ctx))
	}

	require.NoError(t, (&MoveCmd{Name: "C", Position: 1}).Run(ctx))
	habits, err := ctx.Store.GetAll()
	require.NoError(t, err)
	var names []string
	for _, h := range habits {
		names = append(names, h.Name)
	}
	assert.Equal(t, []string{"C", "A", "B"}, names)

	err = (&MoveCmd{Name: "A", Position: 9}).Run(ctx)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestHistory(t *testing.T) {
	ctx, out := setupTestContext(t, "quitlog.db")
	addSmoking(t, ctx)
	require.NoError(t, (&RelapseCmd{Name: "Smoking", Date: "2024-06-01", Time: "09:30", Note: "party"}).Run(ctx))

	out.Reset()
	require.NoError(t, (&HistoryCmd{Name: "Smoking"}).Run(ctx))
	s := out.String()
	assert.Contains(t, s, "June 2024")
	assert.Contains(t, s, "  1*")
	assert.Contains(t, s, "Jun 01 09:30  party")

	out.Reset()
	require.NoError(t, (&HistoryCmd{Name: "Smoking", Month: "2024-05"}).Run(ctx))
	assert.Contains(t, out.String(), "No relapses this month.")

	assert.Error(t, (&HistoryCmd{Name: "Smoking", Month: "May"}).Run(ctx))
}

func TestRenderMonth(t *testing.T) {
	// June 2024 starts on a Saturday and has 30 days.
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	got := renderMonth(start, map[int][]models.RelapseEvent{30: {{Date: start}}})
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, strings.Repeat("    ", 6)+"  1 ", lines[1])
	assert.True(t, strings.HasSuffix(lines[6], " 30*"))
}

func TestExport(t *testing.T) {
	ctx, out := setupTestContext(t, "quitlog.db")

	err := (&ExportCmd{Stdout: true}).Run(ctx)
	assert.True(t, errors.Is(err, apperrors.ErrNoHabits))

	addSmoking(t, ctx)
	out.Reset()
	require.NoError(t, (&ExportCmd{Stdout: true}).Run(ctx))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Addiction Name,Icon,"))
	assert.True(t, strings.HasPrefix(lines[1], `"Smoking","🚬",5,`))

	out.Reset()
	require.NoError(t, (&ExportCmd{Format: "tsv", Habit: "Smoking"}).Run(ctx))
	path := filepath.Join(ctx.Config.ExportDir, "smoking_export_2024-06-01.tsv")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Addiction Name\tIcon"))
	assert.Contains(t, out.String(), path)

	assert.Error(t, (&ExportCmd{Format: "xlsx"}).Run(ctx))
}

func TestWatch(t *testing.T) {
	ctx, out := setupTestContext(t, "quitlog.db")
	addSmoking(t, ctx)
	out.Reset()

	done := make(chan error, 1)
	go func() { done <- (&WatchCmd{Interval: 10 * time.Millisecond, Count: 2}).Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after Count updates")
	}
	assert.Equal(t, 2, strings.Count(out.String(), "Smoking"))
	assert.Contains(t, out.String(), "saved $15.00")
}

func TestBackupCommands(t *testing.T) {
	ctx, out := setupTestContext(t, "quitlog.db")
	addSmoking(t, ctx)

	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No backups found.")

	out.Reset()
	require.NoError(t, (&BackupCreateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Backup created")

	backups, err := ctx.Backups.List()
	require.NoError(t, err)
	require.Len(t, backups, 1)

	require.NoError(t, (&DeleteCmd{Name: "Smoking", Yes: true}).Run(ctx))

	require.NoError(t, (&BackupRestoreCmd{BackupFile: filepath.Base(backups[0].Path), Yes: true}).Run(ctx))
	require.NoError(t, ctx.Load())
	_, err = ctx.Store.FindByName("Smoking")
	assert.NoError(t, err, "restore should bring the habit back")

	assert.Error(t, (&BackupRestoreCmd{BackupFile: "missing.db", Yes: true}).Run(ctx))
}

func TestDoctor(t *testing.T) {
	ctx, out := setupTestContext(t, "quitlog.db")
	addSmoking(t, ctx)
	_, err := ctx.Backups.Create()
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, (&DoctorCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Schema version: OK")
	assert.Contains(t, out.String(), "All diagnostics passed!")
}

func TestDebugDump(t *testing.T) {
	ctx, out := setupTestContext(t, "quitlog.json")
	require.NoError(t, (&DebugDumpCmd{}).Run(ctx))
	assert.Equal(t, "[]\n", out.String())

	addSmoking(t, ctx)
	out.Reset()
	require.NoError(t, (&DebugDumpCmd{Name: "Smoking"}).Run(ctx))
	assert.Contains(t, out.String(), `"costType": "money"`)

	out.Reset()
	require.NoError(t, (&DebugPathCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "config.yaml")
}

func TestCommandsRequireInit(t *testing.T) {
	store := storage.NewStore(storage.NewBackend(filepath.Join(t.TempDir(), "quitlog.db")))
	ctx := NewContext(store, config.Default())
	ctx.Out = &bytes.Buffer{}

	err := (&ListCmd{}).Run(ctx)
	assert.True(t, errors.Is(err, storage.ErrNotInitialized))
}
