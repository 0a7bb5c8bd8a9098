package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/quitlog/internal/config"
	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/storage"
	"github.com/julianstephens/quitlog/internal/ticker"
	"github.com/julianstephens/quitlog/internal/tui/components/habitlist"
	"github.com/julianstephens/quitlog/internal/validation"
)

type tickMsg time.Time

type storeChangedMsg struct{}

type exportDoneMsg struct {
	path string
	err  error
}

type Model struct {
	store    *storage.Store
	cfg      config.Config
	changes  <-chan struct{}
	state    constants.SessionState
	keys     KeyMap
	help     help.Model
	list     habitlist.Model
	snapshot ticker.Snapshot

	form         *huh.Form
	habitForm    *validation.HabitInput
	relapseForm  *validation.RelapseInput
	editingID    string
	deletingID   string
	deletingName string
	formError    string

	status   string
	statusOK bool
	quitting bool
	width    int
	height   int
}

// NewModel builds the root model. changes, when non-nil, signals that the
// store was rewritten by another process.
func NewModel(store *storage.Store, cfg config.Config, changes <-chan struct{}) Model {
	m := Model{
		store:   store,
		cfg:     cfg,
		changes: changes,
		state:   constants.StateList,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		list:    habitlist.New(0, 0),
	}
	m.refresh()
	return m
}

func (m Model) ShortHelp() []key.Binding {
	if m.state != constants.StateList {
		return []key.Binding{}
	}
	lk := m.list.Keys()
	return []key.Binding{lk.Add, lk.Relapse, lk.Edit, lk.Delete, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	navigation := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Quit, m.keys.Help}
	return [][]key.Binding{navigation, m.list.Keys().Bindings()}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), waitForChange(m.changes))
}

func (m Model) tick() tea.Cmd {
	interval := m.cfg.TickInterval
	if interval <= 0 {
		interval = constants.DefaultTickInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

// refresh re-evaluates every habit against the store clock.
func (m *Model) refresh() tea.Cmd {
	habits, err := m.store.GetAll()
	if err != nil {
		m.setStatus(err.Error(), false)
		return nil
	}
	m.snapshot = ticker.Evaluate(habits, m.store.Now())
	return m.list.SetEntries(m.snapshot.Entries)
}

func (m *Model) setStatus(msg string, ok bool) {
	m.status = msg
	m.statusOK = ok
}
