package habitlist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	progressbar "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/quitlog/internal/models"
	"github.com/julianstephens/quitlog/internal/progress"
	"github.com/julianstephens/quitlog/internal/ticker"
)

type AddHabitMsg struct{}

type EditHabitMsg struct {
	ID string
}

type RelapseMsg struct {
	ID string
}

type DeleteHabitMsg struct {
	ID string
}

// MoveHabitMsg asks to move the habit at Index by Delta positions.
type MoveHabitMsg struct {
	Index int
	Delta int
}

type ExportMsg struct {
	TSV bool
}

type Item struct {
	Entry ticker.Entry
}

func (i Item) FilterValue() string { return i.Entry.Habit.Name }

type KeyMap struct {
	Add       key.Binding
	Edit      key.Binding
	Relapse   key.Binding
	Delete    key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding
	ExportCSV key.Binding
	ExportTSV key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "edit"),
		),
		Relapse: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "relapse"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "move down"),
		),
		ExportCSV: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export csv"),
		),
		ExportTSV: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export tsv"),
		),
	}
}

func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Add, k.Edit, k.Relapse, k.Delete, k.MoveUp, k.MoveDown, k.ExportCSV, k.ExportTSV}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("205")).
			PaddingLeft(1)
	normalStyle = lipgloss.NewStyle().PaddingLeft(2)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// delegate draws each habit as three lines: name, elapsed time, and a
// progress bar with the goal and amount saved.
type delegate struct {
	bar progressbar.Model
}

func newDelegate() delegate {
	return delegate{
		bar: progressbar.New(
			progressbar.WithDefaultGradient(),
			progressbar.WithWidth(30),
		),
	}
}

func (d delegate) Height() int                             { return 3 }
func (d delegate) Spacing() int                            { return 1 }
func (d delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(Item)
	if !ok {
		return
	}
	e := i.Entry
	h := e.Habit

	block := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("%s %s", h.Icon, h.Name)),
		mutedStyle.Render(fmt.Sprintf("%d days clean · %s · %d relapses", e.Days, progress.FormatElapsed(e.Elapsed), len(h.Notes))),
		fmt.Sprintf("%s  goal %s · saved %s",
			d.bar.ViewAs(e.Progress.Percentage/100),
			progress.GoalLabel(h.Goal),
			savedLabel(e)),
	)

	if index == m.Index() {
		fmt.Fprint(w, selectedStyle.Render(block))
		return
	}
	fmt.Fprint(w, normalStyle.Render(block))
}

func savedLabel(e ticker.Entry) string {
	if e.Habit.CostType == models.CostMoney {
		return fmt.Sprintf("$%.2f", e.Saved)
	}
	return fmt.Sprintf("%.2f", e.Saved)
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, newDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the root model
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetEnabled(false)

	return Model{list: l, keys: DefaultKeyMap()}
}

func (m Model) Keys() KeyMap { return m.keys }

// SetEntries replaces the rendered entries, keeping the cursor position.
func (m *Model) SetEntries(entries []ticker.Entry) tea.Cmd {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = Item{Entry: e}
	}
	return m.list.SetItems(items)
}

func (m Model) Index() int { return m.list.Index() }

func (m *Model) Select(i int) { m.list.Select(i) }

func (m Model) Len() int { return len(m.list.Items()) }

// Selected returns the habit under the cursor.
func (m Model) Selected() (ticker.Entry, bool) {
	i, ok := m.list.SelectedItem().(Item)
	if !ok {
		return ticker.Entry{}, false
	}
	return i.Entry, true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.ExportCSV):
			return m, func() tea.Msg { return ExportMsg{} }
		case key.Matches(msg, m.keys.ExportTSV):
			return m, func() tea.Msg { return ExportMsg{TSV: true} }
		}

		e, ok := m.Selected()
		if ok {
			id := e.Habit.ID
			switch {
			case key.Matches(msg, m.keys.Edit):
				return m, func() tea.Msg { return EditHabitMsg{ID: id} }
			case key.Matches(msg, m.keys.Relapse):
				return m, func() tea.Msg { return RelapseMsg{ID: id} }
			case key.Matches(msg, m.keys.Delete):
				return m, func() tea.Msg { return DeleteHabitMsg{ID: id} }
			case key.Matches(msg, m.keys.MoveUp):
				idx := m.Index()
				return m, func() tea.Msg { return MoveHabitMsg{Index: idx, Delta: -1} }
			case key.Matches(msg, m.keys.MoveDown):
				idx := m.Index()
				return m, func() tea.Msg { return MoveHabitMsg{Index: idx, Delta: 1} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No habits tracked yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
