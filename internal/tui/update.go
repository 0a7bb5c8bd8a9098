package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/quitlog/internal/constants"
	"github.com/julianstephens/quitlog/internal/export"
	"github.com/julianstephens/quitlog/internal/logger"
	"github.com/julianstephens/quitlog/internal/tui/components/habitlist"
	"github.com/julianstephens/quitlog/internal/validation"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case tickMsg:
		cmd := m.refresh()
		return m, tea.Batch(cmd, m.tick())

	case storeChangedMsg:
		// Forms hold copies of the fields they edit, so a reload is safe.
		if err := m.store.Load(); err != nil {
			logger.Warn("Failed to reload habits", "error", err)
			m.setStatus("Reload failed: "+err.Error(), false)
		}
		cmd := m.refresh()
		return m, tea.Batch(cmd, waitForChange(m.changes))

	case exportDoneMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), false)
		} else {
			m.setStatus("Exported to "+msg.path, true)
		}
		return m, nil
	}

	switch m.state {
	case constants.StateAddHabit, constants.StateEditHabit, constants.StateRelapse:
		return m.updateForm(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}
	return m.updateList(msg)
}

func (m Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case habitlist.AddHabitMsg:
		m.habitForm = &validation.HabitInput{
			Icon:      constants.DefaultHabitIcon,
			CostType:  "money",
			GoalType:  "time",
			GoalValue: "30",
		}
		m.form = newHabitForm(m.habitForm, "New habit")
		m.formError = ""
		m.state = constants.StateAddHabit
		return m, m.form.Init()

	case habitlist.EditHabitMsg:
		h, err := m.store.Get(msg.ID)
		if err != nil {
			m.setStatus(err.Error(), false)
			return m, nil
		}
		in := validation.FromHabit(h, m.store.Location)
		m.habitForm = &in
		m.editingID = h.ID
		m.form = newHabitForm(m.habitForm, "Edit "+h.Name)
		m.formError = ""
		m.state = constants.StateEditHabit
		return m, m.form.Init()

	case habitlist.RelapseMsg:
		h, err := m.store.Get(msg.ID)
		if err != nil {
			m.setStatus(err.Error(), false)
			return m, nil
		}
		m.relapseForm = &validation.RelapseInput{}
		m.editingID = h.ID
		m.form = newRelapseForm(m.relapseForm, h.Name)
		m.formError = ""
		m.state = constants.StateRelapse
		return m, m.form.Init()

	case habitlist.DeleteHabitMsg:
		h, err := m.store.Get(msg.ID)
		if err != nil {
			m.setStatus(err.Error(), false)
			return m, nil
		}
		m.deletingID = h.ID
		m.deletingName = h.Name
		m.state = constants.StateConfirmDelete
		return m, nil

	case habitlist.MoveHabitMsg:
		to := msg.Index + msg.Delta
		if to < 0 || to >= m.list.Len() {
			return m, nil
		}
		if err := m.store.Reorder(msg.Index, to); err != nil {
			m.setStatus(err.Error(), false)
			return m, nil
		}
		cmd := m.refresh()
		m.list.Select(to)
		return m, cmd

	case habitlist.ExportMsg:
		format := export.CSV
		if msg.TSV {
			format = export.TSV
		}
		return m, m.exportCmd(format)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) exportCmd(format export.Format) tea.Cmd {
	habits, err := m.store.GetAll()
	now := m.store.Now()
	dir := m.cfg.ExportDir
	return func() tea.Msg {
		if err != nil {
			return exportDoneMsg{err: err}
		}
		name, payload, err := export.Render(habits, "", format, now)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		path, err := export.Write(dir, name, payload)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		return m.backToList(), nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		status, err := m.submit()
		if err != nil {
			// Rebuild the form with the entered values so the user can fix them.
			m.formError = err.Error()
			m.rebuildForm()
			return m, m.form.Init()
		}
		m = m.backToList()
		m.setStatus(status, true)
		cmds = append(cmds, m.refresh())
	case huh.StateAborted:
		m = m.backToList()
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) submit() (string, error) {
	switch m.state {
	case constants.StateAddHabit:
		h, err := m.store.Add(*m.habitForm)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Added %s", h.Name), nil
	case constants.StateEditHabit:
		h, err := m.store.Update(m.editingID, *m.habitForm)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Updated %s", h.Name), nil
	case constants.StateRelapse:
		at, note, err := validation.ParseRelapse(*m.relapseForm, m.store.Now(), m.store.Location)
		if err != nil {
			return "", err
		}
		h, err := m.store.RecordRelapse(m.editingID, at, note)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Recorded relapse for %s", h.Name), nil
	}
	return "", nil
}

func (m *Model) rebuildForm() {
	switch m.state {
	case constants.StateAddHabit:
		m.form = newHabitForm(m.habitForm, "New habit")
	case constants.StateEditHabit:
		m.form = newHabitForm(m.habitForm, "Edit habit")
	case constants.StateRelapse:
		name := ""
		if h, err := m.store.Get(m.editingID); err == nil {
			name = h.Name
		}
		m.form = newRelapseForm(m.relapseForm, name)
	}
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		name := m.deletingName
		err := m.store.Remove(m.deletingID)
		m = m.backToList()
		if err != nil {
			m.setStatus(err.Error(), false)
			return m, nil
		}
		m.setStatus("Deleted "+name, true)
		cmd := m.refresh()
		return m, cmd
	case key.Matches(keyMsg, m.keys.No):
		return m.backToList(), nil
	}
	return m, nil
}

func (m Model) backToList() Model {
	m.state = constants.StateList
	m.form = nil
	m.habitForm = nil
	m.relapseForm = nil
	m.editingID = ""
	m.deletingID = ""
	m.deletingName = ""
	m.formError = ""
	return m
}
