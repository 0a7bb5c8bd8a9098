package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/quitlog/internal/constants"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateAddHabit, constants.StateEditHabit, constants.StateRelapse:
		content = m.viewForm()
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = docStyle.Render(m.list.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	s := m.snapshot.Summary
	return lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render(constants.AppName),
		statStyle.Render(fmt.Sprintf("💰 $%.2f saved", s.MoneySaved)),
		statStyle.Render(fmt.Sprintf("🔥 %d day streak", s.LongestStreak)),
		statStyle.Render(fmt.Sprintf("%d habits", s.Active)),
	)
}

func (m Model) viewForm() string {
	if m.form == nil {
		return ""
	}
	if m.formError == "" {
		return docStyle.Render(m.form.View())
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		dangerStyle.Render(m.formError),
		"",
		m.form.View(),
	))
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %s and its relapse history?", m.deletingName)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusOK {
		return successStyle.Render("  " + m.status)
	}
	return dangerStyle.Render("  " + m.status)
}
