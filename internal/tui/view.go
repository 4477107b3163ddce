package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateToday:
		content = docStyle.Render(m.habitList.View())
	case StateGoals:
		content = docStyle.Render(m.goalsModel.View())
	case StateStats:
		content = docStyle.Render(m.viewStats())
	case StateForm:
		content = docStyle.Render(m.form.View())
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	parts := []string{m.viewTabs(), m.viewHeader(), content}
	if m.validationWarning != "" {
		parts = append(parts, warningStyle.Render(m.validationWarning))
	}
	if m.status != "" {
		parts = append(parts, headerStyle.Render(m.status))
	}
	parts = append(parts, m.help.View(m))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewTabs() string {
	active := m.state
	if active > StateStats {
		active = m.previousState
	}
	var tabs []string
	for i, title := range tabTitles {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewHeader() string {
	d := m.dashboard
	if d.User.Email == "" {
		return headerStyle.Render("Not logged in. Run 'habitflow login' first.")
	}
	return headerStyle.Render(fmt.Sprintf("%s | today %d/%d (%d%%) | goals %d%%",
		d.User.Name, len(d.CompletedToday), len(d.Habits), d.Rate, d.Summary.Overall))
}

func (m Model) viewStats() string {
	var b strings.Builder
	rate := 0
	if m.stats.TotalHabits > 0 {
		rate = m.stats.HabitsCompleted * 100 / m.stats.TotalHabits
	}
	fmt.Fprintf(&b, "Last %s: %d/%d completed (%d%%)\n\n", m.period, m.stats.HabitsCompleted, m.stats.TotalHabits, rate)
	if len(m.dashboard.Habits) == 0 {
		b.WriteString("No habits yet.")
		return b.String()
	}
	b.WriteString("Streaks\n")
	for _, h := range m.dashboard.Habits {
		fmt.Fprintf(&b, "  %-24s %d\n", h.Name, m.stats.Streaks[h.ID])
	}
	return b.String()
}

func (m Model) viewConfirmDelete() string {
	name := ""
	if m.habitToDelete != nil {
		name = m.habitToDelete.Name
	}
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q, its completions and its goal?", name)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
