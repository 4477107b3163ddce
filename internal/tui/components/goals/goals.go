package goals

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitflow/internal/models"
	progresscalc "github.com/julianstephens/habitflow/internal/progress"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

type Model struct {
	viewport viewport.Model
	bar      progress.Model
	goals    []models.Goal
	summary  progresscalc.Summary
}

func New(width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.goals) == 0 {
		return "No goals yet. Add a habit to create one."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	if w := width / 3; w > 10 {
		m.bar.Width = w
	}
	m.Render()
}

func (m *Model) SetGoals(goals []models.Goal, summary progresscalc.Summary) {
	m.goals = goals
	m.summary = summary
	m.Render()
}

func (m *Model) Render() {
	var b strings.Builder
	for _, g := range m.goals {
		fmt.Fprintf(&b, "%s\n%s %s\n\n",
			titleStyle.Render(g.Title),
			m.bar.ViewAs(progresscalc.GoalProgress(g)/100),
			countStyle.Render(fmt.Sprintf("%d/%d days", g.Completed, g.Target)),
		)
	}
	b.WriteString(summaryStyle.Render(fmt.Sprintf("Overall %d%% | %d achieved | %d in progress",
		m.summary.Overall, m.summary.Achieved, m.summary.InProgress)))
	m.viewport.SetContent(b.String())
}
