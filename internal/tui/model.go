// Package tui is the interactive dashboard: today's habits, goal progress
// and period stats.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/tracker"
	"github.com/julianstephens/habitflow/internal/tui/components/goals"
	"github.com/julianstephens/habitflow/internal/tui/components/habitlist"
	"github.com/julianstephens/habitflow/internal/validation"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateGoals
	StateStats
	StateForm
	StateConfirmDelete
)

var tabTitles = []string{"Today", "Goals", "Stats"}

// HabitFormModel backs the create and edit forms
type HabitFormModel struct {
	Name      string
	Goal      string
	Frequency models.Frequency
	Period    int
}

type Model struct {
	tracker           *tracker.Tracker
	state             SessionState
	previousState     SessionState
	keys              KeyMap
	help              help.Model
	habitList         habitlist.Model
	goalsModel        goals.Model
	dashboard         tracker.Dashboard
	stats             models.Stats
	period            models.Period
	form              *huh.Form
	habitForm         *HabitFormModel
	editingHabit      *models.Habit
	habitToDelete     *models.Habit
	validationWarning string
	status            string
	quitting          bool
	width             int
	height            int
}

// dashboardLoadedMsg carries a fresh snapshot of the user's data
type dashboardLoadedMsg struct {
	dashboard tracker.Dashboard
	stats     models.Stats
	conflicts int
	err       error
}

// actionDoneMsg reports the outcome of a write; the model reloads after it
type actionDoneMsg struct {
	status string
	err    error
}

func NewModel(t *tracker.Tracker) Model {
	return Model{
		tracker:    t,
		state:      StateToday,
		keys:       DefaultKeyMap(),
		help:       help.New(),
		habitList:  habitlist.New(0, 0),
		goalsModel: goals.New(0, 0),
		period:     models.PeriodWeek,
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == StateStats {
		keys = append(keys, m.keys.Period)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case StateToday:
		keys := habitlist.DefaultKeyMap()
		actions = []key.Binding{keys.Add, keys.Mark, keys.Edit, keys.Delete}
	case StateStats:
		actions = []key.Binding{m.keys.Period}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

// load reads the dashboard, the stats for the selected period and the
// conflict count in one command.
func (m Model) load() tea.Cmd {
	t, period := m.tracker, m.period
	return func() tea.Msg {
		ctx := context.Background()
		d, err := t.Dashboard(ctx)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}
		stats, err := t.Stats(ctx, period)
		if err != nil {
			return dashboardLoadedMsg{err: err}
		}

		conflicts := 0
		if ns, err := t.Sessions.Begin(ctx); err == nil {
			result := validation.New().ValidateData(d.Habits, d.Goals, t.Habits.Ledger(ctx, ns))
			conflicts = len(result.Conflicts)
		}
		return dashboardLoadedMsg{dashboard: d, stats: stats, conflicts: conflicts}
	}
}

func (m *Model) apply(msg dashboardLoadedMsg) {
	if msg.err != nil {
		m.status = fmt.Sprintf("Error: %v", msg.err)
		return
	}
	m.dashboard = msg.dashboard
	m.stats = msg.stats
	m.habitList.SetHabits(msg.dashboard.Habits, msg.dashboard.Goals, msg.dashboard.IsCompleted)
	m.goalsModel.SetGoals(msg.dashboard.Goals, msg.dashboard.Summary)
	if msg.conflicts > 0 {
		m.validationWarning = fmt.Sprintf("⚠ %d validation warning(s), run '%s validate'", msg.conflicts, constants.AppName)
	} else {
		m.validationWarning = ""
	}
}

func nextPeriod(p models.Period) models.Period {
	switch p {
	case models.PeriodDay:
		return models.PeriodWeek
	case models.PeriodWeek:
		return models.PeriodMonth
	default:
		return models.PeriodDay
	}
}
