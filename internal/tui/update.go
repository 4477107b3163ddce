package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/tui/components/habitlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Sizing and reloads apply whichever view is active
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg)
		if m.state == StateForm {
			return m.updateForm(msg)
		}
		return m, nil
	case dashboardLoadedMsg:
		m.apply(msg)
		return m, nil
	}

	switch m.state {
	case StateForm:
		return m.updateForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
		} else {
			m.status = msg.status
		}
		return m, m.load()

	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{Frequency: models.FrequencyDaily, Period: constants.GoalPeriodMonth}
		m.editingHabit = nil
		m.form = NewHabitForm(m.habitForm)
		m.previousState, m.state = m.state, StateForm
		return m, m.form.Init()

	case habitlist.EditHabitMsg:
		h := msg.Habit
		m.habitForm = &HabitFormModel{Name: h.Name}
		m.editingHabit = &h
		m.form = NewEditForm(m.habitForm)
		m.previousState, m.state = m.state, StateForm
		return m, m.form.Init()

	case habitlist.CompleteHabitMsg:
		return m, m.completeHabit(msg.ID)

	case habitlist.DeleteHabitMsg:
		h := msg.Habit
		m.habitToDelete = &h
		m.previousState, m.state = m.state, StateConfirmDelete
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + SessionState(len(tabTitles))) % SessionState(len(tabTitles))
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case m.state == StateStats && key.Matches(msg, m.keys.Period):
			m.period = nextPeriod(m.period)
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateToday:
		m.habitList, cmd = m.habitList.Update(msg)
	case StateGoals:
		m.goalsModel, cmd = m.goalsModel.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.previousState
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.state = m.previousState
		if m.editingHabit != nil {
			return m, m.editHabit(m.editingHabit.ID, *m.habitForm)
		}
		return m, m.createHabit(*m.habitForm)
	case huh.StateAborted:
		m.state = m.previousState
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		h := *m.habitToDelete
		m.habitToDelete = nil
		m.state = m.previousState
		return m, m.deleteHabit(h)
	case key.Matches(keyMsg, m.keys.Cancel):
		m.habitToDelete = nil
		m.state = m.previousState
	}
	return m, nil
}

func (m *Model) resize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.help.Width = msg.Width
	// tabs, header, status and help
	listHeight := msg.Height - 5
	h, v := docStyle.GetFrameSize()
	m.habitList.SetSize(msg.Width-h, listHeight-v)
	m.goalsModel.SetSize(msg.Width-h, listHeight-v)
}
