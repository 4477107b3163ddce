package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/tracker"
	"github.com/julianstephens/habitflow/internal/validation"
)

func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit").
				Value(&fm.Name).
				Validate(func(s string) error { return validation.Required("habit name", s) }),
			huh.NewInput().
				Title("Goal").
				Description("Leave blank for a default title").
				Value(&fm.Goal),
			huh.NewSelect[models.Frequency]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", models.FrequencyDaily),
					huh.NewOption("Weekly", models.FrequencyWeekly),
					huh.NewOption("Weekdays", models.FrequencyWeekdays),
					huh.NewOption("Weekends", models.FrequencyWeekends),
				).
				Value(&fm.Frequency),
			huh.NewSelect[int]().
				Title("Goal period").
				Options(
					huh.NewOption("1 week", constants.GoalPeriodWeek),
					huh.NewOption("1 month", constants.GoalPeriodMonth),
					huh.NewOption("3 months", constants.GoalPeriodQuarter),
				).
				Value(&fm.Period),
		),
	)
}

func NewEditForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit").
				Value(&fm.Name).
				Validate(func(s string) error { return validation.Required("habit name", s) }),
			huh.NewInput().
				Title("Goal").
				Description("Leave blank to keep the current title").
				Value(&fm.Goal),
		),
	)
}

func (m Model) createHabit(fm HabitFormModel) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		goal := strings.TrimSpace(fm.Goal)
		if goal == "" {
			goal = fmt.Sprintf("%s for %d days", strings.TrimSpace(fm.Name), fm.Period)
		}
		h, _, err := t.CreateHabitGoal(context.Background(), tracker.CreateInput{
			HabitName: fm.Name,
			GoalTitle: goal,
			Frequency: fm.Frequency,
			Period:    fm.Period,
		})
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "Added " + h.Name}
	}
}

func (m Model) editHabit(id string, fm HabitFormModel) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		h, err := t.EditHabitGoal(context.Background(), id, fm.Name, fm.Goal)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "Updated " + h.Name}
	}
}

func (m Model) completeHabit(id string) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		goal, err := t.CompleteHabit(context.Background(), id)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		if goal != nil {
			return actionDoneMsg{status: fmt.Sprintf("%s: %d/%d days", goal.Title, goal.Completed, goal.Target)}
		}
		return actionDoneMsg{status: "Marked done"}
	}
}

func (m Model) deleteHabit(h models.Habit) tea.Cmd {
	t := m.tracker
	return func() tea.Msg {
		if err := t.DeleteHabitGoal(context.Background(), h.ID); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{status: "Deleted " + h.Name}
	}
}
