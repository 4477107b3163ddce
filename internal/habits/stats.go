package habits

import (
	"context"
	"time"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/session"
	"github.com/julianstephens/habitflow/internal/utils"
)

// WindowDays is the number of calendar days a period covers, today included
func WindowDays(period models.Period) int {
	switch period {
	case models.PeriodWeek:
		return constants.WeekWindow
	case models.PeriodMonth:
		return constants.MonthWindow
	default:
		return constants.DayWindow
	}
}

// ComputeStats folds the ledger over the period window. Daily habits are due
// every day of the window, weekly habits on each Sunday in it (and not at all
// for the day period). Habits with any other frequency tag count toward
// neither total and get a zero streak.
func (s *Store) ComputeStats(ctx context.Context, ns session.Namespace, period models.Period) (models.Stats, error) {
	if _, err := ns.Key(constants.DataHabits); err != nil {
		return models.Stats{Streaks: map[string]int{}}, err
	}

	habits := s.List(ctx, ns)
	ledger := s.Ledger(ctx, ns)
	return Compute(habits, ledger, s.clock(), period), nil
}

// Compute is ComputeStats over already-loaded data
func Compute(habits []models.Habit, ledger models.Ledger, now time.Time, period models.Period) models.Stats {
	stats := models.Stats{Streaks: make(map[string]int, len(habits))}
	window := utils.Window(now, WindowDays(period))

	for _, h := range habits {
		switch h.Frequency.Cadence() {
		case models.CadenceDaily:
			stats.TotalHabits += len(window)
			for _, day := range window {
				if ledger.Contains(utils.DateKey(day), h.ID) {
					stats.HabitsCompleted++
				}
			}
		case models.CadenceWeekly:
			if period == models.PeriodDay {
				break
			}
			for _, day := range window {
				if day.Weekday() != constants.WeeklyDueDay {
					continue
				}
				stats.TotalHabits++
				if ledger.Contains(utils.DateKey(day), h.ID) {
					stats.HabitsCompleted++
				}
			}
		}
		stats.Streaks[h.ID] = Streak(h, ledger, now)
	}
	return stats
}

// Streak counts consecutive completions walking back from today, looking at
// most StreakLookbackDays days back. Weekly habits only consult Sundays.
func Streak(h models.Habit, ledger models.Ledger, now time.Time) int {
	cadence := h.Frequency.Cadence()
	if cadence == models.CadenceOther {
		return 0
	}

	streak := 0
	for _, day := range utils.Window(now, constants.StreakLookbackDays) {
		if cadence == models.CadenceWeekly && day.Weekday() != constants.WeeklyDueDay {
			continue
		}
		if !ledger.Contains(utils.DateKey(day), h.ID) {
			break
		}
		streak++
	}
	return streak
}
