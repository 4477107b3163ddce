package habits

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/session"
)

func TestComputeStatsWeekDailyHabit(t *testing.T) {
	ctx := context.Background()
	s, _ := setupTestStore(t)

	if err := s.Add(ctx, ana, habit("h1", models.FrequencyDaily)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	// three of the last seven days, not today
	ledger := models.Ledger{
		"2026-10-18": {"h1"},
		"2026-10-16": {"h1"},
		"2026-10-14": {"h1"},
		"2026-10-12": {"h1"}, // outside the window
	}
	if err := s.SaveLedger(ctx, ana, ledger); err != nil {
		t.Fatalf("SaveLedger() error = %v", err)
	}

	got, err := s.ComputeStats(ctx, ana, models.PeriodWeek)
	if err != nil {
		t.Fatalf("ComputeStats() error = %v", err)
	}
	want := models.Stats{HabitsCompleted: 3, TotalHabits: 7, Streaks: map[string]int{"h1": 0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeStats() mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStatsWithoutSession(t *testing.T) {
	s, _ := setupTestStore(t)
	got, err := s.ComputeStats(context.Background(), session.Namespace{}, models.PeriodDay)
	if !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Errorf("ComputeStats() error = %v, want ErrNoActiveSession", err)
	}
	if got.TotalHabits != 0 || got.HabitsCompleted != 0 {
		t.Errorf("ComputeStats() = %+v, want zero stats", got)
	}
}

func TestCompute(t *testing.T) {
	habits := []models.Habit{
		habit("daily", models.FrequencyDaily),
		habit("everyday", models.FrequencyEveryday),
		habit("weekly", models.FrequencyWeekly),
		habit("weekdays", models.FrequencyWeekdays),
	}
	ledger := models.Ledger{
		"2026-10-19": {"daily", "weekdays"},
		"2026-10-18": {"daily", "everyday", "weekly"},
		"2026-10-11": {"weekly"},
		"2026-10-04": {"weekly"},
	}

	tests := []struct {
		name   string
		period models.Period
		want   models.Stats
	}{
		{
			name:   "day excludes weekly",
			period: models.PeriodDay,
			want: models.Stats{
				HabitsCompleted: 1,
				TotalHabits:     2,
				Streaks:         map[string]int{"daily": 2, "everyday": 0, "weekly": 3, "weekdays": 0},
			},
		},
		{
			// 19 Oct is a Monday, so the week holds one Sunday (18 Oct)
			name:   "week counts sundays",
			period: models.PeriodWeek,
			want: models.Stats{
				HabitsCompleted: 4,
				TotalHabits:     7 + 7 + 1,
				Streaks:         map[string]int{"daily": 2, "everyday": 0, "weekly": 3, "weekdays": 0},
			},
		},
		{
			// 30 days back from 19 Oct reaches 20 Sep: Sundays 20, 27 Sep and 4, 11, 18 Oct
			name:   "month",
			period: models.PeriodMonth,
			want: models.Stats{
				HabitsCompleted: 2 + 1 + 3,
				TotalHabits:     30 + 30 + 5,
				Streaks:         map[string]int{"daily": 2, "everyday": 0, "weekly": 3, "weekdays": 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(habits, ledger, testNow, tt.period)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Compute() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStreakCappedAtLookback(t *testing.T) {
	h := habit("h1", models.FrequencyDaily)
	ledger := models.Ledger{}
	day := testNow
	for i := 0; i < 45; i++ {
		ledger.Add(day.Format("2006-01-02"), "h1")
		day = day.AddDate(0, 0, -1)
	}
	if got := Streak(h, ledger, testNow); got != 30 {
		t.Errorf("Streak() = %d, want 30", got)
	}
}

func TestWeeklyStreakStopsAtMissedSunday(t *testing.T) {
	h := habit("w", models.FrequencyWeekly)
	ledger := models.Ledger{
		"2026-10-18": {"w"},
		// 11 Oct missed
		"2026-10-04": {"w"},
	}
	if got := Streak(h, ledger, testNow); got != 1 {
		t.Errorf("Streak() = %d, want 1", got)
	}
}
