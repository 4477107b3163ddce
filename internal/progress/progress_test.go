package progress

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitflow/internal/models"
)

func habits(ids ...string) []models.Habit {
	out := make([]models.Habit, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Habit{ID: id})
	}
	return out
}

func TestDailyCompletionRate(t *testing.T) {
	tests := []struct {
		name      string
		habits    []models.Habit
		today     []string
		wantRate  int
		wantValid []string
	}{
		{name: "no habits", habits: nil, today: []string{"h1"}, wantRate: 0, wantValid: []string{}},
		{name: "half", habits: habits("h1", "h2"), today: []string{"h1"}, wantRate: 50, wantValid: []string{"h1"}},
		{name: "all", habits: habits("h1", "h2"), today: []string{"h2", "h1"}, wantRate: 100, wantValid: []string{"h2", "h1"}},
		{name: "stale ids dropped", habits: habits("h1", "h2", "h3"), today: []string{"gone", "h3"}, wantRate: 33, wantValid: []string{"h3"}},
		{name: "rounds up", habits: habits("h1", "h2", "h3"), today: []string{"h1", "h2"}, wantRate: 67, wantValid: []string{"h1", "h2"}},
		{name: "duplicates ignored", habits: habits("h1", "h2"), today: []string{"h1", "h1"}, wantRate: 50, wantValid: []string{"h1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, valid := DailyCompletionRate(tt.habits, tt.today)
			if rate != tt.wantRate {
				t.Errorf("rate = %d, want %d", rate, tt.wantRate)
			}
			if rate < 0 || rate > 100 {
				t.Errorf("rate %d out of range", rate)
			}
			if diff := cmp.Diff(tt.wantValid, valid); diff != "" {
				t.Errorf("valid mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGoalProgress(t *testing.T) {
	tests := []struct {
		goal models.Goal
		want float64
	}{
		{goal: models.Goal{Completed: 0, Target: 0}, want: 0},
		{goal: models.Goal{Completed: 3, Target: -1}, want: 0},
		{goal: models.Goal{Completed: 3, Target: 30}, want: 10},
		{goal: models.Goal{Completed: 7, Target: 7}, want: 100},
		{goal: models.Goal{Completed: 9, Target: 7}, want: 100},
	}
	for _, tt := range tests {
		if got := GoalProgress(tt.goal); got != tt.want {
			t.Errorf("GoalProgress(%+v) = %v, want %v", tt.goal, got, tt.want)
		}
	}
}

func TestRecomputeCompleted(t *testing.T) {
	ledger := models.Ledger{
		"2026-10-17": {"h1"},
		"2026-10-18": {"h1", "h2"},
		"2026-10-19": {"h1"},
	}

	tests := []struct {
		name string
		goal models.Goal
		want int
	}{
		{name: "counts distinct days", goal: models.Goal{Target: 30}, want: 3},
		{name: "capped at target", goal: models.Goal{Target: 2}, want: 2},
		{name: "never decreases", goal: models.Goal{Completed: 5, Target: 30}, want: 5},
		{name: "zero target untouched", goal: models.Goal{Completed: 1, Target: 0}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecomputeCompleted(tt.goal, ledger, "h1")
			if got.Completed != tt.want {
				t.Errorf("Completed = %d, want %d", got.Completed, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	goals := []models.Goal{
		{ID: "a", Completed: 7, Target: 7},
		{ID: "b", Completed: 15, Target: 30},
		{ID: "c", Completed: 0, Target: 90},
	}
	want := Summary{Overall: 50, Achieved: 1, InProgress: 2}
	if diff := cmp.Diff(want, Summarize(goals)); diff != "" {
		t.Errorf("Summarize() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Summary{}, Summarize(nil)); diff != "" {
		t.Errorf("Summarize(nil) mismatch (-want +got):\n%s", diff)
	}
}
