// Package progress holds the pure aggregation functions behind the
// dashboard and progress views.
package progress

import (
	"math"

	"github.com/julianstephens/habitflow/internal/models"
)

// DailyCompletionRate returns the percentage of habits completed today,
// rounded to the nearest integer, and the subset of todayIDs that still
// name an existing habit (deduplicated, order kept).
func DailyCompletionRate(habits []models.Habit, todayIDs []string) (int, []string) {
	known := make(map[string]bool, len(habits))
	for _, h := range habits {
		known[h.ID] = true
	}

	valid := make([]string, 0, len(todayIDs))
	seen := make(map[string]bool, len(todayIDs))
	for _, id := range todayIDs {
		if known[id] && !seen[id] {
			seen[id] = true
			valid = append(valid, id)
		}
	}

	if len(habits) == 0 {
		return 0, valid
	}
	rate := int(math.Round(float64(len(valid)) / float64(len(habits)) * 100))
	if rate > 100 {
		rate = 100
	}
	return rate, valid
}

// GoalProgress is the completion percentage of goal, capped at 100
func GoalProgress(goal models.Goal) float64 {
	if goal.Target <= 0 {
		return 0
	}
	return math.Min(float64(goal.Completed)/float64(goal.Target), 1) * 100
}

// RecomputeCompleted sets goal.Completed from the number of distinct ledger
// days containing habitID. The count is capped at the target and never
// lowers a value already recorded.
func RecomputeCompleted(goal models.Goal, ledger models.Ledger, habitID string) models.Goal {
	if goal.Target <= 0 {
		return goal
	}
	completed := ledger.DaysWith(habitID)
	if goal.Completed > completed {
		completed = goal.Completed
	}
	if completed > goal.Target {
		completed = goal.Target
	}
	goal.Completed = completed
	return goal
}

// Summary is the overall goal picture
type Summary struct {
	// Overall is the mean goal progress, rounded
	Overall    int `json:"overall" yaml:"overall"`
	Achieved   int `json:"achieved" yaml:"achieved"`
	InProgress int `json:"inProgress" yaml:"inProgress"`
}

// Summarize averages goal progress and counts achieved goals
func Summarize(goals []models.Goal) Summary {
	var s Summary
	if len(goals) == 0 {
		return s
	}
	total := 0.0
	for _, g := range goals {
		total += GoalProgress(g)
		if g.Achieved() {
			s.Achieved++
		} else {
			s.InProgress++
		}
	}
	s.Overall = int(math.Round(total / float64(len(goals))))
	return s
}
