package report

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/progress"
	"github.com/julianstephens/habitflow/internal/tracker"
)

func sampleInput() Input {
	goal := models.Goal{ID: "g1", Title: "Read | a lot", Completed: 3, Target: 7}
	return Input{
		GeneratedAt: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
		Dashboard: tracker.Dashboard{
			User:           models.User{Name: "Ana"},
			Habits:         []models.Habit{{ID: "h1"}, {ID: "h2"}},
			CompletedToday: []string{"h1"},
			Rate:           50,
			Summary:        progress.Summary{Overall: 43, InProgress: 1},
		},
		Progress: []tracker.HabitProgress{
			{Habit: models.Habit{ID: "h1", Name: "Read", Frequency: models.FrequencyDaily, GoalID: "g1"}, Goal: &goal, Percent: 42.857},
			{Habit: models.Habit{ID: "h2", Name: "Stretch", Frequency: models.FrequencyWeekdays}},
		},
		Week:  models.Stats{HabitsCompleted: 3, TotalHabits: 7},
		Month: models.Stats{HabitsCompleted: 3, TotalHabits: 30, Streaks: map[string]int{"h1": 2}},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleInput())

	for _, want := range []string{
		"# Progress report for Ana",
		"**1 of 2** habits (50%)",
		"**43%** overall, 0 achieved, 1 in progress",
		"| Last 7 days | 3 | 7 | 42% |",
		"| Last 30 days | 3 | 30 | 10% |",
		`| Read | daily | 2 | Read \| a lot | 3/7 (43%) |`,
		"| Stretch | weekdays | 0 | - | - |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestMarkdownNoHabits(t *testing.T) {
	in := sampleInput()
	in.Progress = nil
	if md := Markdown(in); !strings.Contains(md, "No habits yet") {
		t.Errorf("markdown without habits:\n%s", md)
	}
}

func TestRender(t *testing.T) {
	out, err := Render(Markdown(sampleInput()), "notty", 100)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(out, "Progress report for Ana") {
		t.Errorf("rendered output missing title:\n%s", out)
	}
}
