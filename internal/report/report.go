// Package report builds the markdown progress report and renders it for the
// terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/tracker"
)

// Input is everything the report shows
type Input struct {
	GeneratedAt time.Time
	Dashboard   tracker.Dashboard
	Progress    []tracker.HabitProgress
	Week        models.Stats
	Month       models.Stats
}

func percent(done, total int) int {
	if total == 0 {
		return 0
	}
	return done * 100 / total
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Markdown renders in as a markdown document
func Markdown(in Input) string {
	var b strings.Builder
	d := in.Dashboard

	fmt.Fprintf(&b, "# Progress report for %s\n\n", d.User.Name)
	fmt.Fprintf(&b, "_Generated %s_\n\n", in.GeneratedAt.Format("Mon, 02 Jan 2006 15:04"))

	b.WriteString("## Today\n\n")
	fmt.Fprintf(&b, "- Completed: **%d of %d** habits (%d%%)\n", len(d.CompletedToday), len(d.Habits), d.Rate)
	fmt.Fprintf(&b, "- Goal progress: **%d%%** overall, %d achieved, %d in progress\n\n",
		d.Summary.Overall, d.Summary.Achieved, d.Summary.InProgress)

	b.WriteString("## Periods\n\n")
	b.WriteString("| Period | Completed | Due | Rate |\n|---|---|---|---|\n")
	for _, row := range []struct {
		name  string
		stats models.Stats
	}{{"Last 7 days", in.Week}, {"Last 30 days", in.Month}} {
		fmt.Fprintf(&b, "| %s | %d | %d | %d%% |\n", row.name, row.stats.HabitsCompleted, row.stats.TotalHabits,
			percent(row.stats.HabitsCompleted, row.stats.TotalHabits))
	}
	b.WriteString("\n")

	b.WriteString("## Habits\n\n")
	if len(in.Progress) == 0 {
		b.WriteString("No habits yet. Add one with `habitflow habit add`.\n")
		return b.String()
	}
	b.WriteString("| Habit | Frequency | Streak | Goal | Progress |\n|---|---|---|---|---|\n")
	for _, hp := range in.Progress {
		goal, prog := "-", "-"
		if hp.Goal != nil {
			goal = escape(hp.Goal.Title)
			prog = fmt.Sprintf("%d/%d (%.0f%%)", hp.Goal.Completed, hp.Goal.Target, hp.Percent)
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n",
			escape(hp.Habit.Name), hp.Habit.Frequency, in.Month.Streaks[hp.Habit.ID], goal, prog)
	}
	return b.String()
}

// Render turns markdown into styled terminal output. style is a glamour
// style name ("dark", "light", "notty"); empty picks one from the terminal.
func Render(markdown, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return out, nil
}
