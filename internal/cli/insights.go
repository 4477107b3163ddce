package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/report"
)

type GoalCmd struct {
	List GoalListCmd `cmd:"" help:"List goals and their progress."`
}

type GoalListCmd struct{}

func (c *GoalListCmd) Run(ctx *Context) error {
	ns, err := ctx.Tracker.Sessions.Begin(context.Background())
	if err != nil {
		return err
	}
	goals := ctx.Tracker.Goals.List(context.Background(), ns)
	if len(goals) == 0 {
		ctx.println("No goals found.")
		return nil
	}
	for _, g := range goals {
		ctx.printf("%s %-28s %d/%d days\n", checkbox(g.Achieved()), g.Title, g.Completed, g.Target)
	}
	return nil
}

type StatsCmd struct {
	Period string `help:"Window: day, week or month." enum:"day,week,month" default:"week"`
}

func (c *StatsCmd) Run(ctx *Context) error {
	period, err := models.ParsePeriod(c.Period)
	if err != nil {
		return err
	}
	bg := context.Background()
	stats, err := ctx.Tracker.Stats(bg, period)
	if err != nil {
		return err
	}

	rate := 0
	if stats.TotalHabits > 0 {
		rate = stats.HabitsCompleted * 100 / stats.TotalHabits
	}
	ctx.printf("Stats for the last %s:\n\n", period)
	ctx.printf("Completed: %d/%d (%d%%)\n", stats.HabitsCompleted, stats.TotalHabits, rate)

	ns, err := ctx.Tracker.Sessions.Begin(bg)
	if err != nil {
		return err
	}
	habits := ctx.Tracker.Habits.List(bg, ns)
	if len(habits) == 0 {
		return nil
	}
	ctx.println("\nStreaks:")
	for _, h := range habits {
		ctx.printf("  %-24s %d\n", h.Name, stats.Streaks[h.ID])
	}
	return nil
}

type ProgressCmd struct {
	Width int `help:"Bar width." default:"30"`
}

func (c *ProgressCmd) Run(ctx *Context) error {
	rows, summary, err := ctx.Tracker.Progress(context.Background())
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		ctx.println("No habits found.")
		return nil
	}

	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(c.Width))
	for _, row := range rows {
		if row.Goal == nil {
			ctx.printf("%-24s (no goal)\n", row.Habit.Name)
			continue
		}
		ctx.printf("%-24s %s %d/%d\n", row.Habit.Name, bar.ViewAs(row.Percent/100), row.Goal.Completed, row.Goal.Target)
	}
	ctx.printf("\nOverall: %d%%  Achieved: %d  In progress: %d\n", summary.Overall, summary.Achieved, summary.InProgress)
	return nil
}

type ReportCmd struct {
	Style string `help:"Glamour style (dark, light, notty). Detected from the terminal when empty."`
	Width int    `help:"Wrap width." default:"80"`
	Raw   bool   `help:"Print the markdown source instead of rendering it."`
}

func (c *ReportCmd) Run(ctx *Context) error {
	in, err := buildReport(context.Background(), ctx)
	if err != nil {
		return err
	}
	md := report.Markdown(in)
	if c.Raw {
		ctx.printf("%s", md)
		return nil
	}
	out, err := report.Render(md, c.Style, c.Width)
	if err != nil {
		return err
	}
	ctx.printf("%s", out)
	return nil
}

// buildReport loads the report sections concurrently
func buildReport(bg context.Context, ctx *Context) (report.Input, error) {
	in := report.Input{GeneratedAt: ctx.Clock()}

	// Dashboard may prune today's entry, so it runs before the readers
	d, err := ctx.Tracker.Dashboard(bg)
	if err != nil {
		return report.Input{}, err
	}
	in.Dashboard = d

	g, gctx := errgroup.WithContext(bg)
	g.Go(func() error {
		rows, _, err := ctx.Tracker.Progress(gctx)
		if err != nil {
			return fmt.Errorf("progress: %w", err)
		}
		in.Progress = rows
		return nil
	})
	g.Go(func() error {
		s, err := ctx.Tracker.Stats(gctx, models.PeriodWeek)
		in.Week = s
		return err
	})
	g.Go(func() error {
		s, err := ctx.Tracker.Stats(gctx, models.PeriodMonth)
		in.Month = s
		return err
	})
	if err := g.Wait(); err != nil {
		return report.Input{}, err
	}
	return in, nil
}
