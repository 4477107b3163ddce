package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/tracker"
	"github.com/julianstephens/habitflow/internal/utils"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a habit and its goal."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Edit   HabitEditCmd   `cmd:"" help:"Rename a habit or retitle its goal."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit, its completions and its goal."`
	Done   HabitDoneCmd   `cmd:"" help:"Mark a habit as done today."`
	Today  HabitTodayCmd  `cmd:"" help:"Show today's habit status."`
	Log    HabitLogCmd    `cmd:"" help:"Show habit log (ASCII history)."`
}

type HabitAddCmd struct {
	Name      string `arg:"" optional:"" help:"Habit name (prompted when omitted)."`
	Goal      string `help:"Goal title. Defaults to '<name> for <period> days'."`
	Frequency string `help:"daily, weekly, or a custom tag such as weekdays." default:"daily"`
	Period    int    `help:"Goal length in days: 7, 30 or 90." default:"30"`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	if strings.TrimSpace(c.Name) == "" {
		if err := c.prompt(); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.Goal) == "" {
		c.Goal = fmt.Sprintf("%s for %d days", strings.TrimSpace(c.Name), c.Period)
	}

	habit, goal, err := ctx.Tracker.CreateHabitGoal(context.Background(), tracker.CreateInput{
		HabitName: c.Name,
		GoalTitle: c.Goal,
		Frequency: models.Frequency(strings.ToLower(strings.TrimSpace(c.Frequency))),
		Period:    c.Period,
	})
	if err != nil {
		return err
	}

	ctx.printf("Added habit: %s (%s)\n", habit.Name, shortID(habit.ID))
	ctx.printf("Goal: %s (0/%d days)\n", goal.Title, goal.Target)
	return nil
}

func (c *HabitAddCmd) prompt() error {
	frequency := models.Frequency(c.Frequency)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit").
				Value(&c.Name),
			huh.NewInput().
				Title("Goal").
				Description("Leave blank for a default title").
				Value(&c.Goal),
			huh.NewSelect[models.Frequency]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", models.FrequencyDaily),
					huh.NewOption("Weekly", models.FrequencyWeekly),
					huh.NewOption("Weekdays", models.FrequencyWeekdays),
					huh.NewOption("Weekends", models.FrequencyWeekends),
				).
				Value(&frequency),
			huh.NewSelect[int]().
				Title("Goal period").
				Options(
					huh.NewOption("1 week", constants.GoalPeriodWeek),
					huh.NewOption("1 month", constants.GoalPeriodMonth),
					huh.NewOption("3 months", constants.GoalPeriodQuarter),
				).
				Value(&c.Period),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	c.Frequency = string(frequency)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *Context) error {
	ns, err := ctx.Tracker.Sessions.Begin(context.Background())
	if err != nil {
		return err
	}
	habits := ctx.Tracker.Habits.List(context.Background(), ns)
	if len(habits) == 0 {
		ctx.println("No habits found.")
		return nil
	}
	for _, h := range habits {
		ctx.printf("%s  %-24s %s\n", shortID(h.ID), h.Name, h.Frequency)
	}
	return nil
}

type HabitEditCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Name  string `help:"New habit name."`
	Goal  string `help:"New goal title."`
}

func (c *HabitEditCmd) Run(ctx *Context) error {
	if strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Goal) == "" {
		return fmt.Errorf("nothing to change: pass --name and/or --goal")
	}
	h, err := ctx.findHabit(context.Background(), c.Habit)
	if err != nil {
		return err
	}
	updated, err := ctx.Tracker.EditHabitGoal(context.Background(), h.ID, c.Name, c.Goal)
	if err != nil {
		return err
	}
	ctx.printf("Updated habit: %s\n", updated.Name)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	h, err := ctx.findHabit(context.Background(), c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q, its completions and its goal?", h.Name)).
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Tracker.DeleteHabitGoal(context.Background(), h.ID); err != nil {
		return err
	}
	ctx.printf("Deleted habit: %s\n", h.Name)
	return nil
}

type HabitDoneCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitDoneCmd) Run(ctx *Context) error {
	bg := context.Background()
	h, err := ctx.findHabit(bg, c.Habit)
	if err != nil {
		return err
	}
	ns, err := ctx.Tracker.Sessions.Begin(bg)
	if err != nil {
		return err
	}
	already := ctx.Tracker.Habits.Ledger(bg, ns).Contains(ctx.Tracker.Habits.Today(), h.ID)

	goal, err := ctx.Tracker.CompleteHabit(bg, h.ID)
	if err != nil {
		return err
	}
	if already {
		ctx.printf("Already completed today: %s\n", h.Name)
	} else {
		ctx.printf("Completed: %s\n", h.Name)
	}
	if goal != nil {
		ctx.printf("Goal %s: %d/%d days\n", goal.Title, goal.Completed, goal.Target)
	}
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *Context) error {
	d, err := ctx.Tracker.Dashboard(context.Background())
	if err != nil {
		return err
	}
	if len(d.Habits) == 0 {
		ctx.println("No habits found.")
		return nil
	}

	ctx.printf("Habits for %s:\n\n", ctx.Tracker.Habits.Today())
	for _, h := range d.Habits {
		ctx.printf("%s %s\n", checkbox(d.IsCompleted(h.ID)), h.Name)
	}
	ctx.printf("\nCompleted: %d/%d (%d%%)\n", len(d.CompletedToday), len(d.Habits), d.Rate)
	return nil
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for one habit only (id or name)."`
}

const logNameWidth = 20

func (c *HabitLogCmd) Run(ctx *Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	bg := context.Background()
	ns, err := ctx.Tracker.Sessions.Begin(bg)
	if err != nil {
		return err
	}

	habits := ctx.Tracker.Habits.List(bg, ns)
	if c.Habit != "" {
		h, err := ctx.findHabit(bg, c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	}
	if len(habits) == 0 {
		ctx.println("No habits found.")
		return nil
	}

	ledger := ctx.Tracker.Habits.Ledger(bg, ns)
	days := utils.Window(ctx.Clock(), c.Days)
	// oldest first
	for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
		days[i], days[j] = days[j], days[i]
	}

	ctx.printf("Habit log (last %d days):\n\n", c.Days)
	ctx.printf("%-*s", logNameWidth, "Habit")
	for _, day := range days {
		ctx.printf(" %5s", day.Format("01/02"))
	}
	ctx.println()
	ctx.println(strings.Repeat("-", logNameWidth+6*len(days)))

	for _, h := range habits {
		ctx.printf("%-*s", logNameWidth, truncate(h.Name, logNameWidth))
		for _, day := range days {
			if ledger.Contains(utils.DateKey(day), h.ID) {
				ctx.printf("  x   ")
			} else {
				ctx.printf("  .   ")
			}
		}
		ctx.println()
	}
	return nil
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
