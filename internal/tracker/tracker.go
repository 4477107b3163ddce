// Package tracker runs the multi-store flows shared by the CLI and the TUI.
package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/goals"
	"github.com/julianstephens/habitflow/internal/habits"
	"github.com/julianstephens/habitflow/internal/logger"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/progress"
	"github.com/julianstephens/habitflow/internal/session"
	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/utils"
	"github.com/julianstephens/habitflow/internal/validation"
)

// Tracker ties the session, habit and goal stores to one key-value store
type Tracker struct {
	kv       storage.Store
	Sessions *session.Store
	Habits   *habits.Store
	Goals    *goals.Store
	clock    utils.Clock
	newID    func() string
}

func New(kv storage.Store, clock utils.Clock) *Tracker {
	if clock == nil {
		clock = utils.SystemClock(nil)
	}
	return &Tracker{
		kv:       kv,
		Sessions: session.New(kv),
		Habits:   habits.New(kv, clock),
		Goals:    goals.New(kv),
		clock:    clock,
		newID:    uuid.NewString,
	}
}

// CreateInput is the create-habit-goal form
type CreateInput struct {
	HabitName string
	GoalTitle string
	Frequency models.Frequency
	// Period is the goal target in days
	Period int
}

// CreateHabitGoal adds a habit and its paired goal. The habit is written
// first; a failed goal write leaves the habit in place and is returned.
func (t *Tracker) CreateHabitGoal(ctx context.Context, in CreateInput) (models.Habit, models.Goal, error) {
	in.HabitName = strings.TrimSpace(in.HabitName)
	in.GoalTitle = strings.TrimSpace(in.GoalTitle)
	if err := validation.Required("habit name", in.HabitName); err != nil {
		return models.Habit{}, models.Goal{}, err
	}
	if err := validation.Required("goal title", in.GoalTitle); err != nil {
		return models.Habit{}, models.Goal{}, err
	}
	if err := validation.GoalPeriod(in.Period); err != nil {
		return models.Habit{}, models.Goal{}, err
	}
	if in.Frequency == "" {
		in.Frequency = models.FrequencyDaily
	}

	ns, err := t.Sessions.Begin(ctx)
	if err != nil {
		return models.Habit{}, models.Goal{}, err
	}

	goal := models.Goal{
		ID:        t.newID(),
		Title:     in.GoalTitle,
		Target:    in.Period,
		Frequency: in.Frequency,
	}
	habit := models.Habit{
		ID:        t.newID(),
		Name:      in.HabitName,
		Frequency: in.Frequency,
		CreatedAt: t.clock(),
		GoalID:    goal.ID,
	}

	if err := t.Habits.Add(ctx, ns, habit); err != nil {
		return models.Habit{}, models.Goal{}, fmt.Errorf("failed to create habit: %w", err)
	}
	if err := t.Goals.Add(ctx, ns, goal); err != nil {
		return habit, models.Goal{}, fmt.Errorf("failed to create goal: %w", err)
	}
	logger.Info("Created habit goal", "habit", habit.ID, "goal", goal.ID)
	return habit, goal, nil
}

// EditHabitGoal renames the habit and retitles its linked goal. Empty values
// leave the corresponding field unchanged.
func (t *Tracker) EditHabitGoal(ctx context.Context, habitID, newName, newGoalTitle string) (models.Habit, error) {
	ns, err := t.Sessions.Begin(ctx)
	if err != nil {
		return models.Habit{}, err
	}
	habit, err := t.Habits.Get(ctx, ns, habitID)
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %s: %w", habitID, err)
	}

	if name := strings.TrimSpace(newName); name != "" && name != habit.Name {
		now := t.clock()
		habit.Name = name
		habit.UpdatedAt = &now
		if err := t.Habits.Update(ctx, ns, habit); err != nil {
			return models.Habit{}, fmt.Errorf("failed to update habit: %w", err)
		}
	}

	if title := strings.TrimSpace(newGoalTitle); title != "" && habit.GoalID != "" {
		goal, err := t.Goals.Get(ctx, ns, habit.GoalID)
		if err != nil {
			logger.Warn("Linked goal missing, title not updated", "habit", habit.ID, "goal", habit.GoalID)
			return habit, nil
		}
		goal.Title = title
		if err := t.Goals.Update(ctx, ns, goal); err != nil {
			return habit, fmt.Errorf("failed to update goal: %w", err)
		}
	}
	return habit, nil
}

// DeleteHabitGoal removes the habit, its ledger entries and its linked goal
// in one batch.
func (t *Tracker) DeleteHabitGoal(ctx context.Context, habitID string) error {
	ns, err := t.Sessions.Begin(ctx)
	if err != nil {
		return err
	}
	habit, err := t.Habits.Get(ctx, ns, habitID)
	if err != nil {
		return fmt.Errorf("habit %s: %w", habitID, err)
	}

	ops, err := t.Habits.RemoveOps(ctx, ns, habitID)
	if err != nil {
		return err
	}
	if habit.GoalID != "" {
		if kept, found := goals.Without(t.Goals.List(ctx, ns), habit.GoalID); found {
			op, err := t.Goals.SaveOp(ns, kept)
			if err != nil {
				return err
			}
			ops = append(ops, op)
		}
	}

	if err := storage.Apply(ctx, t.kv, ops...); err != nil {
		return fmt.Errorf("failed to delete habit %s: %w", habitID, apperrors.Write(ops[0].Key, err))
	}
	logger.Info("Deleted habit goal", "habit", habitID, "goal", habit.GoalID)
	return nil
}

// CompleteHabit marks the habit done today and recomputes its linked goal.
// The returned goal is nil when the habit has no goal or the goal could not
// be saved; goal failures are logged rather than returned.
func (t *Tracker) CompleteHabit(ctx context.Context, habitID string) (*models.Goal, error) {
	ns, err := t.Sessions.Begin(ctx)
	if err != nil {
		return nil, err
	}
	habit, err := t.Habits.Get(ctx, ns, habitID)
	if err != nil {
		return nil, fmt.Errorf("habit %s: %w", habitID, err)
	}
	if err := t.Habits.MarkCompleted(ctx, ns, habitID); err != nil {
		return nil, fmt.Errorf("failed to mark habit completed: %w", err)
	}
	if habit.GoalID == "" {
		return nil, nil
	}

	ledger := t.Habits.Ledger(ctx, ns)
	all := t.Goals.List(ctx, ns)
	for i := range all {
		if all[i].ID != habit.GoalID {
			continue
		}
		all[i] = progress.RecomputeCompleted(all[i], ledger, habitID)
		if err := t.Goals.SaveAll(ctx, ns, all); err != nil {
			logger.Warn("Failed to save recomputed goal", "goal", habit.GoalID, "error", err)
			return nil, nil
		}
		g := all[i]
		return &g, nil
	}
	logger.Warn("Completed habit links to missing goal", "habit", habitID, "goal", habit.GoalID)
	return nil, nil
}

// Dashboard is a snapshot of the user's day
type Dashboard struct {
	User           models.User
	Habits         []models.Habit
	CompletedToday []string
	Rate           int
	Goals          []models.Goal
	Summary        progress.Summary
}

// IsCompleted reports whether id is in today's entry
func (d Dashboard) IsCompleted(id string) bool {
	for _, c := range d.CompletedToday {
		if c == id {
			return true
		}
	}
	return false
}

// Dashboard loads habits, the ledger and goals concurrently, drops ids of
// deleted habits from today's entry and persists the pruned entry. The prune
// is skipped when the habit list could not be read.
func (t *Tracker) Dashboard(ctx context.Context) (Dashboard, error) {
	ns, err := t.Sessions.Begin(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	var (
		habitList []models.Habit
		habitsErr error
		ledger    models.Ledger
		goalList  []models.Goal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		habitList, habitsErr = t.Habits.Load(gctx, ns)
		return nil
	})
	g.Go(func() error {
		ledger = t.Habits.Ledger(gctx, ns)
		return nil
	})
	g.Go(func() error {
		goalList = t.Goals.List(gctx, ns)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	// An unreadable habit list says nothing about which ids are stale
	if habitsErr != nil {
		logger.Warn("Failed to load habits", "error", habitsErr)
		habitList = []models.Habit{}
	}

	today := t.Habits.Today()
	rate, valid := progress.DailyCompletionRate(habitList, ledger[today])
	if habitsErr == nil && len(valid) != len(ledger[today]) {
		ledger[today] = valid
		if err := t.Habits.SaveLedger(ctx, ns, ledger); err != nil {
			logger.Warn("Failed to prune today's completions", "error", err)
		}
	}

	return Dashboard{
		User:           ns.User,
		Habits:         habitList,
		CompletedToday: valid,
		Rate:           rate,
		Goals:          goalList,
		Summary:        progress.Summarize(goalList),
	}, nil
}

// Stats computes period statistics for the logged-in user
func (t *Tracker) Stats(ctx context.Context, period models.Period) (models.Stats, error) {
	ns, err := t.Sessions.Begin(ctx)
	if err != nil {
		return models.Stats{Streaks: map[string]int{}}, err
	}
	return t.Habits.ComputeStats(ctx, ns, period)
}

// HabitProgress pairs a habit with its linked goal for display
type HabitProgress struct {
	Habit   models.Habit
	Goal    *models.Goal
	Percent float64
}

// Progress lists every habit with its goal progress
func (t *Tracker) Progress(ctx context.Context) ([]HabitProgress, progress.Summary, error) {
	ns, err := t.Sessions.Begin(ctx)
	if err != nil {
		return nil, progress.Summary{}, err
	}
	goalList := t.Goals.List(ctx, ns)
	byID := make(map[string]models.Goal, len(goalList))
	for _, g := range goalList {
		byID[g.ID] = g
	}

	var out []HabitProgress
	for _, h := range t.Habits.List(ctx, ns) {
		hp := HabitProgress{Habit: h}
		if g, ok := byID[h.GoalID]; ok {
			hp.Goal = &g
			hp.Percent = progress.GoalProgress(g)
		}
		out = append(out, hp)
	}
	return out, progress.Summarize(goalList), nil
}
