// Package export writes and reads a portable bundle of one user's habits,
// goals and completions.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/goals"
	"github.com/julianstephens/habitflow/internal/habits"
	"github.com/julianstephens/habitflow/internal/logger"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/progress"
	"github.com/julianstephens/habitflow/internal/session"
	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/validation"
)

const bundleVersion = 1

// Profile is the non-secret part of the user record
type Profile struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}

// Bundle is the export file layout
type Bundle struct {
	Version     int            `json:"version" yaml:"version"`
	ExportedAt  time.Time      `json:"exportedAt" yaml:"exportedAt"`
	User        Profile        `json:"user" yaml:"user"`
	Habits      []models.Habit `json:"habits" yaml:"habits"`
	Goals       []models.Goal  `json:"goals" yaml:"goals"`
	Completions models.Ledger  `json:"completedHabits" yaml:"completedHabits"`
}

// Build collects the namespace's data into a bundle
func Build(ctx context.Context, hs *habits.Store, gs *goals.Store, ns session.Namespace, now time.Time) (Bundle, error) {
	if _, err := ns.Key(constants.DataHabits); err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Version:     bundleVersion,
		ExportedAt:  now,
		User:        Profile{Name: ns.User.Name, Email: ns.User.Email},
		Habits:      hs.List(ctx, ns),
		Goals:       gs.List(ctx, ns),
		Completions: hs.Ledger(ctx, ns),
	}, nil
}

// FormatFromPath picks json for *.json files and yaml otherwise
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return constants.ExportJSON
	}
	return constants.ExportYAML
}

// Encode writes b to w in format
func Encode(w io.Writer, b Bundle, format string) error {
	switch format {
	case constants.ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	case constants.ExportYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q (expected yaml or json)", format)
	}
}

// Decode reads a bundle written by Encode
func Decode(r io.Reader, format string) (Bundle, error) {
	var b Bundle
	var err error
	switch format {
	case constants.ExportJSON:
		err = json.NewDecoder(r).Decode(&b)
	case constants.ExportYAML, "":
		err = yaml.NewDecoder(r).Decode(&b)
	default:
		return Bundle{}, fmt.Errorf("unsupported import format %q (expected yaml or json)", format)
	}
	if err != nil {
		return Bundle{}, fmt.Errorf("failed to parse bundle: %w", err)
	}
	if b.Version == 0 || b.Version > bundleVersion {
		return Bundle{}, fmt.Errorf("unsupported bundle version %d", b.Version)
	}
	if b.Completions == nil {
		b.Completions = models.Ledger{}
	}
	return b, nil
}

// Result summarizes an import
type Result struct {
	HabitsAdded   int
	HabitsUpdated int
	GoalsAdded    int
	GoalsUpdated  int
	Completions   int
	Conflicts     validation.ValidationResult
}

// Import merges b into the namespace. Habits and goals are matched by id
// (bundle wins), ledger dates are unioned and linked goals are recomputed
// against the merged ledger. All three writes go in one batch. An unreadable
// habit list aborts the import.
func Import(ctx context.Context, kv storage.Store, hs *habits.Store, gs *goals.Store, ns session.Namespace, b Bundle) (Result, error) {
	var res Result

	habitList, err := hs.Load(ctx, ns)
	if err != nil {
		return Result{}, err
	}
	habitIdx := make(map[string]int, len(habitList))
	for i, h := range habitList {
		habitIdx[h.ID] = i
	}
	for _, h := range b.Habits {
		if i, ok := habitIdx[h.ID]; ok {
			habitList[i] = h
			res.HabitsUpdated++
			continue
		}
		habitIdx[h.ID] = len(habitList)
		habitList = append(habitList, h)
		res.HabitsAdded++
	}

	goalList := gs.List(ctx, ns)
	goalIdx := make(map[string]int, len(goalList))
	for i, g := range goalList {
		goalIdx[g.ID] = i
	}
	for _, g := range b.Goals {
		if i, ok := goalIdx[g.ID]; ok {
			goalList[i] = g
			res.GoalsUpdated++
			continue
		}
		goalIdx[g.ID] = len(goalList)
		goalList = append(goalList, g)
		res.GoalsAdded++
	}

	ledger := hs.Ledger(ctx, ns)
	for day, ids := range b.Completions {
		for _, id := range ids {
			if ledger.Add(day, id) {
				res.Completions++
			}
		}
	}

	// Goals catch up with completions that arrived through the merge
	for _, h := range habitList {
		if i, ok := goalIdx[h.GoalID]; ok && h.GoalID != "" {
			goalList[i] = progress.RecomputeCompleted(goalList[i], ledger, h.ID)
		}
	}

	habitsOp, err := hs.HabitsOp(ns, habitList)
	if err != nil {
		return Result{}, err
	}
	ledgerOp, err := hs.LedgerOp(ns, ledger)
	if err != nil {
		return Result{}, err
	}
	goalsOp, err := gs.SaveOp(ns, goalList)
	if err != nil {
		return Result{}, err
	}

	if err := storage.Apply(ctx, kv, habitsOp, ledgerOp, goalsOp); err != nil {
		return Result{}, fmt.Errorf("failed to write imported data: %w", err)
	}

	res.Conflicts = validation.New().ValidateData(habitList, goalList, ledger)
	if res.Conflicts.HasConflicts() {
		logger.Warn("Imported data has conflicts", "count", len(res.Conflicts.Conflicts))
	}
	return res, nil
}
