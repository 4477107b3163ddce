package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/models"
)

// ConflictType represents the type of data inconsistency
type ConflictType string

const (
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictMissingGoal        ConflictType = "missing_goal"
	ConflictOrphanGoal         ConflictType = "orphan_goal"
	ConflictStaleCompletion    ConflictType = "stale_completion"
	ConflictInvalidDate        ConflictType = "invalid_date"
	ConflictGoalOverTarget     ConflictType = "goal_over_target"
)

// Conflict represents one detected inconsistency in a user's data
type Conflict struct {
	Type        ConflictType
	Description string
	Date        string   // ledger date (if applicable)
	Items       []string // habit or goal names involved
	IDs         []string // ids involved, for auto-fixing
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	report := fmt.Sprintf("Found %d conflict(s):\n\n", len(vr.Conflicts))
	for _, conflict := range vr.Conflicts {
		report += fmt.Sprintf("- %s\n", conflict.Description)
	}
	return report
}

// Validator checks a user's habits, goals and ledger against each other
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateData checks habits, goals and the completion ledger for
// inconsistencies. Conflicts are reported in a stable order.
func (v *Validator) ValidateData(habits []models.Habit, goals []models.Goal, ledger models.Ledger) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	habitIDs := make(map[string]bool, len(habits))
	linkedGoals := make(map[string]bool, len(habits))
	goalIDs := make(map[string]bool, len(goals))
	for _, g := range goals {
		goalIDs[g.ID] = true
	}

	nameCount := make(map[string][]string)
	for _, h := range habits {
		habitIDs[h.ID] = true
		if h.GoalID != "" {
			linkedGoals[h.GoalID] = true
			if !goalIDs[h.GoalID] {
				result.Conflicts = append(result.Conflicts, Conflict{
					Type:        ConflictMissingGoal,
					Description: fmt.Sprintf("Habit \"%s\" links to missing goal %s", h.Name, h.GoalID),
					Items:       []string{h.Name},
					IDs:         []string{h.ID},
				})
			}
		}
		if name := strings.TrimSpace(h.Name); name != "" {
			key := strings.ToLower(name)
			nameCount[key] = append(nameCount[key], h.ID)
		}
	}

	names := make([]string, 0, len(nameCount))
	for name := range nameCount {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ids := nameCount[name]; len(ids) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitName,
				Description: fmt.Sprintf("Duplicate habit name: \"%s\" (IDs: %v)", name, ids),
				Items:       []string{name},
				IDs:         ids,
			})
		}
	}

	for _, g := range goals {
		if !linkedGoals[g.ID] {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictOrphanGoal,
				Description: fmt.Sprintf("Goal \"%s\" is not linked to any habit", g.Title),
				Items:       []string{g.Title},
				IDs:         []string{g.ID},
			})
		}
		if g.Target > 0 && g.Completed > g.Target {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictGoalOverTarget,
				Description: fmt.Sprintf("Goal \"%s\" has %d completions for a target of %d", g.Title, g.Completed, g.Target),
				Items:       []string{g.Title},
				IDs:         []string{g.ID},
			})
		}
	}

	days := make([]string, 0, len(ledger))
	for day := range ledger {
		days = append(days, day)
	}
	sort.Strings(days)
	for _, day := range days {
		if _, err := time.Parse(constants.DateFormat, day); err != nil {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidDate,
				Description: fmt.Sprintf("Ledger has invalid date key %q", day),
				Date:        day,
			})
			continue
		}
		var stale []string
		for _, id := range ledger[day] {
			if !habitIDs[id] {
				stale = append(stale, id)
			}
		}
		if len(stale) > 0 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictStaleCompletion,
				Description: fmt.Sprintf("Ledger entry %s references %d deleted habit(s)", day, len(stale)),
				Date:        day,
				IDs:         stale,
			})
		}
	}

	return result
}

// FixAction represents an action taken during auto-fix
type FixAction struct {
	Action         string
	SourceConflict Conflict
}

// AutoFix repairs the conflicts that have an unambiguous fix: stale ledger
// ids and invalid date keys are dropped, and over-target goals are clamped.
// ledger and goals are modified in place.
func AutoFix(conflicts []Conflict, ledger models.Ledger, goals []models.Goal) []FixAction {
	var actions []FixAction
	for _, c := range conflicts {
		switch c.Type {
		case ConflictStaleCompletion:
			for _, id := range c.IDs {
				ledger.RemoveHabit(id)
			}
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Removed %d stale completion(s) from %s", len(c.IDs), c.Date),
				SourceConflict: c,
			})
		case ConflictInvalidDate:
			delete(ledger, c.Date)
			actions = append(actions, FixAction{
				Action:         fmt.Sprintf("Dropped ledger entry %q", c.Date),
				SourceConflict: c,
			})
		case ConflictGoalOverTarget:
			for i := range goals {
				if len(c.IDs) > 0 && goals[i].ID == c.IDs[0] {
					goals[i].Completed = goals[i].Target
					actions = append(actions, FixAction{
						Action:         fmt.Sprintf("Clamped goal \"%s\" to %d", goals[i].Title, goals[i].Target),
						SourceConflict: c,
					})
				}
			}
		}
	}
	return actions
}
