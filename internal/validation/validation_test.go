package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitflow/internal/models"
)

func conflictTypes(result ValidationResult) []ConflictType {
	var types []ConflictType
	for _, c := range result.Conflicts {
		types = append(types, c.Type)
	}
	return types
}

func TestValidateDataClean(t *testing.T) {
	habits := []models.Habit{{ID: "h1", Name: "Read", GoalID: "g1"}}
	goals := []models.Goal{{ID: "g1", Title: "Read daily", Completed: 2, Target: 7}}
	ledger := models.Ledger{"2026-10-18": {"h1"}, "2026-10-19": {"h1"}}

	result := New().ValidateData(habits, goals, ledger)
	if result.HasConflicts() {
		t.Errorf("expected no conflicts, got: %s", result.FormatReport())
	}
	if got := result.FormatReport(); got != "No conflicts detected." {
		t.Errorf("FormatReport() = %q", got)
	}
}

func TestValidateDataDetectsConflicts(t *testing.T) {
	habits := []models.Habit{
		{ID: "h1", Name: "Read", GoalID: "g-missing"},
		{ID: "h2", Name: "read ", GoalID: "g2"},
	}
	goals := []models.Goal{
		{ID: "g2", Title: "Read more", Completed: 9, Target: 7},
		{ID: "g3", Title: "Orphan", Completed: 0, Target: 30},
	}
	ledger := models.Ledger{
		"2026-10-19": {"h1", "gone"},
		"19/10/2026": {"h1"},
	}

	result := New().ValidateData(habits, goals, ledger)

	want := []ConflictType{
		ConflictMissingGoal,
		ConflictDuplicateHabitName,
		ConflictGoalOverTarget,
		ConflictOrphanGoal,
		ConflictInvalidDate,
		ConflictStaleCompletion,
	}
	if diff := cmp.Diff(want, conflictTypes(result)); diff != "" {
		t.Errorf("conflict types mismatch (-want +got):\n%s", diff)
	}
}

func TestAutoFix(t *testing.T) {
	habits := []models.Habit{{ID: "h1", Name: "Read", GoalID: "g1"}}
	goals := []models.Goal{{ID: "g1", Title: "Read", Completed: 12, Target: 7}}
	ledger := models.Ledger{
		"2026-10-19": {"h1", "gone"},
		"not-a-date": {"h1"},
	}

	result := New().ValidateData(habits, goals, ledger)
	actions := AutoFix(result.Conflicts, ledger, goals)
	if len(actions) != 3 {
		t.Fatalf("AutoFix() returned %d actions, want 3", len(actions))
	}

	wantLedger := models.Ledger{"2026-10-19": {"h1"}}
	if diff := cmp.Diff(wantLedger, ledger); diff != "" {
		t.Errorf("ledger after AutoFix mismatch (-want +got):\n%s", diff)
	}
	if goals[0].Completed != 7 {
		t.Errorf("goal completed = %d, want clamped to 7", goals[0].Completed)
	}

	after := New().ValidateData(habits, goals, ledger)
	if after.HasConflicts() {
		t.Errorf("conflicts remain after AutoFix: %s", after.FormatReport())
	}
}
