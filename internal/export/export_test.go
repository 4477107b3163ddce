package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/goals"
	"github.com/julianstephens/habitflow/internal/habits"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/session"
	"github.com/julianstephens/habitflow/internal/storage/memory"
	"github.com/julianstephens/habitflow/internal/utils"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type fixture struct {
	kv *memory.Store
	hs *habits.Store
	gs *goals.Store
}

func newFixture() fixture {
	kv := memory.NewStore()
	return fixture{kv: kv, hs: habits.New(kv, utils.FixedClock(testNow)), gs: goals.New(kv)}
}

func seed(t *testing.T, f fixture, ns session.Namespace) {
	t.Helper()
	ctx := context.Background()
	if err := f.hs.Add(ctx, ns, models.Habit{ID: "h1", Name: "Read", Frequency: models.FrequencyDaily, CreatedAt: testNow, GoalID: "g1"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := f.gs.Add(ctx, ns, models.Goal{ID: "g1", Title: "Read", Completed: 1, Target: 7, Frequency: models.FrequencyDaily}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := f.hs.MarkCompleted(ctx, ns, "h1"); err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	ana := session.Namespace{User: models.User{Name: "Ana", Email: "ana@example.com", Password: "$argon2id$secret-hash"}}
	f := newFixture()
	seed(t, f, ana)

	b, err := Build(context.Background(), f.hs, f.gs, ana, testNow)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, format := range []string{constants.ExportYAML, constants.ExportJSON} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Encode(&buf, b, format); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if strings.Contains(buf.String(), "secret-hash") {
				t.Error("export contains the password hash")
			}

			got, err := Decode(&buf, format)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(b, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		format  string
		wantErr string
	}{
		{name: "bad json", input: "{", format: constants.ExportJSON, wantErr: "failed to parse"},
		{name: "future version", input: "version: 9\n", format: constants.ExportYAML, wantErr: "unsupported bundle version"},
		{name: "missing version", input: `{"habits":[]}`, format: constants.ExportJSON, wantErr: "unsupported bundle version"},
		{name: "unknown format", input: "", format: "toml", wantErr: "unsupported import format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), tt.format)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Decode() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestImportMergesIntoCurrentUser(t *testing.T) {
	ctx := context.Background()
	ana := session.Namespace{User: models.User{Name: "Ana", Email: "ana@example.com"}}
	bo := session.Namespace{User: models.User{Name: "Bo", Email: "bo@example.com"}}

	f := newFixture()
	seed(t, f, ana)
	b, err := Build(ctx, f.hs, f.gs, ana, testNow)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	b.Completions.Add("2026-10-18", "h1")

	if err := f.hs.Add(ctx, bo, models.Habit{ID: "h9", Name: "Walk", Frequency: models.FrequencyDaily}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	res, err := Import(ctx, f.kv, f.hs, f.gs, bo, b)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if res.HabitsAdded != 1 || res.GoalsAdded != 1 || res.Completions != 2 {
		t.Errorf("Import() result = %+v", res)
	}
	// h9 has no goal, which is fine; nothing should be flagged
	if res.Conflicts.HasConflicts() {
		t.Errorf("unexpected conflicts: %s", res.Conflicts.FormatReport())
	}
	if got := len(f.hs.List(ctx, bo)); got != 2 {
		t.Errorf("bo has %d habits, want 2", got)
	}
	// two ledger days now carry h1
	g, err := f.gs.Get(ctx, bo, "g1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if g.Completed != 2 {
		t.Errorf("goal completed = %d, want 2 after merge", g.Completed)
	}

	again, err := Import(ctx, f.kv, f.hs, f.gs, bo, b)
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if again.HabitsUpdated != 1 || again.HabitsAdded != 0 || again.Completions != 0 {
		t.Errorf("second Import() result = %+v, want updates only", again)
	}
}

func TestImportWithoutSession(t *testing.T) {
	f := newFixture()
	if _, err := Import(context.Background(), f.kv, f.hs, f.gs, session.Namespace{}, Bundle{Version: 1}); err == nil {
		t.Error("Import() without session succeeded")
	}
}

func TestImportLeavesUnreadableHabitsAlone(t *testing.T) {
	ctx := context.Background()
	ana := session.Namespace{User: models.User{Name: "Ana", Email: "ana@example.com"}}
	f := newFixture()
	key := session.KeyFor(ana.User.Email, constants.DataHabits)
	if err := f.kv.Set(ctx, key, "{not json"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	b := Bundle{Version: 1, Habits: []models.Habit{{ID: "h1", Name: "Read", Frequency: models.FrequencyDaily}}, Completions: models.Ledger{}}
	if _, err := Import(ctx, f.kv, f.hs, f.gs, ana, b); !errors.Is(err, apperrors.ErrStorageRead) {
		t.Fatalf("Import() error = %v, want ErrStorageRead", err)
	}
	if blob, _, _ := f.kv.Get(ctx, key); blob != "{not json" {
		t.Errorf("habits overwritten: %q", blob)
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]string{
		"backup.json": constants.ExportJSON,
		"BACKUP.JSON": constants.ExportJSON,
		"backup.yaml": constants.ExportYAML,
		"backup.yml":  constants.ExportYAML,
		"backup":      constants.ExportYAML,
	} {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}
