package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/storage/jsonfile"
	"github.com/julianstephens/habitflow/internal/storage/memory"
	"github.com/julianstephens/habitflow/internal/utils"
)

var testStart = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

// tickingClock advances by step on every call
func tickingClock(start time.Time, step time.Duration) utils.Clock {
	n := 0
	return func() time.Time {
		t := start.Add(time.Duration(n) * step)
		n++
		return t
	}
}

func seed(t *testing.T, kv storage.Store, data map[string]string) {
	t.Helper()
	for k, v := range data {
		if err := kv.Set(context.Background(), k, v); err != nil {
			t.Fatalf("Set(%s) failed: %v", k, err)
		}
	}
}

func dump(t *testing.T, kv storage.Store) map[string]string {
	t.Helper()
	ctx := context.Background()
	keys, err := kv.ListKeys(ctx)
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	out := map[string]string{}
	for _, k := range keys {
		v, _, err := kv.Get(ctx, k)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", k, err)
		}
		out[k] = v
	}
	return out
}

func TestCreateBackup(t *testing.T) {
	kv := memory.NewStore()
	seed(t, kv, map[string]string{"loggedUser": `{"email":"a@b.co"}`, "user_a@b.co_habits": "[]"})

	mgr := NewManager(kv, t.TempDir(), utils.FixedClock(testStart))
	backupPath, err := mgr.CreateBackup(context.Background())
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if got, want := filepath.Base(backupPath), "habitflow-20261019-0930.json"; got != want {
		t.Errorf("backup name = %q, want %q", got, want)
	}

	snap, err := ReadSnapshot(backupPath)
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}
	if diff := cmp.Diff(dump(t, kv), snap.Data); diff != "" {
		t.Errorf("snapshot data mismatch (-want +got):\n%s", diff)
	}
	if snap.Source != "memory" {
		t.Errorf("Source = %q, want memory", snap.Source)
	}
}

func TestBackupRotation(t *testing.T) {
	kv := memory.NewStore()
	mgr := NewManager(kv, t.TempDir(), tickingClock(testStart, time.Minute))

	for i := 0; i < MaxBackups+3; i++ {
		if _, err := mgr.CreateBackup(context.Background()); err != nil {
			t.Fatalf("CreateBackup %d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != MaxBackups {
		t.Fatalf("expected %d backups after rotation, got %d", MaxBackups, len(backups))
	}
	newest := testStart.Add(time.Duration(MaxBackups+2) * time.Minute)
	if !backups[0].Timestamp.Equal(newest) {
		t.Errorf("newest backup = %v, want %v", backups[0].Timestamp, newest)
	}
	oldest := testStart.Add(3 * time.Minute)
	if !backups[len(backups)-1].Timestamp.Equal(oldest) {
		t.Errorf("oldest kept backup = %v, want %v", backups[len(backups)-1].Timestamp, oldest)
	}
}

func TestListBackupsIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(memory.NewStore(), dir, utils.FixedClock(testStart))

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups on missing dir failed: %v", err)
	}
	if len(backups) != 0 {
		t.Fatalf("expected no backups, got %d", len(backups))
	}

	if _, err := mgr.CreateBackup(context.Background()); err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	for _, name := range []string{"notes.txt", "habitflow-garbage.json", "habitflow-20261019-0930.db"} {
		if err := os.WriteFile(filepath.Join(mgr.GetBackupDir(), name), []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err = mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup, got %d", len(backups))
	}
}

func TestUniqueBackupFilenames(t *testing.T) {
	mgr := NewManager(memory.NewStore(), t.TempDir(), utils.FixedClock(testStart))

	var names []string
	for i := 0; i < 3; i++ {
		p, err := mgr.CreateBackup(context.Background())
		if err != nil {
			t.Fatalf("CreateBackup %d failed: %v", i, err)
		}
		names = append(names, filepath.Base(p))
	}

	want := []string{
		"habitflow-20261019-0930.json",
		"habitflow-20261019-093000.json",
		"habitflow-20261019-093000-1.json",
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("backup names mismatch (-want +got):\n%s", diff)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 3 {
		t.Errorf("expected 3 listed backups, got %d", len(backups))
	}
}

func TestRestoreBackup(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	seed(t, kv, map[string]string{"a": "1", "b": "2"})

	mgr := NewManager(kv, t.TempDir(), tickingClock(testStart, time.Minute))
	backupPath, err := mgr.CreateBackup(ctx)
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	seed(t, kv, map[string]string{"a": "9", "c": "3"})
	if err := kv.Remove(ctx, "b"); err != nil {
		t.Fatal(err)
	}

	safety, err := mgr.RestoreBackup(ctx, backupPath)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"a": "1", "b": "2"}, dump(t, kv)); diff != "" {
		t.Errorf("restored data mismatch (-want +got):\n%s", diff)
	}

	snap, err := ReadSnapshot(safety)
	if err != nil {
		t.Fatalf("pre-restore backup unreadable: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"a": "9", "c": "3"}, snap.Data); diff != "" {
		t.Errorf("pre-restore backup mismatch (-want +got):\n%s", diff)
	}
}

func TestRestoreWithCorruptedBackup(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()
	seed(t, kv, map[string]string{"a": "1"})
	mgr := NewManager(kv, t.TempDir(), utils.FixedClock(testStart))

	bad := filepath.Join(t.TempDir(), "habitflow-20261019-0930.json")
	if err := os.WriteFile(bad, []byte("not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.RestoreBackup(ctx, bad); err == nil {
		t.Fatal("expected error restoring corrupted backup")
	}
	if _, err := mgr.RestoreBackup(ctx, filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error restoring missing backup")
	}
	if diff := cmp.Diff(map[string]string{"a": "1"}, dump(t, kv)); diff != "" {
		t.Errorf("store changed after failed restore (-want +got):\n%s", diff)
	}
}

func TestRestoreAcrossBackends(t *testing.T) {
	ctx := context.Background()
	src := memory.NewStore()
	seed(t, src, map[string]string{"registeredUsers": "[]", "user_a@b.co_goals": "[]"})

	dir := t.TempDir()
	backupPath, err := NewManager(src, dir, utils.FixedClock(testStart)).CreateBackup(ctx)
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	dst := jsonfile.NewStore(filepath.Join(dir, "habitflow.json"))
	if err := dst.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if _, err := NewManager(dst, dir, utils.FixedClock(testStart)).RestoreBackup(ctx, backupPath); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if diff := cmp.Diff(dump(t, src), dump(t, dst)); diff != "" {
		t.Errorf("cross-backend restore mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve(t *testing.T) {
	mgr := NewManager(memory.NewStore(), t.TempDir(), utils.FixedClock(testStart))
	backupPath, err := mgr.CreateBackup(context.Background())
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	got, err := mgr.Resolve(filepath.Base(backupPath))
	if err != nil {
		t.Fatalf("Resolve by name failed: %v", err)
	}
	if got != backupPath {
		t.Errorf("Resolve = %q, want %q", got, backupPath)
	}
	if _, err := mgr.Resolve("habitflow-19990101-0000.json"); err == nil {
		t.Error("expected error for unknown backup")
	}
}
