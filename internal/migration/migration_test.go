package migration

import (
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitflow/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mapFS(files map[string]string) fstest.MapFS {
	m := fstest.MapFS{}
	for name, content := range files {
		m[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return m
}

func TestGetCurrentVersion(t *testing.T) {
	runner := NewRunner(setupTestDB(t), mapFS(nil))

	version, err := runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}

	if err := runner.SetVersion(5); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}
	version, err = runner.GetCurrentVersion()
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if version != 5 {
		t.Errorf("expected version 5, got %d", version)
	}
}

func TestApplyMigrationsFromScratchAndIncremental(t *testing.T) {
	db := setupTestDB(t)
	files := map[string]string{
		"001_init.sql": "CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT);",
	}

	applied, err := NewRunner(db, mapFS(files)).ApplyMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}

	files["002_extra.sql"] = "CREATE TABLE extra (id INTEGER);"
	var logs []string
	applied, err = NewRunner(db, mapFS(files)).ApplyMigrations(func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatalf("incremental ApplyMigrations failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("incremental applied = %d, want 1", applied)
	}
	if len(logs) == 0 {
		t.Error("expected progress messages")
	}

	status, err := NewRunner(db, mapFS(files)).Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Current != 2 || status.Pending() {
		t.Errorf("status = %+v, want current 2 with nothing pending", status)
	}

	applied, err = NewRunner(db, mapFS(files)).ApplyMigrations(nil)
	if err != nil || applied != 0 {
		t.Errorf("re-run applied %d, err %v; want 0, nil", applied, err)
	}
}

func TestMigrationRollbackOnError(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{
		"001_ok.sql":     "CREATE TABLE ok (id INTEGER);",
		"002_broken.sql": "CREATE TABLE (this is not sql;",
	}))

	applied, err := runner.ApplyMigrations(nil)
	if err == nil {
		t.Fatal("expected error from broken migration")
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
	if version, _ := runner.GetCurrentVersion(); version != 1 {
		t.Errorf("version after failure = %d, want 1", version)
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	db := setupTestDB(t)
	runner := NewRunner(db, mapFS(map[string]string{"001_init.sql": "SELECT 1;"}))
	if err := runner.SetVersion(9); err != nil {
		t.Fatalf("SetVersion failed: %v", err)
	}

	err := runner.ValidateVersion()
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("ValidateVersion() error = %v, want newer-than-supported", err)
	}
	if _, err := runner.ApplyMigrations(nil); err == nil {
		t.Error("ApplyMigrations() on newer database succeeded")
	}
}

func TestReadMigrationFilesValidation(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{name: "no underscore", files: map[string]string{"001.sql": ""}, wantErr: "invalid migration filename"},
		{name: "non numeric", files: map[string]string{"abc_init.sql": ""}, wantErr: "invalid version number"},
		{name: "zero version", files: map[string]string{"000_init.sql": ""}, wantErr: "at least 1"},
		{name: "duplicate", files: map[string]string{"001_a.sql": "", "01_b.sql": ""}, wantErr: "duplicate migration version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, mapFS(tt.files)).ReadMigrationFiles()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ReadMigrationFiles() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestReadMigrationFilesIgnoresOtherFiles(t *testing.T) {
	got, err := NewRunner(nil, mapFS(map[string]string{
		"002_b.sql": "B",
		"001_a.sql": "A",
		"README.md": "docs",
	})).ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "a" || got[1].Version != 2 {
		t.Errorf("ReadMigrationFiles() = %+v", got)
	}
}

func TestEmbeddedSQLiteMigrationsApply(t *testing.T) {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("fs.Sub failed: %v", err)
	}
	db := setupTestDB(t)
	if _, err := NewRunner(db, sub).ApplyMigrations(nil); err != nil {
		t.Fatalf("embedded migrations failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO kv (key, value, updated_at) VALUES ('k', 'v', 'now')"); err != nil {
		t.Errorf("kv table unusable after migrations: %v", err)
	}
}
