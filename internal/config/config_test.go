package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/keyring"
)

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func stubLookup(t *testing.T, fn func(constants.Backend) (string, error)) {
	t.Helper()
	prev := ConnLookup
	ConnLookup = fn
	t.Cleanup(func() { ConnLookup = prev })
}

func TestLoadMissingFileDefaultsToSQLite(t *testing.T) {
	dir := t.TempDir()
	s, err := Load(Flags{ConfigFile: filepath.Join(dir, "config.toml")})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := &Settings{
		Backend:   constants.BackendSQLite,
		DSN:       filepath.Join(dir, "habitflow.db"),
		ConfigDir: dir,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileValues(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, `
backend = "json"
dsn = "`+filepath.Join(dir, "data.json")+`"
timezone = "America/New_York"
debug = true
log_dir = "`+filepath.Join(dir, "logs")+`"
`)

	s, err := Load(Flags{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := &Settings{
		Backend:   constants.BackendJSON,
		DSN:       filepath.Join(dir, "data.json"),
		Timezone:  "America/New_York",
		Debug:     true,
		LogDir:    filepath.Join(dir, "logs"),
		ConfigDir: dir,
		FileFound: true,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, `
backend = "json"
timezone = "UTC"
`)

	s, err := Load(Flags{ConfigFile: path, Backend: "memory", Timezone: "Europe/Paris"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Backend != constants.BackendMemory {
		t.Errorf("Backend = %q, want memory", s.Backend)
	}
	if s.Timezone != "Europe/Paris" {
		t.Errorf("Timezone = %q, want Europe/Paris", s.Timezone)
	}
}

func TestRemoteBackendUsesKeyring(t *testing.T) {
	stubLookup(t, func(b constants.Backend) (string, error) {
		if b != constants.BackendRedis {
			t.Errorf("lookup backend = %q, want redis", b)
		}
		return "redis://localhost:6379/2", nil
	})

	s, err := Load(Flags{ConfigFile: filepath.Join(t.TempDir(), "none.toml"), Backend: "redis"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.DSN != "redis://localhost:6379/2" {
		t.Errorf("DSN = %q, want keyring value", s.DSN)
	}
}

func TestRemoteBackendWithoutConnection(t *testing.T) {
	stubLookup(t, func(constants.Backend) (string, error) { return "", keyring.ErrNotFound })

	_, err := Load(Flags{ConfigFile: filepath.Join(t.TempDir(), "none.toml"), Backend: "postgres"})
	if err == nil || !strings.Contains(err.Error(), constants.ConnectionEnvVar) {
		t.Errorf("Load() error = %v, want hint naming %s", err, constants.ConnectionEnvVar)
	}
}

func TestDSNDetectsBackend(t *testing.T) {
	stubLookup(t, func(constants.Backend) (string, error) {
		return "", errors.New("keyring must not be consulted when a DSN is given")
	})

	s, err := Load(Flags{ConfigFile: filepath.Join(t.TempDir(), "none.toml"), DSN: "mongodb://localhost:27017/habits"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Backend != constants.BackendMongo {
		t.Errorf("Backend = %q, want mongo", s.Backend)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		flags   Flags
		wantErr string
	}{
		{name: "bad toml", content: "backend = ", wantErr: "parse config file"},
		{name: "unknown backend", content: `backend = "cassandra"`, wantErr: "unknown backend"},
		{name: "bad timezone", content: `timezone = "Mars/Olympus"`, wantErr: "invalid timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.content)
			tt.flags.ConfigFile = path
			_, err := Load(tt.flags)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestDetectBackend(t *testing.T) {
	tests := map[string]constants.Backend{
		"postgres://u@h/db":         constants.BackendPostgres,
		"postgresql://u@h/db":       constants.BackendPostgres,
		"redis://localhost:6379":    constants.BackendRedis,
		"rediss://localhost:6380":   constants.BackendRedis,
		"mongodb://localhost":       constants.BackendMongo,
		"mongodb+srv://cluster/db":  constants.BackendMongo,
		"/tmp/habits.json":          constants.BackendJSON,
		":memory:":                  constants.BackendMemory,
		"~/.config/habitflow/h.db":  constants.BackendSQLite,
		"":                          constants.BackendSQLite,
	}
	for dsn, want := range tests {
		if got := DetectBackend(dsn); got != want {
			t.Errorf("DetectBackend(%q) = %q, want %q", dsn, got, want)
		}
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := Write(path, File{Backend: "json", Timezone: "UTC"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	s, err := Load(Flags{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.Backend != constants.BackendJSON || s.Timezone != "UTC" {
		t.Errorf("Load() after Write = %+v", s)
	}
	if s.DSN != filepath.Join(dir, "nested", "habitflow.json") {
		t.Errorf("DSN = %q, want default next to config", s.DSN)
	}
}
