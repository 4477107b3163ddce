// Package config merges habitflow's config.toml with command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/keyring"
	"github.com/julianstephens/habitflow/internal/logger"
	"github.com/julianstephens/habitflow/internal/utils"
)

// File is the on-disk config.toml.
type File struct {
	Backend  string `toml:"backend,omitempty"`
	DSN      string `toml:"dsn,omitempty"`
	Timezone string `toml:"timezone,omitempty"`
	Debug    bool   `toml:"debug,omitempty"`
	LogDir   string `toml:"log_dir,omitempty"`
}

// Flags carries the global command-line flags. Empty strings mean "not set".
type Flags struct {
	ConfigFile string
	Backend    string
	DSN        string
	Timezone   string
	Debug      bool
}

// Settings is the resolved configuration the commands run with.
type Settings struct {
	Backend   constants.Backend
	DSN       string
	Timezone  string
	Debug     bool
	LogDir    string
	ConfigDir string
	// FileFound reports whether a config file was read
	FileFound bool
}

// Location loads the configured timezone
func (s *Settings) Location() (*time.Location, error) {
	return utils.LoadLocation(s.Timezone)
}

// ConnLookup finds a stored connection string for a remote backend.
// Swapped out in tests.
var ConnLookup = keyring.GetConnectionString

// Load reads the config file named by flags (or the default one) and lays
// the flags over it.
func Load(flags Flags) (*Settings, error) {
	path := flags.ConfigFile
	if path == "" {
		path = constants.DefaultConfigFile
	}
	path = ExpandPath(path)

	file, meta, found, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	return resolve(flags, file, meta, found, filepath.Dir(path))
}

func loadFile(path string) (*File, toml.MetaData, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &File{}, toml.MetaData{}, false, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, false, fmt.Errorf("read config file %s: %w", path, err)
	}

	var f File
	meta, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, toml.MetaData{}, false, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		logger.Warn("Unknown keys in config file", "path", path, "keys", undecoded)
	}
	return &f, meta, true, nil
}

func resolve(flags Flags, file *File, meta toml.MetaData, found bool, configDir string) (*Settings, error) {
	s := &Settings{
		DSN:       pick(flags.DSN, meta.IsDefined("dsn"), file.DSN),
		Timezone:  pick(flags.Timezone, meta.IsDefined("timezone"), file.Timezone),
		Debug:     flags.Debug || file.Debug,
		LogDir:    ExpandPath(strings.TrimSpace(file.LogDir)),
		ConfigDir: configDir,
		FileFound: found,
	}

	backendName := pick(flags.Backend, meta.IsDefined("backend"), file.Backend)
	if backendName != "" {
		b, err := ParseBackend(backendName)
		if err != nil {
			return nil, err
		}
		s.Backend = b
	} else {
		s.Backend = DetectBackend(s.DSN)
	}

	if s.Timezone != "" && !utils.ValidateTimezone(s.Timezone) {
		return nil, fmt.Errorf("invalid timezone %q", s.Timezone)
	}

	if s.DSN == "" {
		dsn, err := defaultDSN(s.Backend, configDir)
		if err != nil {
			return nil, err
		}
		s.DSN = dsn
	}
	if s.Backend == constants.BackendSQLite || s.Backend == constants.BackendJSON {
		s.DSN = ExpandPath(s.DSN)
	}
	return s, nil
}

// pick returns the flag value when set, else the file value when the key was
// present in the file.
func pick(flag string, defined bool, fileValue string) string {
	if flag = strings.TrimSpace(flag); flag != "" {
		return flag
	}
	if defined {
		return strings.TrimSpace(fileValue)
	}
	return ""
}

func defaultDSN(backend constants.Backend, configDir string) (string, error) {
	switch backend {
	case constants.BackendSQLite:
		return filepath.Join(configDir, constants.AppName+".db"), nil
	case constants.BackendJSON:
		return filepath.Join(configDir, constants.AppName+".json"), nil
	case constants.BackendMemory:
		return "", nil
	}

	connStr, err := ConnLookup(backend)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("no connection string for %s: pass --dsn, set %s, or run 'habitflow keyring set'", backend, constants.ConnectionEnvVar)
		}
		return "", fmt.Errorf("failed to read connection string for %s: %w", backend, err)
	}
	return connStr, nil
}

// ParseBackend validates a backend name
func ParseBackend(name string) (constants.Backend, error) {
	switch b := constants.Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case constants.BackendSQLite, constants.BackendPostgres, constants.BackendRedis,
		constants.BackendMongo, constants.BackendJSON, constants.BackendMemory:
		return b, nil
	case "postgresql":
		return constants.BackendPostgres, nil
	case "mongodb":
		return constants.BackendMongo, nil
	default:
		return "", fmt.Errorf("unknown backend %q", name)
	}
}

// DetectBackend infers the backend from a DSN's scheme or extension,
// defaulting to sqlite.
func DetectBackend(dsn string) constants.Backend {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return constants.BackendPostgres
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		return constants.BackendRedis
	case strings.HasPrefix(dsn, "mongodb://"), strings.HasPrefix(dsn, "mongodb+srv://"):
		return constants.BackendMongo
	case strings.HasSuffix(dsn, ".json"):
		return constants.BackendJSON
	case dsn == ":memory:":
		return constants.BackendMemory
	default:
		return constants.BackendSQLite
	}
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// Write saves f as TOML at path, creating the directory if needed
func Write(path string, f File) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("write config file %s: %w", path, err)
	}
	defer out.Close()

	if err := toml.NewEncoder(out).Encode(f); err != nil {
		return fmt.Errorf("encode config file %s: %w", path, err)
	}
	return nil
}
