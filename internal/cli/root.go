package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/julianstephens/habitflow/internal/config"
	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/storage/jsonfile"
	"github.com/julianstephens/habitflow/internal/storage/memory"
	"github.com/julianstephens/habitflow/internal/storage/mongo"
	"github.com/julianstephens/habitflow/internal/storage/postgres"
	"github.com/julianstephens/habitflow/internal/storage/redis"
	"github.com/julianstephens/habitflow/internal/storage/sqlite"
	"github.com/julianstephens/habitflow/internal/tracker"
	"github.com/julianstephens/habitflow/internal/utils"
)

type Context struct {
	Store    storage.Store
	Tracker  *tracker.Tracker
	Settings *config.Settings
	Clock    utils.Clock
	Out      io.Writer
	In       io.Reader
	// ConfigFile is where init writes config.toml
	ConfigFile string
}

func (c *Context) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// OpenStore builds the store for the configured backend. The store is not
// loaded.
func OpenStore(s *config.Settings) (storage.Store, error) {
	switch s.Backend {
	case constants.BackendSQLite:
		return sqlite.NewStore(s.DSN), nil
	case constants.BackendPostgres:
		if _, err := postgres.ValidateConnString(s.DSN); err != nil {
			return nil, err
		}
		return postgres.New(s.DSN), nil
	case constants.BackendRedis:
		return redis.New(s.DSN), nil
	case constants.BackendMongo:
		return mongo.New(s.DSN), nil
	case constants.BackendJSON:
		return jsonfile.NewStore(s.DSN), nil
	case constants.BackendMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", s.Backend)
	}
}

// NeedsLoad reports whether a command runs against a loaded store
func NeedsLoad(command string) bool {
	name := strings.Fields(command)
	if len(name) == 0 {
		return true
	}
	switch name[0] {
	case "init", "keyring", "doctor":
		return false
	}
	return true
}

// shortID is the display form of a uuid
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// findHabit resolves ref against the user's habits by exact id, id prefix or
// case-insensitive name.
func (c *Context) findHabit(ctx context.Context, ref string) (models.Habit, error) {
	ns, err := c.Tracker.Sessions.Begin(ctx)
	if err != nil {
		return models.Habit{}, err
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Habit{}, apperrors.Validation("habit id or name is required")
	}

	all := c.Tracker.Habits.List(ctx, ns)
	var matches []models.Habit
	for _, h := range all {
		if h.ID == ref {
			return h, nil
		}
		if strings.HasPrefix(h.ID, ref) || strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}

	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit %q: %w", ref, apperrors.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		var names []string
		for _, h := range matches {
			names = append(names, fmt.Sprintf("%s (%s)", h.Name, shortID(h.ID)))
		}
		return models.Habit{}, fmt.Errorf("%q matches several habits: %s", ref, strings.Join(names, ", "))
	}
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}
