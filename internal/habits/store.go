// Package habits stores a user's habits and the date-indexed completion
// ledger, and computes period statistics over them.
package habits

import (
	"context"

	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/logger"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/session"
	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/utils"
)

// Store reads and writes one user's habits and ledger. Every method takes the
// resolved session namespace.
type Store struct {
	kv    storage.Store
	clock utils.Clock
}

func New(kv storage.Store, clock utils.Clock) *Store {
	if clock == nil {
		clock = utils.SystemClock(nil)
	}
	return &Store{kv: kv, clock: clock}
}

// Today returns the current local date key
func (s *Store) Today() string {
	return utils.DateKey(s.clock())
}

// List returns the user's habits. Missing or unreadable data yields an
// empty list; the failure is logged.
func (s *Store) List(ctx context.Context, ns session.Namespace) []models.Habit {
	habits, err := s.Load(ctx, ns)
	if err != nil {
		logger.Warn("Failed to load habits", "error", err)
		return []models.Habit{}
	}
	return habits
}

// Load returns the user's habits or the read error. Callers that write back
// something derived from the list use it instead of List.
func (s *Store) Load(ctx context.Context, ns session.Namespace) ([]models.Habit, error) {
	key, err := ns.Key(constants.DataHabits)
	if err != nil {
		return nil, err
	}
	var habits []models.Habit
	if _, err := storage.GetJSON(ctx, s.kv, key, &habits); err != nil {
		return nil, apperrors.Read(key, err)
	}
	if habits == nil {
		habits = []models.Habit{}
	}
	return habits, nil
}

// HabitsOp encodes habits as a write for the namespace
func (s *Store) HabitsOp(ns session.Namespace, habits []models.Habit) (storage.Op, error) {
	key, err := ns.Key(constants.DataHabits)
	if err != nil {
		return storage.Op{}, err
	}
	data, err := storage.EncodeJSON(habits)
	if err != nil {
		return storage.Op{}, apperrors.Write(key, err)
	}
	return storage.SetOp(key, data), nil
}

func (s *Store) save(ctx context.Context, ns session.Namespace, habits []models.Habit) error {
	op, err := s.HabitsOp(ns, habits)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, op.Key, op.Value); err != nil {
		return apperrors.Write(op.Key, err)
	}
	return nil
}

// Get returns the habit with id or ErrNotFound
func (s *Store) Get(ctx context.Context, ns session.Namespace, id string) (models.Habit, error) {
	for _, h := range s.List(ctx, ns) {
		if h.ID == id {
			return h, nil
		}
	}
	return models.Habit{}, apperrors.ErrNotFound
}

// Add appends habit to the collection
func (s *Store) Add(ctx context.Context, ns session.Namespace, habit models.Habit) error {
	if _, err := ns.Key(constants.DataHabits); err != nil {
		return err
	}
	return s.save(ctx, ns, append(s.List(ctx, ns), habit))
}

// Update replaces the habit with the same id. Unknown ids are a no-op.
func (s *Store) Update(ctx context.Context, ns session.Namespace, habit models.Habit) error {
	if _, err := ns.Key(constants.DataHabits); err != nil {
		return err
	}
	habits := s.List(ctx, ns)
	for i := range habits {
		if habits[i].ID == habit.ID {
			habits[i] = habit
			return s.save(ctx, ns, habits)
		}
	}
	logger.Debug("Update of unknown habit ignored", "id", habit.ID)
	return nil
}

// RemoveOps builds the writes that delete habit id and scrub it from the
// ledger, so callers can add their own ops to the same batch.
func (s *Store) RemoveOps(ctx context.Context, ns session.Namespace, id string) ([]storage.Op, error) {
	if _, err := ns.Key(constants.DataHabits); err != nil {
		return nil, err
	}

	habits := s.List(ctx, ns)
	kept := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	setOp, err := s.HabitsOp(ns, kept)
	if err != nil {
		return nil, err
	}
	ops := []storage.Op{setOp}

	ledger := s.Ledger(ctx, ns)
	if ledger.RemoveHabit(id) {
		op, err := s.LedgerOp(ns, ledger)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Remove deletes the habit and removes its id from every ledger date in one
// batch.
func (s *Store) Remove(ctx context.Context, ns session.Namespace, id string) error {
	ops, err := s.RemoveOps(ctx, ns, id)
	if err != nil {
		return err
	}
	if err := storage.Apply(ctx, s.kv, ops...); err != nil {
		return apperrors.Write(ops[0].Key, err)
	}
	return nil
}
