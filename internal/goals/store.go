// Package goals stores a user's goals. Goals are linked to habits only
// through Habit.GoalID; this package does no referential checks.
package goals

import (
	"context"

	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/logger"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/session"
	"github.com/julianstephens/habitflow/internal/storage"
)

type Store struct {
	kv storage.Store
}

func New(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// List returns the user's goals, empty when missing or unreadable
func (s *Store) List(ctx context.Context, ns session.Namespace) []models.Goal {
	key, err := ns.Key(constants.DataGoals)
	if err != nil {
		logger.Warn("Failed to load goals", "error", err)
		return []models.Goal{}
	}
	var goals []models.Goal
	if _, err := storage.GetJSON(ctx, s.kv, key, &goals); err != nil {
		logger.Warn("Failed to load goals", "error", apperrors.Read(key, err))
		return []models.Goal{}
	}
	if goals == nil {
		return []models.Goal{}
	}
	return goals
}

// SaveOp encodes goals as a batchable write
func (s *Store) SaveOp(ns session.Namespace, goals []models.Goal) (storage.Op, error) {
	key, err := ns.Key(constants.DataGoals)
	if err != nil {
		return storage.Op{}, err
	}
	data, err := storage.EncodeJSON(goals)
	if err != nil {
		return storage.Op{}, apperrors.Write(key, err)
	}
	return storage.SetOp(key, data), nil
}

// SaveAll overwrites the collection
func (s *Store) SaveAll(ctx context.Context, ns session.Namespace, goals []models.Goal) error {
	op, err := s.SaveOp(ns, goals)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, op.Key, op.Value); err != nil {
		return apperrors.Write(op.Key, err)
	}
	return nil
}

// Add appends goal
func (s *Store) Add(ctx context.Context, ns session.Namespace, goal models.Goal) error {
	if _, err := ns.Key(constants.DataGoals); err != nil {
		return err
	}
	return s.SaveAll(ctx, ns, append(s.List(ctx, ns), goal))
}

// Get returns the goal with id or ErrNotFound
func (s *Store) Get(ctx context.Context, ns session.Namespace, id string) (models.Goal, error) {
	for _, g := range s.List(ctx, ns) {
		if g.ID == id {
			return g, nil
		}
	}
	return models.Goal{}, apperrors.ErrNotFound
}

// Update replaces the goal with the same id. Unknown ids are a no-op.
func (s *Store) Update(ctx context.Context, ns session.Namespace, goal models.Goal) error {
	if _, err := ns.Key(constants.DataGoals); err != nil {
		return err
	}
	goals := s.List(ctx, ns)
	for i := range goals {
		if goals[i].ID == goal.ID {
			goals[i] = goal
			return s.SaveAll(ctx, ns, goals)
		}
	}
	return nil
}

// Without returns goals minus id and whether it was present
func Without(goals []models.Goal, id string) ([]models.Goal, bool) {
	kept := make([]models.Goal, 0, len(goals))
	found := false
	for _, g := range goals {
		if g.ID == id {
			found = true
			continue
		}
		kept = append(kept, g)
	}
	return kept, found
}

// Remove deletes the goal with id. Unknown ids are a no-op.
func (s *Store) Remove(ctx context.Context, ns session.Namespace, id string) error {
	if _, err := ns.Key(constants.DataGoals); err != nil {
		return err
	}
	kept, found := Without(s.List(ctx, ns), id)
	if !found {
		return nil
	}
	return s.SaveAll(ctx, ns, kept)
}
