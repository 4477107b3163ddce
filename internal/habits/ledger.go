package habits

import (
	"context"

	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/logger"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/session"
	"github.com/julianstephens/habitflow/internal/storage"
)

// Ledger returns the completion ledger, empty when missing or unreadable
func (s *Store) Ledger(ctx context.Context, ns session.Namespace) models.Ledger {
	key, err := ns.Key(constants.DataCompletedHabits)
	if err != nil {
		logger.Warn("Failed to load ledger", "error", err)
		return models.Ledger{}
	}
	ledger := models.Ledger{}
	if _, err := storage.GetJSON(ctx, s.kv, key, &ledger); err != nil {
		logger.Warn("Failed to load ledger", "error", apperrors.Read(key, err))
		return models.Ledger{}
	}
	if ledger == nil {
		ledger = models.Ledger{}
	}
	return ledger
}

// LedgerOp builds the write for ledger without applying it
func (s *Store) LedgerOp(ns session.Namespace, ledger models.Ledger) (storage.Op, error) {
	key, err := ns.Key(constants.DataCompletedHabits)
	if err != nil {
		return storage.Op{}, err
	}
	data, err := storage.EncodeJSON(ledger)
	if err != nil {
		return storage.Op{}, apperrors.Write(key, err)
	}
	return storage.SetOp(key, data), nil
}

// SaveLedger overwrites the ledger
func (s *Store) SaveLedger(ctx context.Context, ns session.Namespace, ledger models.Ledger) error {
	op, err := s.LedgerOp(ns, ledger)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, op.Key, op.Value); err != nil {
		return apperrors.Write(op.Key, err)
	}
	return nil
}

// MarkCompleted records id under today's date. Completing twice on the same
// day leaves a single entry and skips the write.
func (s *Store) MarkCompleted(ctx context.Context, ns session.Namespace, id string) error {
	if _, err := ns.Key(constants.DataCompletedHabits); err != nil {
		return err
	}
	ledger := s.Ledger(ctx, ns)
	if !ledger.Add(s.Today(), id) {
		logger.Debug("Habit already completed today", "id", id)
		return nil
	}
	return s.SaveLedger(ctx, ns, ledger)
}

// TodayCompletedIDs returns the ids recorded under today's date
func (s *Store) TodayCompletedIDs(ctx context.Context, ns session.Namespace) []string {
	ids := s.Ledger(ctx, ns)[s.Today()]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// CompletionDays counts the distinct dates on which id was completed
func (s *Store) CompletionDays(ctx context.Context, ns session.Namespace, id string) int {
	return s.Ledger(ctx, ns).DaysWith(id)
}
