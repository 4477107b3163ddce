package storage

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitflow/internal/logger"
)

// Apply writes ops through s. Stores implementing Batcher commit them
// atomically; other stores get the ops one by one in order, stopping at the
// first failure.
func Apply(ctx context.Context, s Store, ops ...Op) error {
	if len(ops) == 0 {
		return nil
	}
	if b, ok := s.(Batcher); ok {
		return b.Apply(ctx, ops)
	}

	logger.Debug("Store has no batch support, applying sequentially", "store", s.Describe(), "ops", len(ops))
	for i, op := range ops {
		var err error
		if op.Delete {
			err = s.Remove(ctx, op.Key)
		} else {
			err = s.Set(ctx, op.Key, op.Value)
		}
		if err != nil {
			return fmt.Errorf("op %d/%d on %s: %w", i+1, len(ops), op.Key, err)
		}
	}
	return nil
}
