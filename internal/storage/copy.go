package storage

import (
	"context"
	"fmt"
)

// Copy writes every key of src into dst in one Apply and returns the number
// of keys copied. Keys only present in dst are left alone.
func Copy(ctx context.Context, dst, src Store) (int, error) {
	keys, err := src.ListKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list source keys: %w", err)
	}
	ops := make([]Op, 0, len(keys))
	for _, key := range keys {
		value, found, err := src.Get(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s from source: %w", key, err)
		}
		if found {
			ops = append(ops, SetOp(key, value))
		}
	}
	if err := Apply(ctx, dst, ops...); err != nil {
		return 0, err
	}
	return len(ops), nil
}
