package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// GetJSON loads key into dst. found is false when the key is absent, in which
// case dst is left untouched.
func GetJSON(ctx context.Context, s Store, key string, dst interface{}) (bool, error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return true, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return true, nil
}

// EncodeJSON serializes v for storage
func EncodeJSON(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize: %w", err)
	}
	return string(data), nil
}

// SetJSON serializes v and stores it under key
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := EncodeJSON(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data)
}
