// Package jsonfile keeps every key in one JSON document on disk.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/julianstephens/habitflow/internal/storage"
)

type document struct {
	Version int               `json:"version"`
	Data    map[string]string `json:"data"`
}

type Store struct {
	path string
	mu   sync.Mutex
	doc  *document
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.doc = &document{Version: 1, Data: make(map[string]string)}
	return s.save()
}

func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc != nil {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'habitflow init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if doc.Data == nil {
		doc.Data = make(map[string]string)
	}
	s.doc = doc
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = nil
	return nil
}

func (s *Store) Describe() string {
	return s.path
}

// save must be called with s.mu held (or before the store is shared)
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return "", false, fmt.Errorf("storage not loaded")
	}
	v, ok := s.doc.Data[key]
	return v, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.Apply(ctx, []storage.Op{storage.SetOp(key, value)})
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.Apply(ctx, []storage.Op{storage.RemoveOp(key)})
}

func (s *Store) ListKeys(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	keys := make([]string, 0, len(s.doc.Data))
	for k := range s.doc.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Apply mutates a copy and swaps it in only after the file write succeeds,
// so a failed save leaves memory and disk in agreement.
func (s *Store) Apply(ctx context.Context, ops []storage.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}

	next := &document{Version: s.doc.Version, Data: make(map[string]string, len(s.doc.Data)+len(ops))}
	for k, v := range s.doc.Data {
		next.Data[k] = v
	}
	for _, op := range ops {
		if op.Delete {
			delete(next.Data, op.Key)
		} else {
			next.Data[op.Key] = op.Value
		}
	}

	prev := s.doc
	s.doc = next
	if err := s.save(); err != nil {
		s.doc = prev
		return err
	}
	return nil
}
