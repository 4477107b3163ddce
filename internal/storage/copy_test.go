package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/storage/memory"
)

// sequentialStore embeds only the Store interface, hiding memory.Store's
// Apply so storage.Apply falls back to one write at a time.
type sequentialStore struct {
	storage.Store
	failOn string
}

func (s *sequentialStore) Set(ctx context.Context, key, value string) error {
	if key == s.failOn {
		return errors.New("boom")
	}
	return s.Store.Set(ctx, key, value)
}

func contents(t *testing.T, s storage.Store) map[string]string {
	t.Helper()
	ctx := context.Background()
	keys, err := s.ListKeys(ctx)
	if err != nil {
		t.Fatalf("ListKeys failed: %v", err)
	}
	out := map[string]string{}
	for _, k := range keys {
		v, _, err := s.Get(ctx, k)
		if err != nil {
			t.Fatalf("Get(%s) failed: %v", k, err)
		}
		out[k] = v
	}
	return out
}

func TestCopy(t *testing.T) {
	ctx := context.Background()
	src := memory.NewStore()
	dst := memory.NewStore()
	for k, v := range map[string]string{"a": "1", "b": "2"} {
		if err := src.Set(ctx, k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := dst.Set(ctx, "keep", "x"); err != nil {
		t.Fatal(err)
	}

	n, err := storage.Copy(ctx, dst, src)
	if err != nil {
		t.Fatalf("Copy failed: %v", err)
	}
	if n != 2 {
		t.Errorf("copied %d keys, want 2", n)
	}
	want := map[string]string{"a": "1", "b": "2", "keep": "x"}
	if diff := cmp.Diff(want, contents(t, dst)); diff != "" {
		t.Errorf("destination mismatch (-want +got):\n%s", diff)
	}
}

func TestApplySequentialFallback(t *testing.T) {
	ctx := context.Background()
	s := &sequentialStore{Store: memory.NewStore(), failOn: "c"}
	if err := s.Store.Set(ctx, "gone", "1"); err != nil {
		t.Fatal(err)
	}

	err := storage.Apply(ctx, s,
		storage.SetOp("a", "1"),
		storage.RemoveOp("gone"),
		storage.SetOp("c", "3"),
		storage.SetOp("d", "4"),
	)
	if err == nil {
		t.Fatal("expected error from failing op")
	}
	// ops before the failure are applied, ops after are not
	if diff := cmp.Diff(map[string]string{"a": "1"}, contents(t, s)); diff != "" {
		t.Errorf("store mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyNoOps(t *testing.T) {
	if err := storage.Apply(context.Background(), memory.NewStore()); err != nil {
		t.Errorf("Apply with no ops failed: %v", err)
	}
}
