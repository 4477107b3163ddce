// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/habitflow/internal/storage"
)

// Factory returns a fresh, initialized, empty store. Cleanup is the
// factory's job (t.Cleanup).
type Factory func(t *testing.T) storage.Store

// Run exercises the storage.Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		s := newStore(t)
		v, found, err := s.Get(ctx, "absent")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if found || v != "" {
			t.Errorf("Get(absent) = %q, %v; want empty, false", v, found)
		}
	})

	t.Run("set get overwrite", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set(ctx, "loggedUser", `{"email":"a@b.c"}`); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := s.Set(ctx, "loggedUser", `{"email":"d@e.f"}`); err != nil {
			t.Fatalf("Set() overwrite error = %v", err)
		}
		v, found, err := s.Get(ctx, "loggedUser")
		if err != nil || !found {
			t.Fatalf("Get() = %q, %v, %v", v, found, err)
		}
		if v != `{"email":"d@e.f"}` {
			t.Errorf("Get() = %q, want overwritten value", v)
		}
	})

	t.Run("remove", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set(ctx, "k", "v"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		if err := s.Remove(ctx, "k"); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if _, found, _ := s.Get(ctx, "k"); found {
			t.Error("key still present after Remove()")
		}
		if err := s.Remove(ctx, "k"); err != nil {
			t.Errorf("Remove() of missing key error = %v", err)
		}
	})

	t.Run("list keys", func(t *testing.T) {
		s := newStore(t)
		want := []string{"registeredUsers", "user_a@b.c_goals", "user_a@b.c_habits"}
		for _, k := range want {
			if err := s.Set(ctx, k, "[]"); err != nil {
				t.Fatalf("Set(%s) error = %v", k, err)
			}
		}
		got, err := s.ListKeys(ctx)
		if err != nil {
			t.Fatalf("ListKeys() error = %v", err)
		}
		sort.Strings(got)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("ListKeys() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("apply", func(t *testing.T) {
		s := newStore(t)
		if err := s.Set(ctx, "gone", "x"); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		err := storage.Apply(ctx, s,
			storage.SetOp("a", "1"),
			storage.SetOp("b", "2"),
			storage.RemoveOp("gone"),
		)
		if err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		for k, want := range map[string]string{"a": "1", "b": "2"} {
			if v, _, _ := s.Get(ctx, k); v != want {
				t.Errorf("Get(%s) = %q, want %q", k, v, want)
			}
		}
		if _, found, _ := s.Get(ctx, "gone"); found {
			t.Error("removed key survived Apply()")
		}
	})
}
