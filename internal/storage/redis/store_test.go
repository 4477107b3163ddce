package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/storage/storagetest"
)

func TestNewInvalidURL(t *testing.T) {
	s := New("not-a-redis-url")
	if err := s.Init(); err == nil {
		t.Error("Init() with invalid URL succeeded")
	}
}

func TestOperationsBeforeLoad(t *testing.T) {
	s := New("redis://localhost:6379/0")
	ctx := context.Background()
	if _, _, err := s.Get(ctx, "k"); err == nil {
		t.Error("Get() before Load succeeded")
	}
	if _, err := s.ListKeys(ctx); err == nil {
		t.Error("ListKeys() before Load succeeded")
	}
	if err := s.Apply(ctx, []storage.Op{storage.SetOp("k", "v")}); err == nil {
		t.Error("Apply() before Load succeeded")
	}
}

func TestKeyPrefix(t *testing.T) {
	s := New("redis://localhost:6379/0")
	if got := s.key("loggedUser"); got != "habitflow:loggedUser" {
		t.Errorf("key() = %q", got)
	}
	if got := s.WithPrefix("t1:").key("loggedUser"); got != "t1:loggedUser" {
		t.Errorf("key() with custom prefix = %q", got)
	}
}

// TestStore_Integration runs the storage contract against a real server.
// Set REDIS_TEST_URL to run it, e.g. REDIS_TEST_URL="redis://localhost:6379/15"
func TestStore_Integration(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set, skipping Redis integration test")
	}

	n := 0
	storagetest.Run(t, func(t *testing.T) storage.Store {
		n++
		// A fresh prefix per subtest keeps them isolated on a shared server.
		store := New(url).WithPrefix(fmt.Sprintf("habitflow-test:%d:%d:", time.Now().UnixNano(), n))
		if err := store.Init(); err != nil {
			t.Fatalf("Failed to initialize store: %v", err)
		}
		t.Cleanup(func() {
			ctx := context.Background()
			keys, _ := store.ListKeys(ctx)
			for _, k := range keys {
				_ = store.Remove(ctx, k)
			}
			store.Close()
		})
		return store
	})
}
