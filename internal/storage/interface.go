package storage

import "context"

// Store is the key-value adapter every higher layer persists through.
// Values are opaque strings; atomicity is per key unless the
// implementation also satisfies Batcher.
type Store interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)

	// Describe returns a non-sensitive identifier for diagnostics
	Describe() string
}

// Op is a single write in a batch. Delete removes Key and ignores Value.
type Op struct {
	Key    string
	Value  string
	Delete bool
}

// SetOp builds a set operation
func SetOp(key, value string) Op {
	return Op{Key: key, Value: value}
}

// RemoveOp builds a remove operation
func RemoveOp(key string) Op {
	return Op{Key: key, Delete: true}
}

// Batcher is implemented by stores that can apply several writes atomically.
type Batcher interface {
	Apply(ctx context.Context, ops []Op) error
}
