// Package redis stores each key as a Redis string under a shared prefix.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/logger"
	"github.com/julianstephens/habitflow/internal/storage"
)

const scanBatch = 100

type Store struct {
	url    string
	prefix string
	client *goredis.Client
}

// New returns a store for a redis:// or rediss:// URL. Keys are stored
// under constants.RedisKeyPrefix.
func New(url string) *Store {
	return &Store{url: url, prefix: constants.RedisKeyPrefix}
}

// WithPrefix replaces the key prefix, letting tests share a server
func (s *Store) WithPrefix(prefix string) *Store {
	s.prefix = prefix
	return s
}

func (s *Store) connect() error {
	if s.client != nil {
		return nil
	}
	opt, err := goredis.ParseURL(s.url)
	if err != nil {
		return fmt.Errorf("invalid redis URL: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.DialTimeout = constants.ConnectTimeout
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := goredis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), constants.ConnectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	s.client = client
	logger.Debug("Connected to Redis", "addr", opt.Addr, "db", opt.DB)
	return nil
}

// Init connects. Redis needs no schema.
func (s *Store) Init() error {
	return s.connect()
}

func (s *Store) Load() error {
	return s.connect()
}

func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *Store) Describe() string {
	return "redis"
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s.client == nil {
		return "", false, fmt.Errorf("storage not loaded")
	}
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.client == nil {
		return fmt.Errorf("storage not loaded")
	}
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if s.client == nil {
		return fmt.Errorf("storage not loaded")
	}
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// ListKeys walks the keyspace with SCAN so large databases are not blocked
func (s *Store) ListKeys(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, fmt.Errorf("storage not loaded")
	}
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}
	return keys, nil
}

// Apply sends every op inside MULTI/EXEC
func (s *Store) Apply(ctx context.Context, ops []storage.Op) error {
	if s.client == nil {
		return fmt.Errorf("storage not loaded")
	}
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, op := range ops {
			if op.Delete {
				pipe.Del(ctx, s.key(op.Key))
			} else {
				pipe.Set(ctx, s.key(op.Key), op.Value, 0)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply batch: %w", err)
	}
	return nil
}
