package store

import (
	"context"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/motorpool/pkg/domain"
)

// RedisStore implements ports.SnapshotStore on Redis. The whole snapshot
// document lives under a single key, same layout as the file backend.
type RedisStore struct {
	client *backend.Client
	key    string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKey sets the Redis key holding the snapshot document.
func WithKey(key string) RedisOption {
	return func(s *RedisStore) {
		s.key = key
	}
}

// NewRedis creates a Redis-backed store from connection parameters.
func NewRedis(address, password string, db int, opts ...RedisOption) *RedisStore {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewRedisFromClient(client, opts...)
}

// NewRedisFromClient creates a Redis-backed store from an existing client.
func NewRedisFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	store := &RedisStore{
		client: client,
		key:    "motorpool:snapshot",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Load retrieves the snapshot document. A missing key yields an empty
// snapshot.
func (s *RedisStore) Load(ctx context.Context) (domain.Snapshot, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == backend.Nil {
			return domain.NewSnapshot(), nil
		}
		return domain.Snapshot{}, fmt.Errorf("get snapshot from redis: %w", err)
	}

	snap, err := Decode([]byte(val))
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("redis key %s: %w", s.key, err)
	}
	return snap, nil
}

// Save overwrites the snapshot document. A SET is atomic on the Redis side,
// so readers never observe a torn document.
func (s *RedisStore) Save(ctx context.Context, snap domain.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot to redis: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
