// Package redisstore implements the storage capability on Redis.
//
// Conditional updates use the WATCH/MULTI/EXEC protocol: the watched keys
// are fenced before the read, and EXEC is rejected by the server if any of
// them changed, which surfaces as storage.ErrConflict. This is what gives
// wallet transfers their serialization guarantee; the client's connection
// pool checks out a dedicated connection for the duration of each watch.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/tunegrid/service_layer/internal/app/storage"
)

// Config configures the Redis client.
type Config struct {
	Addr     string
	DB       int
	PoolSize int
}

// Store is a Redis-backed storage.Store.
type Store struct {
	client *redis.Client
}

var _ storage.Store = (*Store)(nil)

// New creates a store and verifies connectivity with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Addr, err)
	}
	return &Store{client: client}, nil
}

// NewWithClient wraps an existing client, e.g. one shared with other
// subsystems or pointed at a test server.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", key, err)
	}
	return b, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

func (s *Store) SAdd(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := s.client.SAdd(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("redis SADD %s: %w", key, err)
	}
	return nil
}

func (s *Store) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis SMEMBERS %s: %w", key, err)
	}
	return members, nil
}

// Update performs one optimistic attempt over keys. Apply errors pass
// through unchanged; a concurrent write to any watched key yields
// storage.ErrConflict.
func (s *Store) Update(ctx context.Context, keys []string, apply storage.ApplyFunc) error {
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current := make(map[string][]byte, len(keys))
		for _, key := range keys {
			b, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return fmt.Errorf("redis GET %s under watch: %w", key, err)
			}
			current[key] = b
		}

		next, err := apply(current)
		if err != nil {
			return err
		}
		if len(next) == 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for key, value := range next {
				pipe.Set(ctx, key, value, 0)
			}
			return nil
		})
		return err
	}, keys...)

	if errors.Is(err, redis.TxFailedErr) {
		return storage.ErrConflict
	}
	return err
}
