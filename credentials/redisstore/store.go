// Package redisstore keeps credential records in Redis, one JSON document per identity.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-photos-proxy/credentials"
	"github.com/redis/go-redis/v9"
)

var _ credentials.Store = (*Store)(nil)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// Timeout bounds dial, read and write. Zero uses go-redis defaults.
	Timeout time.Duration
}

type Store struct {
	client  redis.UniversalClient
	prefix  string
	nowFunc func() time.Time
}

// New connects to Redis. The connection is lazy; an unreachable server surfaces on first use
// as credentials.ErrStoreUnavailable.
func New(opts Options) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
		MaxRetries:   1,
	})
	return NewWithClient(client, opts.Prefix)
}

// NewWithClient wraps an existing client.
func NewWithClient(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix, nowFunc: time.Now}
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) Get(ctx context.Context, id string) (*credentials.Record, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("[redisstore Get] %s: %w", id, credentials.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("[redisstore Get] %s: %v: %w", id, err, credentials.ErrStoreUnavailable)
	}

	var rec credentials.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("[redisstore Get] decoding %s: %v: %w", id, err, credentials.ErrStoreUnavailable)
	}
	return &rec, nil
}

// Upsert writes the record, keeping CreatedAt from any existing document. The read-then-write
// is not atomic; concurrent writers for one identity resolve as last write wins.
func (s *Store) Upsert(ctx context.Context, record *credentials.Record) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("[redisstore Upsert] record with an id is required")
	}

	stored := record.Clone()
	now := s.nowFunc()
	existing, err := s.Get(ctx, record.ID)
	switch {
	case err == nil:
		stored.CreatedAt = existing.CreatedAt
	case errors.Is(err, credentials.ErrNotFound):
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
	default:
		return err
	}
	stored.UpdatedAt = now

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("[redisstore Upsert] encoding %s: %w", record.ID, err)
	}
	if err := s.client.Set(ctx, s.key(record.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("[redisstore Upsert] %s: %v: %w", record.ID, err, credentials.ErrStoreUnavailable)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("[redisstore Ping] %v: %w", err, credentials.ErrStoreUnavailable)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
