// Package redis stores research records in Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aishitdharwal/ai-agent/config"
	"github.com/aishitdharwal/ai-agent/store"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "research:"

func init() {
	store.Register("redis", func(ctx context.Context, cfg *config.Config) (store.Store, error) {
		s := New(Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.StateTTL,
		})
		if err := s.client.Ping(ctx).Err(); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return s, nil
	})
}

// Store keeps records as Redis strings plus an index set of request ids.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string        // Key prefix, default "research:"
	TTL      time.Duration // Expiration for records, default 0 (no expiration)
}

// New creates a store with its own client.
func New(opts Options) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewWithClient(client, opts.Prefix, opts.TTL)
}

// NewWithClient creates a store over an existing client.
func NewWithClient(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) stateKey(id string) string {
	return fmt.Sprintf("%sstate:%s", s.prefix, id)
}

func (s *Store) indexKey() string {
	return s.prefix + "states"
}

// Save stores the record and indexes its id.
func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	data, err := store.Marshal(rec)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.stateKey(rec.RequestID), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), rec.RequestID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save state to redis: %w", err)
	}
	return nil
}

// Load retrieves the record for requestID.
func (s *Store) Load(ctx context.Context, requestID string) (*store.Record, error) {
	if err := store.ValidateID(requestID); err != nil {
		return nil, err
	}

	data, err := s.client.Get(ctx, s.stateKey(requestID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", store.ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("failed to load state from redis: %w", err)
	}
	return store.Unmarshal(data)
}

// List returns the indexed ids, sorted. Ids whose record has expired are
// dropped from the index on the way.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list states: %w", err)
	}
	if len(ids) == 0 {
		return []string{}, nil
	}

	pipe := s.client.Pipeline()
	exists := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		exists[i] = pipe.Exists(ctx, s.stateKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to check states: %w", err)
	}

	live := make([]string, 0, len(ids))
	var stale []any
	for i, id := range ids {
		if exists[i].Val() > 0 {
			live = append(live, id)
		} else {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		s.client.SRem(ctx, s.indexKey(), stale...)
	}

	sort.Strings(live)
	return live, nil
}

// Delete removes the record and its index entry.
func (s *Store) Delete(ctx context.Context, requestID string) error {
	if err := store.ValidateID(requestID); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.stateKey(requestID))
	pipe.SRem(ctx, s.indexKey(), requestID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete state: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *Store) Close() error {
	return s.client.Close()
}
