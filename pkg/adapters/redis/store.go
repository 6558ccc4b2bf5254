// Package redis implements ports.WorkflowStore on Redis. It exists for
// local development setups that run without the hosted workflow service;
// the production path is pkg/adapters/rest.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/ports"
)

// Store implements ports.WorkflowStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ ports.WorkflowStore = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithTTL sets an expiration on stored workflows (default: none).
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix (default "skein:flow:").
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Store with its own Redis client.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "skein:flow:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the workflow and registers it in the index set.
func (s *Store) Save(ctx context.Context, w domain.Workflow) error {
	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(w.ID), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), w.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get retrieves one workflow.
func (s *Store) Get(ctx context.Context, id string) (domain.Workflow, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.Workflow{}, domain.ErrWorkflowNotFound
		}
		return domain.Workflow{}, fmt.Errorf("failed to load from redis: %w", err)
	}

	var w domain.Workflow
	if err := json.Unmarshal([]byte(val), &w); err != nil {
		return domain.Workflow{}, fmt.Errorf("failed to unmarshal workflow %s: %w", id, err)
	}
	return w, nil
}

// List returns every indexed workflow. Index entries whose value expired
// are pruned lazily.
func (s *Store) List(ctx context.Context) ([]domain.Workflow, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	out := make([]domain.Workflow, 0, len(ids))
	for _, id := range ids {
		w, err := s.Get(ctx, id)
		if errors.Is(err, domain.ErrWorkflowNotFound) {
			s.client.SRem(ctx, s.indexKey(), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

// Delete removes a workflow and its index entry. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.SRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}
