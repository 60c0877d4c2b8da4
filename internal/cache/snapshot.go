// Package cache mirrors per-user dashboard state into Redis so a client can
// rehydrate its view without replaying the source tables. Writes are
// last-writer-wins; the database remains authoritative.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/canine-care-service/internal/domain"
)

// ErrMiss is returned when no snapshot exists for the requested key.
var ErrMiss = errors.New("cache: miss")

// store is the raw JSON key-value surface the snapshot cache is built on.
type store interface {
	set(ctx context.Context, key string, payload []byte) error
	get(ctx context.Context, key string) ([]byte, error)
	delete(ctx context.Context, key string) error
}

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (s *redisStore) set(ctx context.Context, key string, payload []byte) error {
	return s.client.Set(ctx, key, payload, s.ttl).Err()
}

func (s *redisStore) get(ctx context.Context, key string) ([]byte, error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return payload, err
}

func (s *redisStore) delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// memoryStore keeps snapshots in a map. It backs deployments without Redis
// and the test suite; entries never expire.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func (s *memoryStore) set(_ context.Context, key string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = payload
	return nil
}

func (s *memoryStore) get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return payload, nil
}

func (s *memoryStore) delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// SnapshotCache stores the per-user dashboard snapshots.
type SnapshotCache struct {
	store store
}

// NewSnapshotCache wraps a redis client. A nil client falls back to an
// in-process map, so selection state still works without Redis.
func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if client == nil {
		return NewMemorySnapshotCache()
	}
	return &SnapshotCache{store: &redisStore{client: client, ttl: ttl}}
}

// NewMemorySnapshotCache builds a map-backed cache.
func NewMemorySnapshotCache() *SnapshotCache {
	return &SnapshotCache{store: &memoryStore{entries: make(map[string][]byte)}}
}

func dogsKey(userID string) string {
	return fmt.Sprintf("dogs:%s", userID)
}

func selectedDogKey(userID string) string {
	return fmt.Sprintf("selected_dog:%s", userID)
}

func pendingChangeKey(userID string) string {
	return fmt.Sprintf("pending_change:%s", userID)
}

func (c *SnapshotCache) set(ctx context.Context, key string, value any) error {
	if c == nil || c.store == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.store.set(ctx, key, payload)
}

func (c *SnapshotCache) get(ctx context.Context, key string, out any) error {
	if c == nil || c.store == nil {
		return ErrMiss
	}
	payload, err := c.store.get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, out)
}

func (c *SnapshotCache) delete(ctx context.Context, key string) error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.delete(ctx, key)
}

// PutDogs replaces the cached roster for a user.
func (c *SnapshotCache) PutDogs(ctx context.Context, userID string, dogs []domain.Dog) error {
	return c.set(ctx, dogsKey(userID), dogs)
}

// GetDogs loads the cached roster, or ErrMiss.
func (c *SnapshotCache) GetDogs(ctx context.Context, userID string) ([]domain.Dog, error) {
	var dogs []domain.Dog
	if err := c.get(ctx, dogsKey(userID), &dogs); err != nil {
		return nil, err
	}
	return dogs, nil
}

// InvalidateDogs drops the cached roster after a write.
func (c *SnapshotCache) InvalidateDogs(ctx context.Context, userID string) error {
	return c.delete(ctx, dogsKey(userID))
}

// PutSelectedDog records which dog the user's dashboard is focused on.
func (c *SnapshotCache) PutSelectedDog(ctx context.Context, userID, dogID string) error {
	return c.set(ctx, selectedDogKey(userID), dogID)
}

// GetSelectedDog returns the focused dog ID, or ErrMiss.
func (c *SnapshotCache) GetSelectedDog(ctx context.Context, userID string) (string, error) {
	var dogID string
	if err := c.get(ctx, selectedDogKey(userID), &dogID); err != nil {
		return "", err
	}
	return dogID, nil
}

// ClearSelectedDog removes the focus marker.
func (c *SnapshotCache) ClearSelectedDog(ctx context.Context, userID string) error {
	return c.delete(ctx, selectedDogKey(userID))
}

// PutPendingChange stores an unconfirmed plan change awaiting the provider
// webhook.
func (c *SnapshotCache) PutPendingChange(ctx context.Context, userID string, change domain.PendingPlanChange) error {
	return c.set(ctx, pendingChangeKey(userID), change)
}

// GetPendingChange loads the unconfirmed plan change, or ErrMiss.
func (c *SnapshotCache) GetPendingChange(ctx context.Context, userID string) (*domain.PendingPlanChange, error) {
	var change domain.PendingPlanChange
	if err := c.get(ctx, pendingChangeKey(userID), &change); err != nil {
		return nil, err
	}
	return &change, nil
}

// ClearPendingChange removes the marker once the change is confirmed or
// abandoned.
func (c *SnapshotCache) ClearPendingChange(ctx context.Context, userID string) error {
	return c.delete(ctx, pendingChangeKey(userID))
}
