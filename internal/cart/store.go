package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists carts by session id. Loading an unknown session yields an empty cart.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// RedisStore keeps each cart as a JSON value that expires after ttl of inactivity.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: "foodify:cart:", ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if s.ttl > 0 {
		// Reading keeps an active visitor's cart alive.
		_ = s.client.Expire(ctx, s.key(sessionID), s.ttl).Err()
	}

	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		// a garbled cart is dropped rather than blocking the visitor
		return &Cart{}, nil
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c *Cart) error {
	if c.Empty() {
		return s.Delete(ctx, sessionID)
	}
	c.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// MemoryStore is a process local Store.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string]Cart{}}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.carts[sessionID]
	c.Lines = append([]Line(nil), c.Lines...)
	return &c, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Empty() {
		delete(s.carts, sessionID)
		return nil
	}
	cp := *c
	cp.Lines = append([]Line(nil), c.Lines...)
	cp.UpdatedAt = time.Now().UTC()
	s.carts[sessionID] = cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
