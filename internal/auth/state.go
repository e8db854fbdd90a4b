package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnknownState is returned when an OAuth state is missing, expired or already used.
var ErrUnknownState = errors.New("unknown or expired oauth state")

// StateStore keeps the PKCE verifier of an in-flight OAuth login, keyed by state.
type StateStore interface {
	Save(ctx context.Context, state, verifier string, ttl time.Duration) error
	// Consume returns the verifier and forgets the state.
	Consume(ctx context.Context, state string) (string, error)
}

type memoryEntry struct {
	verifier  string
	expiresAt time.Time
}

// MemoryStateStore is a process-local StateStore for single-replica deployments.
type MemoryStateStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStateStore creates an empty in-process state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Save records the verifier for state until ttl elapses.
func (m *MemoryStateStore) Save(_ context.Context, state, verifier string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[state] = memoryEntry{verifier: verifier, expiresAt: now.Add(ttl)}
	return nil
}

// Consume returns and deletes the verifier for state.
func (m *MemoryStateStore) Consume(_ context.Context, state string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[state]
	delete(m.entries, state)
	if !ok || m.now().After(e.expiresAt) {
		return "", ErrUnknownState
	}
	return e.verifier, nil
}

// RedisStateStore shares OAuth state between replicas through Redis.
type RedisStateStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStateStore creates a Redis-backed state store.
func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{client: client, prefix: "oauth:state:"}
}

// Save stores the verifier with an expiry.
func (r *RedisStateStore) Save(ctx context.Context, state, verifier string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+state, verifier, ttl).Err()
}

// Consume fetches and deletes the verifier atomically.
func (r *RedisStateStore) Consume(ctx context.Context, state string) (string, error) {
	v, err := r.client.GetDel(ctx, r.prefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrUnknownState
	}
	if err != nil {
		return "", err
	}
	return v, nil
}
