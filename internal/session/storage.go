package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is the durable copy of the station session.  Save replaces any
// prior session in a single operation so readers never observe a partial
// overwrite; Load returns (nil, nil) when no session is stored.
type Storage interface {
	Save(ctx context.Context, s *StaffSession) error
	Load(ctx context.Context) (*StaffSession, error)
	Delete(ctx context.Context) error
}

// sessionKey namespaces the station session in Redis.
const sessionKey = "checkin:staff_session"

// RedisStorage persists the session as a single JSON value under a fixed
// key.  SET is atomic, which gives the no-partial-overwrite guarantee, and
// the key TTL tracks the session expiry so an abandoned station does not
// hold a stale record forever.
type RedisStorage struct {
	client *redis.Client
}

// NewRedisStorage wraps an already-connected Redis client.
func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func (r *RedisStorage) Save(ctx context.Context, s *StaffSession) error {
	body, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	return r.client.Set(ctx, sessionKey, body, ttl).Err()
}

func (r *RedisStorage) Load(ctx context.Context) (*StaffSession, error) {
	body, err := r.client.Get(ctx, sessionKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s StaffSession
	if err := json.Unmarshal(body, &s); err != nil {
		// A corrupt record is unreadable forever; drop it rather than
		// failing every subsequent load.
		_ = r.client.Del(ctx, sessionKey).Err()
		return nil, nil
	}
	return &s, nil
}

func (r *RedisStorage) Delete(ctx context.Context) error {
	return r.client.Del(ctx, sessionKey).Err()
}

// MemoryStorage keeps the session in process memory only.  It is the
// fallback when Redis is unreachable at startup (the session then does not
// survive a restart) and the storage used in tests.
type MemoryStorage struct {
	mu sync.Mutex
	s  *StaffSession
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Save(ctx context.Context, s *StaffSession) error {
	cp := *s
	m.mu.Lock()
	m.s = &cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) Load(ctx context.Context) (*StaffSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return nil, nil
	}
	cp := *m.s
	return &cp, nil
}

func (m *MemoryStorage) Delete(ctx context.Context) error {
	m.mu.Lock()
	m.s = nil
	m.mu.Unlock()
	return nil
}
