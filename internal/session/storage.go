package session

import (
	"context"
	"errors"
	"sync"

	"github.com/go-redis/redis/v8"
)

// ErrNotFound is returned when no blob exists under the key
var ErrNotFound = errors.New("session: key not found")

// Storage is durable blob storage for session artifacts. Blobs live under
// fixed keys and carry JSON; there is no schema migration, corrupt data is
// treated as absent by the callers.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

type redisStorage struct {
	client *redis.Client
}

// NewRedisStorage backs session blobs with redis
func NewRedisStorage(client *redis.Client) Storage {
	return &redisStorage{client: client}
}

func (s *redisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (s *redisStorage) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *redisStorage) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// MemoryStorage is an in-process Storage, used in tests and as a fallback
// when redis is not configured.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte

	// Writes counts Set calls, so tests can assert reconciliation writes
	Writes int
	// FailWrites forces Set to fail, for storage degradation tests
	FailWrites bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (s *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (s *MemoryStorage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return errors.New("session: storage write failed")
	}
	s.Writes++
	out := make([]byte, len(value))
	copy(out, value)
	s.data[key] = out
	return nil
}

func (s *MemoryStorage) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
