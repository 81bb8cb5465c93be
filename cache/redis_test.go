package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CreativeUnicorns/sharedprefs"
)

// MockRedisClient is a mock implementation of redisClient.
type MockRedisClient struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	err    error
	closed bool
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	val, exists := m.data[key]
	if !exists {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	m.data[key] = string(value.([]byte))
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	_, _ = ctx.Deadline()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewIntResult(0, m.err)
	}
	count := 0
	for _, key := range keys {
		if _, exists := m.data[key]; exists {
			delete(m.data, key)
			count++
		}
	}
	return redis.NewIntResult(int64(count), nil)
}

func (m *MockRedisClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func TestRedisCache_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	mockClient := NewMockRedisClient()
	redisCache := &RedisCache{client: mockClient}

	key := "pref:ui:theme"
	value := []byte(`{"kind":"string","value":"dark"}`)

	if err := redisCache.Set(ctx, key, value, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if ttl := mockClient.ttls[key]; ttl != time.Minute {
		t.Errorf("Expected TTL to be passed through, got %v", ttl)
	}

	val, err := redisCache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(val) != string(value) {
		t.Errorf("Retrieved value mismatch: got %s, want %s", val, value)
	}

	if err := redisCache.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = redisCache.Get(ctx, key)
	if !errors.Is(err, sharedprefs.ErrNotFound) {
		t.Errorf("Expected ErrNotFound error, got: %v", err)
	}
}

func TestRedisCache_ServerErrors(t *testing.T) {
	ctx := context.Background()
	mockClient := NewMockRedisClient()
	mockClient.err = errors.New("connection refused")
	redisCache := &RedisCache{client: mockClient}

	if _, err := redisCache.Get(ctx, "k"); !errors.Is(err, sharedprefs.ErrCacheUnavailable) {
		t.Errorf("Expected ErrCacheUnavailable from Get, got: %v", err)
	}
	if err := redisCache.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, sharedprefs.ErrCacheUnavailable) {
		t.Errorf("Expected ErrCacheUnavailable from Set, got: %v", err)
	}
	if err := redisCache.Delete(ctx, "k"); !errors.Is(err, sharedprefs.ErrCacheUnavailable) {
		t.Errorf("Expected ErrCacheUnavailable from Delete, got: %v", err)
	}
}

func TestRedisCache_Close(t *testing.T) {
	mockClient := NewMockRedisClient()
	redisCache := &RedisCache{client: mockClient}

	if err := redisCache.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !mockClient.closed {
		t.Errorf("Expected the client to be closed")
	}
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache("127.0.0.1:1", "", 0)
	if !errors.Is(err, sharedprefs.ErrCacheUnavailable) {
		t.Errorf("Expected ErrCacheUnavailable for an unreachable server, got: %v", err)
	}
}
