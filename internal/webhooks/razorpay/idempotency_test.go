package razorpaywebhook

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	keys   map[string]string
	setErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{keys: map[string]string{}}
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, error) {
	return s.keys[key], nil
}

func (s *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if s.setErr != nil {
		return false, s.setErr
	}
	if _, exists := s.keys[key]; exists {
		return false, nil
	}
	s.keys[key] = fmt.Sprint(value)
	return true, nil
}

func (s *memoryStore) IdempotencyKey(scope, id string) string {
	return "pgroom:idempotency:" + scope + ":" + id
}

func (s *memoryStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.keys, key)
	}
	return nil
}

func TestIdempotencyGuard(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	guard, err := NewIdempotencyGuard(store, time.Hour, "razorpay")
	require.NoError(t, err)

	seen, err := guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)

	// a released event id may be retried
	require.NoError(t, guard.Delete(ctx, "evt_1"))
	seen, err = guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	_, err = guard.CheckAndMark(ctx, "")
	assert.Error(t, err)
}

func TestIdempotencyGuardStoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.setErr = fmt.Errorf("redis down")
	guard, err := NewIdempotencyGuard(store, time.Hour, "razorpay")
	require.NoError(t, err)

	_, err = guard.CheckAndMark(context.Background(), "evt_1")
	assert.Error(t, err)
}

func TestNewIdempotencyGuardValidation(t *testing.T) {
	_, err := NewIdempotencyGuard(nil, time.Hour, "razorpay")
	assert.Error(t, err)

	_, err = NewIdempotencyGuard(newMemoryStore(), -time.Second, "razorpay")
	assert.Error(t, err)

	_, err = NewIdempotencyGuard(newMemoryStore(), time.Hour, "")
	assert.Error(t, err)
}
