package server

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCounter mimics INCR, EXPIRE and TTL against a settable clock.
type fakeCounter struct {
	mu      sync.Mutex
	now     time.Time
	counts  map[string]int64
	expires map[string]time.Time
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{
		now:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		counts:  make(map[string]int64),
		expires: make(map[string]time.Time),
	}
}

func (f *fakeCounter) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fakeCounter) evictLocked(key string) {
	if at, ok := f.expires[key]; ok && !f.now.Before(at) {
		delete(f.counts, key)
		delete(f.expires, key)
	}
}

func (f *fakeCounter) Incr(_ context.Context, key string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evictLocked(key)
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeCounter) Expire(_ context.Context, key string, d time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evictLocked(key)
	if _, ok := f.counts[key]; !ok {
		return redis.NewBoolResult(false, nil)
	}
	f.expires[key] = f.now.Add(d)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCounter) TTL(_ context.Context, key string) *redis.DurationCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.evictLocked(key)
	if _, ok := f.counts[key]; !ok {
		return redis.NewDurationResult(-2, nil)
	}
	at, ok := f.expires[key]
	if !ok {
		return redis.NewDurationResult(-1, nil)
	}
	return redis.NewDurationResult(at.Sub(f.now), nil)
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	store := newFakeCounter()
	l := &RedisLimiter{client: store, limit: 2, window: time.Minute}
	ctx := context.Background()

	allow := func() bool {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		return ok
	}

	assert.True(t, allow())
	assert.True(t, allow())
	assert.False(t, allow())

	// Requests inside the window do not push its end back.
	for i := 0; i < 5; i++ {
		store.advance(10 * time.Second)
		assert.False(t, allow())
	}
	store.advance(11 * time.Second)
	assert.True(t, allow(), "a new window starts after the first one ends")

	ok, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok, "keys are counted separately")
}

func TestRedisLimiter_RepairsMissingTTL(t *testing.T) {
	store := newFakeCounter()
	store.counts["rate_limit:10.0.0.1"] = 5
	l := &RedisLimiter{client: store, limit: 2, window: time.Minute}

	ok, err := l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	store.advance(time.Minute)
	ok, err = l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)
}
