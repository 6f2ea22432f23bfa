package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/proleague/league-loadtest/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	rules := []config.RateLimitRule{
		{Endpoint: "list_leagues", RequestsPerSecond: 10},
		{Endpoint: "spike_*", RequestsPerSecond: 5},
	}

	limiter := New(rules)

	assert.True(t, limiter.Limited("list_leagues"))
	assert.True(t, limiter.Limited("spike_matches"))
	assert.False(t, limiter.Limited("list_players"))

	// Unlimited tags never wait
	for i := 0; i < 100; i++ {
		waited, err := limiter.Wait(context.Background(), "list_players")
		assert.NoError(t, err)
		assert.Less(t, waited, 50*time.Millisecond)
	}
}

func TestFindLimiterPrefersLongestPattern(t *testing.T) {
	limiter := New([]config.RateLimitRule{
		{Endpoint: "*", RequestsPerSecond: 1},
		{Endpoint: "get_match_*", RequestsPerSecond: 2},
		{Endpoint: "get_*", RequestsPerSecond: 3},
	})

	assert.Same(t, limiter.limiters["get_match_*"], limiter.findLimiter("get_match_score"))
	assert.Same(t, limiter.limiters["get_*"], limiter.findLimiter("get_points_table"))
	assert.Same(t, limiter.limiters["*"], limiter.findLimiter("health"))
}

func TestLeakyBucketBehavior(t *testing.T) {
	limiter := New([]config.RateLimitRule{
		{Endpoint: "health", RequestsPerSecond: 10},
	})

	// First request passes immediately
	waited, err := limiter.Wait(context.Background(), "health")
	assert.NoError(t, err)
	assert.Less(t, waited, 50*time.Millisecond)

	// Four more requests at 10 req/s need about 400ms
	start := time.Now()
	for i := 0; i < 4; i++ {
		_, _ = limiter.Wait(context.Background(), "health")
	}
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 350*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestConcurrentRateLimiting(t *testing.T) {
	limiter := New([]config.RateLimitRule{
		{Endpoint: "list_matches", RequestsPerSecond: 20},
	})

	var wg sync.WaitGroup
	start := time.Now()

	// 11 concurrent requests share one bucket
	for i := 0; i < 11; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = limiter.Wait(context.Background(), "list_matches")
		}()
	}

	wg.Wait()

	// 10 intervals of 50ms
	assert.GreaterOrEqual(t, time.Since(start), 450*time.Millisecond)
}

func TestNonPositiveRateFallsBackToOne(t *testing.T) {
	limiter := New([]config.RateLimitRule{
		{Endpoint: "list_players", RequestsPerSecond: 0},
	})
	assert.True(t, limiter.Limited("list_players"))
}

func TestLimitedTags(t *testing.T) {
	limiter := New([]config.RateLimitRule{
		{Endpoint: "spike_*", RequestsPerSecond: 5},
		{Endpoint: "list_players", RequestsPerSecond: 1},
	})

	tags := []string{"list_leagues", "list_players", "spike_health", "spike_points"}
	assert.Equal(t, []string{"list_players", "spike_health", "spike_points"}, limiter.LimitedTags(tags))
	assert.Empty(t, New(nil).LimitedTags(tags))
}

func TestWaitReturnsOnCancelledContext(t *testing.T) {
	limiter := New([]config.RateLimitRule{
		{Endpoint: "*", RequestsPerSecond: 1},
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	for i := 0; i < 5; i++ {
		_, err := limiter.Wait(ctx, "list_leagues")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWaitUnblocksWhenContextEnds(t *testing.T) {
	limiter := New([]config.RateLimitRule{
		{Endpoint: "health", RequestsPerSecond: 1},
	})

	// Use up the first slot so the next wait has to queue
	_, err := limiter.Wait(context.Background(), "health")
	assert.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = limiter.Wait(ctx, "health")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}
