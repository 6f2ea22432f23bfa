package ratelimit

import (
	"context"
	"strings"
	"time"

	"github.com/proleague/league-loadtest/internal/config"
	"go.uber.org/ratelimit"
)

// Limiter caps the request rate per endpoint tag across all virtual users.
// Tags without a matching rule are not limited.
type Limiter struct {
	limiters map[string]ratelimit.Limiter
}

func New(rules []config.RateLimitRule) *Limiter {
	limiters := make(map[string]ratelimit.Limiter)

	for _, rule := range rules {
		rate := rule.RequestsPerSecond
		if rate <= 0 {
			rate = 1
		}
		limiters[rule.Endpoint] = ratelimit.New(rate, ratelimit.WithoutSlack)
	}

	return &Limiter{
		limiters: limiters,
	}
}

// Wait blocks until a request tagged tag may be sent and returns how long
// it waited. It returns ctx.Err() as soon as ctx is done; the slot the
// abandoned wait was queued for is still consumed.
func (l *Limiter) Wait(ctx context.Context, tag string) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	limiter := l.findLimiter(tag)
	if limiter == nil {
		// Unlimited buckets never block
		return 0, nil
	}

	start := time.Now()
	taken := make(chan struct{})
	go func() {
		limiter.Take()
		close(taken)
	}()

	select {
	case <-taken:
		return time.Since(start), nil
	case <-ctx.Done():
		return time.Since(start), ctx.Err()
	}
}

// Limited reports whether a rule applies to tag.
func (l *Limiter) Limited(tag string) bool {
	return l.findLimiter(tag) != nil
}

// LimitedTags returns the tags among tags that a rule applies to.
func (l *Limiter) LimitedTags(tags []string) []string {
	var limited []string
	for _, tag := range tags {
		if l.Limited(tag) {
			limited = append(limited, tag)
		}
	}
	return limited
}

func (l *Limiter) findLimiter(tag string) ratelimit.Limiter {
	// Exact match first
	if limiter, exists := l.limiters[tag]; exists {
		return limiter
	}

	// Longest prefix pattern wins, "*" matches everything.
	var (
		best    ratelimit.Limiter
		bestLen = -1
	)
	for pattern, limiter := range l.limiters {
		if !strings.HasSuffix(pattern, "*") {
			continue
		}
		prefix := strings.TrimSuffix(pattern, "*")
		if strings.HasPrefix(tag, prefix) && len(prefix) > bestLen {
			best, bestLen = limiter, len(prefix)
		}
	}

	return best
}
