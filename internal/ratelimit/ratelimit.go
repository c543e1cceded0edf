// Package ratelimit throttles outgoing API calls per resource group using a
// token bucket for each group.
package ratelimit

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Throttle holds one token bucket per resource group ("tobaccos", "mixes", ...).
// A Throttle built with a zero rate lets everything through.
type Throttle struct {
	mu      sync.RWMutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	burst   int
}

// New creates a throttle allowing rps requests per second per group with the
// given burst. rps <= 0 disables throttling.
func New(rps float64, burst int) *Throttle {
	if burst <= 0 {
		burst = 1
	}
	return &Throttle{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(rps),
		burst:   burst,
	}
}

// Enabled reports whether the throttle limits anything.
func (t *Throttle) Enabled() bool {
	return t != nil && t.limit > 0
}

// Allow reports whether a call for group may go out now without waiting.
func (t *Throttle) Allow(group string) bool {
	if !t.Enabled() {
		return true
	}
	return t.bucket(group).Allow()
}

// Wait blocks until a call for group may go out or ctx is done.
func (t *Throttle) Wait(ctx context.Context, group string) error {
	if !t.Enabled() {
		return ctx.Err()
	}
	return t.bucket(group).Wait(ctx)
}

// Groups returns the groups seen so far.
func (t *Throttle) Groups() []string {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	groups := make([]string, 0, len(t.buckets))
	for g := range t.buckets {
		groups = append(groups, g)
	}
	return groups
}

func (t *Throttle) bucket(group string) *rate.Limiter {
	t.mu.RLock()
	b, ok := t.buckets[group]
	t.mu.RUnlock()
	if ok {
		return b
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if b, ok = t.buckets[group]; ok {
		return b
	}
	b = rate.NewLimiter(t.limit, t.burst)
	t.buckets[group] = b
	return b
}

// GroupOf returns the resource group of an API endpoint: its first path
// segment without query. "/tobaccos/5?x=1" belongs to "tobaccos".
func GroupOf(endpoint string) string {
	endpoint, _, _ = strings.Cut(endpoint, "?")
	endpoint = strings.TrimPrefix(endpoint, "/")
	group, _, _ := strings.Cut(endpoint, "/")
	if group == "" {
		return "root"
	}
	return group
}
