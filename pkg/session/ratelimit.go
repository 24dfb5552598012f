package session

import (
	"sync"
	"time"
)

// RateLimiter is a sharded fixed-window rate limiter keyed by client
// identity. Window rollover resets the count to one and allows the
// request; a client is limited only once its count strictly exceeds the
// ceiling within the window.
type RateLimiter struct {
	shards [shardCount]*rlShard

	window time.Duration
	max    int
}

type rlShard struct {
	mu      sync.Mutex
	windows map[string]*rlWindow
}

type rlWindow struct {
	start time.Time
	count int
}

// NewRateLimiter creates a limiter allowing max requests per window.
func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	rl := &RateLimiter{window: window, max: max}
	for i := range rl.shards {
		rl.shards[i] = &rlShard{windows: make(map[string]*rlWindow)}
	}
	return rl
}

// Allow records one request for clientID and reports whether it is within
// the ceiling.
func (rl *RateLimiter) Allow(clientID string) bool {
	shard := rl.shards[shardIndex(clientID)]
	now := time.Now()

	shard.mu.Lock()
	defer shard.mu.Unlock()

	w, ok := shard.windows[clientID]
	if !ok || now.Sub(w.start) >= rl.window {
		shard.windows[clientID] = &rlWindow{start: now, count: 1}
		return true
	}

	w.count++
	return w.count <= rl.max
}

// Remaining reports how many requests clientID has left in the current
// window.
func (rl *RateLimiter) Remaining(clientID string) int {
	shard := rl.shards[shardIndex(clientID)]
	now := time.Now()

	shard.mu.Lock()
	defer shard.mu.Unlock()

	w, ok := shard.windows[clientID]
	if !ok || now.Sub(w.start) >= rl.window {
		return rl.max
	}
	if w.count >= rl.max {
		return 0
	}
	return rl.max - w.count
}

// Prune drops windows that rolled over, bounding memory for churny client
// populations. Call it on the gateway's cleanup cadence.
func (rl *RateLimiter) Prune() {
	now := time.Now()
	for _, shard := range rl.shards {
		shard.mu.Lock()
		for id, w := range shard.windows {
			if now.Sub(w.start) >= rl.window {
				delete(shard.windows, id)
			}
		}
		shard.mu.Unlock()
	}
}
