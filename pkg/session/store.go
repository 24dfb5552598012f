package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"
)

// Store is the persistence boundary the engine talks to. The in-memory
// store serves single-node deployments; the Redis store (redis.go) serves
// multi-node ones. Both honor the same semantics: lazy TTL expiry,
// monotone intelligence merge, at-most-once escalation.
type Store interface {
	AppendMessage(ctx context.Context, id, text string) (turns int, err error)
	Turns(ctx context.Context, id string) (int, error)
	MergeIntelligence(ctx context.Context, id string, intel Intelligence) error
	Snapshot(ctx context.Context, id string) (Intelligence, error)
	MarkEscalated(ctx context.Context, id string) (bool, error)
	LikelyAutomated(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (StoreStats, error)
	Close() error
}

// StoreStats contains session store statistics for the admin surface.
type StoreStats struct {
	Sessions      int `json:"sessions"`
	Escalated     int `json:"escalated"`
	TotalMessages int `json:"total_messages"`
}

// shardCount must be a power of two.
const shardCount = 16

type storeShard struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// MemoryStore is the sharded in-memory session store. Suitable for
// single-node deployments; a background sweep reclaims expired sessions
// and every access also checks expiry lazily, so a stale session is never
// observed even between sweeps.
type MemoryStore struct {
	shards [shardCount]*storeShard

	ttl             time.Duration
	cleanupInterval time.Duration

	stopCleanup chan struct{}
	cleanupOnce sync.Once
}

// NewMemoryStore creates a store and starts its cleanup goroutine.
func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	s := &MemoryStore{
		ttl:             ttl,
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}
	for i := range s.shards {
		s.shards[i] = &storeShard{sessions: make(map[string]*Session)}
	}

	go s.cleanupLoop()

	return s
}

func shardIndex(id string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return h.Sum32() & (shardCount - 1)
}

// GetOrCreate returns the live session for id, recreating it fresh when
// the previous one sat idle past the TTL. The second return reports
// whether a new session was created.
func (s *MemoryStore) GetOrCreate(id string) (*Session, bool) {
	shard := s.shards[shardIndex(id)]
	now := time.Now()

	shard.mu.RLock()
	sess, ok := shard.sessions[id]
	shard.mu.RUnlock()

	if ok && !s.expired(sess, now) {
		sess.touch(now)
		return sess, false
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()

	// Re-check under the write lock; another goroutine may have raced us.
	if sess, ok = shard.sessions[id]; ok && !s.expired(sess, now) {
		sess.touch(now)
		return sess, false
	}

	sess = newSession(id, now)
	shard.sessions[id] = sess
	return sess, true
}

// Get returns the live session for id, or nil when absent or expired.
func (s *MemoryStore) Get(id string) *Session {
	shard := s.shards[shardIndex(id)]

	shard.mu.RLock()
	defer shard.mu.RUnlock()

	sess, ok := shard.sessions[id]
	if !ok || s.expired(sess, time.Now()) {
		return nil
	}
	return sess
}

func (s *MemoryStore) expired(sess *Session, now time.Time) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return now.Sub(sess.LastActiveAt) > s.ttl
}

// AppendMessage implements Store.
func (s *MemoryStore) AppendMessage(_ context.Context, id, text string) (int, error) {
	sess, _ := s.GetOrCreate(id)
	return sess.Append(text), nil
}

// Turns implements Store. Expired or unknown sessions report zero.
func (s *MemoryStore) Turns(_ context.Context, id string) (int, error) {
	sess := s.Get(id)
	if sess == nil {
		return 0, nil
	}
	return sess.Turns(), nil
}

// MergeIntelligence implements Store.
func (s *MemoryStore) MergeIntelligence(_ context.Context, id string, intel Intelligence) error {
	sess, _ := s.GetOrCreate(id)
	sess.Merge(intel)
	return nil
}

// Snapshot implements Store.
func (s *MemoryStore) Snapshot(_ context.Context, id string) (Intelligence, error) {
	sess, _ := s.GetOrCreate(id)
	return sess.Snapshot(), nil
}

// MarkEscalated implements Store.
func (s *MemoryStore) MarkEscalated(_ context.Context, id string) (bool, error) {
	sess, _ := s.GetOrCreate(id)
	return sess.MarkEscalated(), nil
}

// LikelyAutomated implements Store.
func (s *MemoryStore) LikelyAutomated(_ context.Context, id string) (bool, error) {
	sess, _ := s.GetOrCreate(id)
	return sess.LikelyAutomated(), nil
}

// Stats implements Store.
func (s *MemoryStore) Stats(_ context.Context) (StoreStats, error) {
	var stats StoreStats
	now := time.Now()

	for _, shard := range s.shards {
		shard.mu.RLock()
		for _, sess := range shard.sessions {
			if s.expired(sess, now) {
				continue
			}
			stats.Sessions++
			sess.mu.Lock()
			stats.TotalMessages += len(sess.messages)
			if sess.escalated {
				stats.Escalated++
			}
			sess.mu.Unlock()
		}
		shard.mu.RUnlock()
	}
	return stats, nil
}

// Close stops the cleanup goroutine.
func (s *MemoryStore) Close() error {
	s.cleanupOnce.Do(func() {
		close(s.stopCleanup)
	})
	return nil
}

// cleanupLoop periodically removes expired sessions.
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) cleanup() {
	now := time.Now()
	for _, shard := range s.shards {
		shard.mu.Lock()
		for id, sess := range shard.sessions {
			if s.expired(sess, now) {
				delete(shard.sessions, id)
			}
		}
		shard.mu.Unlock()
	}
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
