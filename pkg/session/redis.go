package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the Redis-backed Store for multi-node deployments. All
// per-session keys carry the session TTL; an idle conversation simply
// vanishes and the next message starts a fresh one, matching the memory
// store's lazy expiry.
//
// Key layout:
//
//	rakshak:sess:{id}:wc         list of inbound word counts (turn count)
//	rakshak:sess:{id}:intel:{set} intelligence sets
//	rakshak:sess:{id}:escalated  SETNX at-most-once escalation flag
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func sessKey(id, suffix string) string {
	return "rakshak:sess:" + id + ":" + suffix
}

// AppendMessage implements Store.
func (s *RedisStore) AppendMessage(ctx context.Context, id, text string) (int, error) {
	key := sessKey(id, "wc")

	pipe := s.client.TxPipeline()
	push := pipe.RPush(ctx, key, countWords(text))
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to append message: %w", err)
	}
	return int(push.Val()), nil
}

// Turns implements Store.
func (s *RedisStore) Turns(ctx context.Context, id string) (int, error) {
	n, err := s.client.LLen(ctx, sessKey(id, "wc")).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count turns: %w", err)
	}
	return int(n), nil
}

// intelSets maps set suffixes to slice accessors for pipelined merges.
var intelSets = []struct {
	suffix string
	get    func(Intelligence) []string
}{
	{"upi", func(i Intelligence) []string { return i.UPIIDs }},
	{"bank", func(i Intelligence) []string { return i.BankAccounts }},
	{"url", func(i Intelligence) []string { return i.URLs }},
	{"phone", func(i Intelligence) []string { return i.Phones }},
	{"keyword", func(i Intelligence) []string { return i.Keywords }},
}

// MergeIntelligence implements Store. SADD gives the monotone set union.
func (s *RedisStore) MergeIntelligence(ctx context.Context, id string, intel Intelligence) error {
	pipe := s.client.TxPipeline()
	for _, set := range intelSets {
		values := set.get(intel)
		if len(values) == 0 {
			continue
		}
		key := sessKey(id, "intel:"+set.suffix)
		members := make([]interface{}, len(values))
		for i, v := range values {
			members[i] = v
		}
		pipe.SAdd(ctx, key, members...)
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to merge intelligence: %w", err)
	}
	return nil
}

// Snapshot implements Store.
func (s *RedisStore) Snapshot(ctx context.Context, id string) (Intelligence, error) {
	pipe := s.client.TxPipeline()
	cmds := make([]*redis.StringSliceCmd, len(intelSets))
	for i, set := range intelSets {
		cmds[i] = pipe.SMembers(ctx, sessKey(id, "intel:"+set.suffix))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return Intelligence{}, fmt.Errorf("failed to snapshot intelligence: %w", err)
	}

	sets := make([]map[string]struct{}, len(cmds))
	for i, cmd := range cmds {
		sets[i] = make(map[string]struct{})
		addAll(sets[i], cmd.Val())
	}
	return Intelligence{
		UPIIDs:       sortedKeys(sets[0]),
		BankAccounts: sortedKeys(sets[1]),
		URLs:         sortedKeys(sets[2]),
		Phones:       sortedKeys(sets[3]),
		Keywords:     sortedKeys(sets[4]),
	}, nil
}

// MarkEscalated implements Store. SETNX makes the false-to-true transition
// atomic across nodes; exactly one caller wins.
func (s *RedisStore) MarkEscalated(ctx context.Context, id string) (bool, error) {
	won, err := s.client.SetNX(ctx, sessKey(id, "escalated"), "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark escalated: %w", err)
	}
	return won, nil
}

// LikelyAutomated implements Store.
func (s *RedisStore) LikelyAutomated(ctx context.Context, id string) (bool, error) {
	counts, err := s.client.LRange(ctx, sessKey(id, "wc"), -int64(botPatternWindow), -1).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read word counts: %w", err)
	}
	if len(counts) < botPatternWindow {
		return false, nil
	}

	first, err := strconv.Atoi(counts[0])
	if err != nil || first == 0 {
		return false, nil
	}
	for _, c := range counts[1:] {
		n, err := strconv.Atoi(c)
		if err != nil || n != first {
			return false, nil
		}
	}
	return true, nil
}

// Stats implements Store. SCAN is acceptable here: the admin surface is
// low traffic.
func (s *RedisStore) Stats(ctx context.Context) (StoreStats, error) {
	var stats StoreStats

	iter := s.client.Scan(ctx, 0, "rakshak:sess:*:wc", 100).Iterator()
	for iter.Next(ctx) {
		stats.Sessions++
		n, err := s.client.LLen(ctx, iter.Val()).Result()
		if err == nil {
			stats.TotalMessages += int(n)
		}
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("failed to scan sessions: %w", err)
	}

	iter = s.client.Scan(ctx, 0, "rakshak:sess:*:escalated", 100).Iterator()
	for iter.Next(ctx) {
		stats.Escalated++
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("failed to scan escalations: %w", err)
	}
	return stats, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// ObserveArtifact records an artifact sighting in the shared campaign
// hash. The Redis graph is append-only; capacity bounding is left to key
// expiry policy on the Redis side.
func (s *RedisStore) ObserveArtifact(ctx context.Context, artifact string) error {
	if artifact == "" {
		return nil
	}
	if err := s.client.HIncrBy(ctx, "rakshak:artifacts", artifact, 1).Err(); err != nil {
		return fmt.Errorf("failed to record artifact: %w", err)
	}
	return nil
}

// RedisRateLimiter is the fixed-window limiter for multi-node
// deployments: INCR with an NX expiry bounds each client's window.
type RedisRateLimiter struct {
	client *redis.Client
	window time.Duration
	max    int
}

// NewRedisRateLimiter builds a limiter on an existing store's connection.
func (s *RedisStore) NewRateLimiter(window time.Duration, max int) *RedisRateLimiter {
	return &RedisRateLimiter{client: s.client, window: window, max: max}
}

// Allow records one request and reports whether it is within the ceiling.
// Fails open: a Redis error never blocks traffic into the honeypot.
func (rl *RedisRateLimiter) Allow(ctx context.Context, clientID string) bool {
	key := "rakshak:rl:" + clientID

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true
	}
	return incr.Val() <= int64(rl.max)
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
