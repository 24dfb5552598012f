package session

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	s, err := NewRedisStore(context.Background(), mr.Addr(), "", 0, ttl)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_AppendMessage(t *testing.T) {
	s, _ := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		turns, err := s.AppendMessage(ctx, "conv-1", "send money now")
		if err != nil {
			t.Fatal(err)
		}
		if turns != i {
			t.Errorf("turn %d: AppendMessage = %d", i, turns)
		}
	}
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	if _, err := s.AppendMessage(ctx, "conv-1", "first message here"); err != nil {
		t.Fatal(err)
	}

	mr.FastForward(2 * time.Minute)

	turns, err := s.AppendMessage(ctx, "conv-1", "back again now")
	if err != nil {
		t.Fatal(err)
	}
	if turns != 1 {
		t.Errorf("turns after expiry = %d, want 1 (fresh session)", turns)
	}
}

func TestRedisStore_MergeAndSnapshot(t *testing.T) {
	s, _ := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	if err := s.MergeIntelligence(ctx, "conv-1", Intelligence{
		UPIIDs: []string{"scammer@upi"},
		URLs:   []string{"http://bad.link"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.MergeIntelligence(ctx, "conv-1", Intelligence{
		UPIIDs:   []string{"scammer@upi", "another@upi"},
		Keywords: []string{"verify"},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Snapshot(ctx, "conv-1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.UPIIDs, []string{"another@upi", "scammer@upi"}) {
		t.Errorf("UPIIDs = %v", got.UPIIDs)
	}
	if !reflect.DeepEqual(got.URLs, []string{"http://bad.link"}) {
		t.Errorf("URLs = %v", got.URLs)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"verify"}) {
		t.Errorf("Keywords = %v", got.Keywords)
	}
}

func TestRedisStore_MarkEscalatedOnce(t *testing.T) {
	s, _ := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	won, err := s.MarkEscalated(ctx, "conv-1")
	if err != nil {
		t.Fatal(err)
	}
	if !won {
		t.Error("first MarkEscalated should win")
	}

	won, err = s.MarkEscalated(ctx, "conv-1")
	if err != nil {
		t.Fatal(err)
	}
	if won {
		t.Error("second MarkEscalated should lose")
	}
}

func TestRedisStore_LikelyAutomated(t *testing.T) {
	s, _ := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	for _, msg := range []string{"send the money", "share your otp", "click this link"} {
		if _, err := s.AppendMessage(ctx, "conv-1", msg); err != nil {
			t.Fatal(err)
		}
	}

	auto, err := s.LikelyAutomated(ctx, "conv-1")
	if err != nil {
		t.Fatal(err)
	}
	if !auto {
		t.Error("three equal-length messages should read as automated")
	}

	if _, err := s.AppendMessage(ctx, "conv-1", "now a much longer closing message"); err != nil {
		t.Fatal(err)
	}
	auto, err = s.LikelyAutomated(ctx, "conv-1")
	if err != nil {
		t.Fatal(err)
	}
	if auto {
		t.Error("uneven trailing message should clear the automation flag")
	}
}

func TestRedisStore_ObserveArtifact(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	ctx := context.Background()

	if err := s.ObserveArtifact(ctx, "scammer@upi"); err != nil {
		t.Fatal(err)
	}
	if err := s.ObserveArtifact(ctx, "scammer@upi"); err != nil {
		t.Fatal(err)
	}

	if got := mr.HGet("rakshak:artifacts", "scammer@upi"); got != "2" {
		t.Errorf("artifact count = %q, want 2", got)
	}
}

func TestRedisRateLimiter(t *testing.T) {
	s, mr := newTestRedisStore(t, time.Minute)
	rl := s.NewRateLimiter(time.Minute, 2)
	ctx := context.Background()

	if !rl.Allow(ctx, "client-1") || !rl.Allow(ctx, "client-1") {
		t.Fatal("requests within the ceiling should be allowed")
	}
	if rl.Allow(ctx, "client-1") {
		t.Error("request above the ceiling should be limited")
	}

	mr.FastForward(2 * time.Minute)

	if !rl.Allow(ctx, "client-1") {
		t.Error("request after window expiry should be allowed")
	}
}
