package session

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestStore(t *testing.T, ttl time.Duration) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(ttl, time.Hour)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMemoryStore_GetOrCreate(t *testing.T) {
	s := newTestStore(t, time.Minute)

	sess, created := s.GetOrCreate("conv-1")
	if !created {
		t.Error("first access should create the session")
	}

	again, created := s.GetOrCreate("conv-1")
	if created {
		t.Error("second access should reuse the session")
	}
	if again != sess {
		t.Error("expected the same session instance")
	}
}

func TestMemoryStore_TTLExpiryRecreatesFresh(t *testing.T) {
	s := newTestStore(t, 50*time.Millisecond)

	sess, _ := s.GetOrCreate("conv-1")
	sess.Append("send money now")
	sess.Merge(Intelligence{UPIIDs: []string{"scammer@upi"}})

	time.Sleep(80 * time.Millisecond)

	fresh, created := s.GetOrCreate("conv-1")
	if !created {
		t.Fatal("expired session should be recreated")
	}
	if fresh.Turns() != 0 {
		t.Errorf("fresh session has %d turns, want 0", fresh.Turns())
	}
	if fresh.Snapshot().Total() != 0 {
		t.Error("fresh session should carry no intelligence")
	}
}

func TestMemoryStore_ActivityRefreshesTTL(t *testing.T) {
	s := newTestStore(t, 80*time.Millisecond)

	sess, _ := s.GetOrCreate("conv-1")
	sess.Append("first")

	time.Sleep(50 * time.Millisecond)
	sess.Append("second")
	time.Sleep(50 * time.Millisecond)

	// 100ms since creation but only 50ms since last activity.
	if _, created := s.GetOrCreate("conv-1"); created {
		t.Error("active session should not expire")
	}
}

func TestMemoryStore_ReadAccessRefreshesTTL(t *testing.T) {
	s := newTestStore(t, 200*time.Millisecond)

	sess, _ := s.GetOrCreate("conv-1")
	sess.Append("first message here")

	// Read-only lookups past the original TTL; each one must extend it.
	for i := 0; i < 3; i++ {
		time.Sleep(120 * time.Millisecond)
		if got, created := s.GetOrCreate("conv-1"); created || got != sess {
			t.Fatalf("session recreated on lookup %d despite recent reads", i)
		}
	}

	// 360ms since the only append, yet the history survived.
	if sess.Turns() != 1 {
		t.Errorf("turns = %d, want 1", sess.Turns())
	}
}

func TestSession_MergeIsMonotone(t *testing.T) {
	s := newTestStore(t, time.Minute)
	sess, _ := s.GetOrCreate("conv-1")

	sess.Merge(Intelligence{
		UPIIDs:   []string{"scammer@upi"},
		URLs:     []string{"http://bad.link"},
		Keywords: []string{"verify"},
	})
	sess.Merge(Intelligence{
		UPIIDs:   []string{"scammer@upi", "another@upi"},
		Keywords: []string{"otp"},
	})

	got := sess.Snapshot()
	if !reflect.DeepEqual(got.UPIIDs, []string{"another@upi", "scammer@upi"}) {
		t.Errorf("UPIIDs = %v", got.UPIIDs)
	}
	if !reflect.DeepEqual(got.URLs, []string{"http://bad.link"}) {
		t.Errorf("URLs = %v", got.URLs)
	}
	if !reflect.DeepEqual(got.Keywords, []string{"otp", "verify"}) {
		t.Errorf("Keywords = %v", got.Keywords)
	}
}

func TestSession_MarkEscalatedWinsOnce(t *testing.T) {
	s := newTestStore(t, time.Minute)
	sess, _ := s.GetOrCreate("conv-1")

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sess.MarkEscalated() {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("MarkEscalated won %d times, want exactly 1", wins.Load())
	}
	if !sess.Escalated() {
		t.Error("session should stay escalated")
	}
}

func TestSession_LikelyAutomated(t *testing.T) {
	tests := []struct {
		name     string
		messages []string
		want     bool
	}{
		{"too_few", []string{"hello there friend", "pay me now please"}, false},
		{"equal_counts", []string{"send the money", "share your otp", "click this link"}, true},
		{"unequal_counts", []string{"send the money", "share otp", "click this link now"}, false},
		{"equal_tail_only", []string{"hi", "send the money", "share your otp", "click this link"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, time.Minute)
			sess, _ := s.GetOrCreate("conv-1")
			for _, m := range tt.messages {
				sess.Append(m)
			}
			if got := sess.LikelyAutomated(); got != tt.want {
				t.Errorf("LikelyAutomated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemoryStore_StoreInterface(t *testing.T) {
	s := newTestStore(t, time.Minute)
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

	if err := s.MergeIntelligence(ctx, "conv-1", Intelligence{UPIIDs: []string{"scammer@upi"}}); err != nil {
		t.Fatal(err)
	}
	intel, err := s.Snapshot(ctx, "conv-1")
	if err != nil {
		t.Fatal(err)
	}
	if intel.Total() != 1 {
		t.Errorf("intelligence total = %d, want 1", intel.Total())
	}

	won, err := s.MarkEscalated(ctx, "conv-1")
	if err != nil || !won {
		t.Errorf("first MarkEscalated = (%v, %v), want (true, nil)", won, err)
	}
	won, _ = s.MarkEscalated(ctx, "conv-1")
	if won {
		t.Error("second MarkEscalated should lose")
	}

	auto, err := s.LikelyAutomated(ctx, "conv-1")
	if err != nil {
		t.Fatal(err)
	}
	if !auto {
		t.Error("three equal-length messages should read as automated")
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Sessions != 1 || stats.Escalated != 1 || stats.TotalMessages != 3 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestMemoryStore_ConcurrentDistinctSessions(t *testing.T) {
	s := newTestStore(t, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%26))
			_, _ = s.AppendMessage(ctx, id, "send money now")
		}(i)
	}
	wg.Wait()

	stats, _ := s.Stats(ctx)
	if stats.Sessions != 26 {
		t.Errorf("sessions = %d, want 26", stats.Sessions)
	}
	if stats.TotalMessages != 50 {
		t.Errorf("total messages = %d, want 50", stats.TotalMessages)
	}
}
