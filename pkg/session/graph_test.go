package session

import (
	"fmt"
	"testing"
	"time"
)

func TestGraph_ObserveAndSeen(t *testing.T) {
	g := NewGraph(1000)

	g.Observe("scammer@upi", "conv-1")
	g.Observe("scammer@upi", "conv-2")
	g.Observe("scammer@upi", "conv-2")

	if got := g.Seen("scammer@upi"); got != 3 {
		t.Errorf("Seen = %d, want 3", got)
	}
	if got := g.SessionCount("scammer@upi"); got != 2 {
		t.Errorf("SessionCount = %d, want 2", got)
	}
	if got := g.Seen("unknown@upi"); got != 0 {
		t.Errorf("Seen(untracked) = %d, want 0", got)
	}
}

func TestGraph_CapacityIsBounded(t *testing.T) {
	g := NewGraph(shardCount) // one artifact per shard

	for i := 0; i < 200; i++ {
		g.Observe(fmt.Sprintf("artifact-%d@upi", i), "conv-1")
	}

	if size := g.Size(); size > shardCount {
		t.Errorf("graph grew to %d artifacts, capacity is %d", size, shardCount)
	}
}

func TestGraphShard_EvictsLeastFrequent(t *testing.T) {
	shard := &graphShard{nodes: map[string]*artifactNode{
		"hot@upi":  {count: 5, lastSeen: time.Now()},
		"cold@upi": {count: 1, lastSeen: time.Now()},
	}}

	shard.evictColdest()

	if _, ok := shard.nodes["cold@upi"]; ok {
		t.Error("least-frequent artifact should be evicted")
	}
	if _, ok := shard.nodes["hot@upi"]; !ok {
		t.Error("frequent artifact should survive eviction")
	}
}

func TestGraphShard_EvictionTieBreaksOnAge(t *testing.T) {
	now := time.Now()
	shard := &graphShard{nodes: map[string]*artifactNode{
		"old@upi": {count: 2, lastSeen: now.Add(-time.Hour)},
		"new@upi": {count: 2, lastSeen: now},
	}}

	shard.evictColdest()

	if _, ok := shard.nodes["old@upi"]; ok {
		t.Error("older artifact should lose the tie")
	}
}

func TestGraph_Top(t *testing.T) {
	g := NewGraph(1000)

	for i := 0; i < 3; i++ {
		g.Observe("busy@upi", fmt.Sprintf("conv-%d", i))
	}
	g.Observe("quiet@upi", "conv-1")

	top := g.Top(10)
	if len(top) != 2 {
		t.Fatalf("Top returned %d artifacts, want 2", len(top))
	}
	if top[0].Artifact != "busy@upi" || top[0].Seen != 3 || top[0].Sessions != 3 {
		t.Errorf("top artifact = %+v", top[0])
	}

	if got := g.Top(1); len(got) != 1 {
		t.Errorf("Top(1) returned %d artifacts", len(got))
	}
}
