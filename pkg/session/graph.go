package session

import (
	"sort"
	"sync"
	"time"
)

// Graph correlates harvested payment artifacts across conversations: the
// same UPI handle or account number showing up in many sessions marks a
// campaign rather than a one-off. Sharded by artifact so unrelated
// artifacts never contend.
//
// Capacity is bounded; when a shard fills, the artifact seen the fewest
// times (oldest on ties) is evicted.
type Graph struct {
	shards [shardCount]*graphShard

	perShardCap int
}

type graphShard struct {
	mu    sync.Mutex
	nodes map[string]*artifactNode
}

type artifactNode struct {
	count    int
	sessions map[string]struct{}
	lastSeen time.Time
}

// ArtifactStat is one artifact's aggregate for the admin surface.
type ArtifactStat struct {
	Artifact string `json:"artifact"`
	Seen     int    `json:"seen"`
	Sessions int    `json:"sessions"`
}

// NewGraph creates a graph tracking at most capacity artifacts.
func NewGraph(capacity int) *Graph {
	perShard := capacity / shardCount
	if perShard < 1 {
		perShard = 1
	}
	g := &Graph{perShardCap: perShard}
	for i := range g.shards {
		g.shards[i] = &graphShard{nodes: make(map[string]*artifactNode)}
	}
	return g
}

// Observe records one sighting of artifact inside sessionID.
func (g *Graph) Observe(artifact, sessionID string) {
	if artifact == "" {
		return
	}
	shard := g.shards[shardIndex(artifact)]

	shard.mu.Lock()
	defer shard.mu.Unlock()

	node, ok := shard.nodes[artifact]
	if !ok {
		if len(shard.nodes) >= g.perShardCap {
			shard.evictColdest()
		}
		node = &artifactNode{sessions: make(map[string]struct{})}
		shard.nodes[artifact] = node
	}

	node.count++
	node.sessions[sessionID] = struct{}{}
	node.lastSeen = time.Now()
}

// evictColdest removes the least-frequently-seen artifact, preferring the
// oldest sighting on ties. Caller holds the shard lock.
func (s *graphShard) evictColdest() {
	var victim string
	var victimNode *artifactNode
	for artifact, node := range s.nodes {
		if victimNode == nil ||
			node.count < victimNode.count ||
			(node.count == victimNode.count && node.lastSeen.Before(victimNode.lastSeen)) {
			victim, victimNode = artifact, node
		}
	}
	if victim != "" {
		delete(s.nodes, victim)
	}
}

// Seen returns how many times artifact has been observed, zero when
// untracked (or evicted).
func (g *Graph) Seen(artifact string) int {
	shard := g.shards[shardIndex(artifact)]

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if node, ok := shard.nodes[artifact]; ok {
		return node.count
	}
	return 0
}

// SessionCount returns how many distinct sessions mentioned artifact.
func (g *Graph) SessionCount(artifact string) int {
	shard := g.shards[shardIndex(artifact)]

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if node, ok := shard.nodes[artifact]; ok {
		return len(node.sessions)
	}
	return 0
}

// Size returns the number of tracked artifacts.
func (g *Graph) Size() int {
	total := 0
	for _, shard := range g.shards {
		shard.mu.Lock()
		total += len(shard.nodes)
		shard.mu.Unlock()
	}
	return total
}

// Top returns the n most-seen artifacts, most frequent first.
func (g *Graph) Top(n int) []ArtifactStat {
	var all []ArtifactStat
	for _, shard := range g.shards {
		shard.mu.Lock()
		for artifact, node := range shard.nodes {
			all = append(all, ArtifactStat{
				Artifact: artifact,
				Seen:     node.count,
				Sessions: len(node.sessions),
			})
		}
		shard.mu.Unlock()
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Seen != all[j].Seen {
			return all[i].Seen > all[j].Seen
		}
		return all[i].Artifact < all[j].Artifact
	})

	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all
}
