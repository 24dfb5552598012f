// Package honeypot orchestrates one inbound message end to end: rate
// limiting, session resolution, classification, intelligence harvesting,
// reply selection, and escalation. The HTTP layer stays thin; everything
// testable lives here.
package honeypot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/rakshaklabs/rakshak/pkg/config"
	"github.com/rakshaklabs/rakshak/pkg/escalate"
	"github.com/rakshaklabs/rakshak/pkg/extract"
	"github.com/rakshaklabs/rakshak/pkg/ml"
	"github.com/rakshaklabs/rakshak/pkg/session"
)

// Sentinel errors surfaced to the transport layer.
var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrRateLimited  = errors.New("rate limited")
)

// Limiter gates inbound traffic per client identity.
type Limiter interface {
	Allow(ctx context.Context, clientID string) bool
}

// MemoryLimiter adapts the in-process fixed-window limiter to the
// context-carrying Limiter interface the Redis limiter already satisfies.
type MemoryLimiter struct {
	RL *session.RateLimiter
}

// Allow implements Limiter.
func (m MemoryLimiter) Allow(_ context.Context, clientID string) bool {
	return m.RL.Allow(clientID)
}

// artifactObserver is the optional cross-node artifact sink the Redis
// store provides on top of the Store interface.
type artifactObserver interface {
	ObserveArtifact(ctx context.Context, artifact string) error
}

// Request is one inbound honeypot message. ClientID is the caller's
// network identity, set by the transport, never by the request body.
type Request struct {
	ConversationID string   `json:"conversation_id"`
	Message        string   `json:"message"`
	History        []string `json:"history,omitempty"`

	ClientID string `json:"-"`
}

// Engagement is the per-turn engagement metadata returned to the caller.
type Engagement struct {
	Turns           int  `json:"turns"`
	LatencyMS       int  `json:"latency_ms"`
	LikelyAutomated bool `json:"likely_automated"`
}

// Response is the honeypot's answer for one message.
type Response struct {
	ConversationID string               `json:"conversation_id"`
	ScamDetected   bool                 `json:"scam_detected"`
	Confidence     float64              `json:"confidence"`
	Reply          string               `json:"reply"`
	Intelligence   session.Intelligence `json:"intelligence"`
	Engagement     Engagement           `json:"engagement"`
}

// Engine wires the pipeline together.
type Engine struct {
	cfg        *config.Config
	store      session.Store
	limiter    Limiter
	graph      *session.Graph
	classifier *ml.Classifier
	notifier   *escalate.Notifier

	total       atomic.Uint64
	scams       atomic.Uint64
	safe        atomic.Uint64
	rateLimited atomic.Uint64
}

// NewEngine builds an engine. The artifact graph is owned by the engine
// and sized from config.
func NewEngine(cfg *config.Config, store session.Store, limiter Limiter, classifier *ml.Classifier, notifier *escalate.Notifier) *Engine {
	return &Engine{
		cfg:        cfg,
		store:      store,
		limiter:    limiter,
		graph:      session.NewGraph(cfg.ArtifactGraphCapacity),
		classifier: classifier,
		notifier:   notifier,
	}
}

// Graph exposes the artifact graph for the admin surface.
func (e *Engine) Graph() *session.Graph { return e.graph }

// Handle processes one inbound message through the full pipeline.
func (e *Engine) Handle(ctx context.Context, req Request) (Response, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return Response{}, ErrEmptyMessage
	}

	client := req.ClientID
	if client == "" {
		client = "anonymous"
	}
	if !e.limiter.Allow(ctx, client) {
		e.rateLimited.Add(1)
		return Response{}, ErrRateLimited
	}

	id := e.conversationID(req)

	// Callers that batch prior turns into history get them replayed into
	// a fresh session so turn counts and harvested intelligence line up.
	if len(req.History) > 0 {
		if turns, err := e.store.Turns(ctx, id); err == nil && turns == 0 {
			for _, h := range req.History {
				h = strings.TrimSpace(h)
				if h == "" {
					continue
				}
				if _, err := e.store.AppendMessage(ctx, id, h); err != nil {
					return Response{}, fmt.Errorf("failed to replay history: %w", err)
				}
				e.harvest(ctx, id, h, nil)
			}
		}
	}

	verdict := e.classifier.Classify(ctx, msg)

	turns, err := e.store.AppendMessage(ctx, id, msg)
	if err != nil {
		return Response{}, fmt.Errorf("failed to record message: %w", err)
	}
	e.harvest(ctx, id, msg, verdict.Keywords)

	intel, err := e.store.Snapshot(ctx, id)
	if err != nil {
		return Response{}, fmt.Errorf("failed to snapshot intelligence: %w", err)
	}
	auto, _ := e.store.LikelyAutomated(ctx, id)

	e.total.Add(1)
	if verdict.IsScam {
		e.scams.Add(1)
	} else {
		e.safe.Add(1)
	}

	if verdict.IsScam && turns >= e.cfg.MinTurnsForEscalation {
		if won, err := e.store.MarkEscalated(ctx, id); err == nil && won {
			e.notifier.Dispatch(escalate.Report{
				SessionID:     id,
				ScamConfirmed: true,
				TotalMessages: turns,
				Intelligence:  intel,
				Rationale:     rationale(verdict),
			})
		}
	}

	return Response{
		ConversationID: id,
		ScamDetected:   verdict.IsScam,
		Confidence:     verdict.Confidence,
		Reply:          e.reply(verdict, turns),
		Intelligence:   intel,
		Engagement: Engagement{
			Turns:           turns,
			LatencyMS:       typingLatencyMS(),
			LikelyAutomated: auto,
		},
	}, nil
}

// conversationID resolves the session identity: caller-supplied id, then
// client network identity, then a generated one.
func (e *Engine) conversationID(req Request) string {
	if req.ConversationID != "" {
		return req.ConversationID
	}
	if req.ClientID != "" {
		return req.ClientID
	}
	return uuid.NewString()
}

// harvest extracts artifacts from one message and folds them into the
// session's intelligence and the cross-conversation graph.
func (e *Engine) harvest(ctx context.Context, id, msg string, keywords []string) {
	ent := extract.Extract(msg)
	if ent.IsEmpty() && len(keywords) == 0 {
		return
	}

	_ = e.store.MergeIntelligence(ctx, id, session.Intelligence{
		UPIIDs:       ent.UPIIDs,
		BankAccounts: ent.BankAccounts,
		URLs:         ent.URLs,
		Phones:       ent.Phones,
		Keywords:     keywords,
	})

	obs, _ := e.store.(artifactObserver)
	for _, artifact := range ent.UPIIDs {
		e.graph.Observe(artifact, id)
		if obs != nil {
			_ = obs.ObserveArtifact(ctx, artifact)
		}
	}
	for _, artifact := range ent.BankAccounts {
		e.graph.Observe(artifact, id)
		if obs != nil {
			_ = obs.ObserveArtifact(ctx, artifact)
		}
	}
}

// rationale summarizes why a conversation escalated, for the collector.
func rationale(v ml.Verdict) string {
	var b strings.Builder
	fmt.Fprintf(&b, "rule=%s confidence=%.2f", v.Rule, v.Confidence)
	if v.Score > 0 {
		fmt.Fprintf(&b, " score=%d", v.Score)
	}
	if len(v.Keywords) > 0 {
		fmt.Fprintf(&b, " keywords=%s", strings.Join(v.Keywords, ","))
	}
	if len(v.Patterns) > 0 {
		fmt.Fprintf(&b, " patterns=%s", strings.Join(v.Patterns, ","))
	}
	if v.Template != "" {
		fmt.Fprintf(&b, " template=%q", v.Template)
	}
	if v.ProbabilityUsed {
		fmt.Fprintf(&b, " probability=%.2f", v.Probability)
	}
	return b.String()
}

// Stats is the aggregate view for the admin surface.
type Stats struct {
	TotalRequests  uint64                 `json:"total_requests"`
	ScamDetected   uint64                 `json:"scam_detected"`
	SafeMessages   uint64                 `json:"safe_messages"`
	RateLimited    uint64                 `json:"rate_limited"`
	Store          session.StoreStats     `json:"store"`
	ReportsSent    int64                  `json:"reports_sent"`
	ReportsFailed  int64                  `json:"reports_failed"`
	ReportsDropped int64                  `json:"reports_dropped"`
	TopArtifacts   []session.ArtifactStat `json:"top_artifacts"`
}

// Stats collects counters from the whole pipeline.
func (e *Engine) Stats(ctx context.Context) Stats {
	storeStats, _ := e.store.Stats(ctx)
	return Stats{
		TotalRequests:  e.total.Load(),
		ScamDetected:   e.scams.Load(),
		SafeMessages:   e.safe.Load(),
		RateLimited:    e.rateLimited.Load(),
		Store:          storeStats,
		ReportsSent:    e.notifier.Sent(),
		ReportsFailed:  e.notifier.Failed(),
		ReportsDropped: e.notifier.Dropped(),
		TopArtifacts:   e.graph.Top(10),
	}
}
