// Package ml implements the scam signal classifier: a precedence-ordered
// rule cascade over normalized message text, optionally blended with an
// external probability estimate.
//
// The cascade is deterministic and total. Rules fire in a fixed order:
//
//  1. Greeting / short-message bypass (cheap negative)
//  2. Hard triggers: payment identifier, "otp", send+money demand
//     (conclusive, fixed confidence)
//  3. Weighted scoring: keyword hits, template containment, URL bonus,
//     category pattern hits scaled by severity
//  4. External probability blending (optional, never changes rule order)
//
// Provider absence or failure degrades to rules alone; the verdict logic
// itself never changes shape.
package ml

import (
	"context"
	"log"
	"strings"

	"github.com/rakshaklabs/rakshak/pkg/config"
	"github.com/rakshaklabs/rakshak/pkg/corpus"
	"github.com/rakshaklabs/rakshak/pkg/extract"
	"github.com/rakshaklabs/rakshak/pkg/patterns"
)

// Rule names reported in verdicts. Hard triggers report the matched
// pattern's own name instead.
const (
	RuleGreetingBypass  = "greeting_bypass"
	RuleWeightedScore   = "weighted_score"
	RuleHighProbability = "high_probability"
)

// Scoring weights of the cascade's third stage.
const (
	weightKeyword         = 1 // per distinct expanded keyword
	weightTemplate        = 5 // corpus template containment, first match only
	weightURLVerification = 6 // URL together with a verification lure
	weightBareURL         = 4 // URL alone
	weightProbability     = 6 // external probability multiplier

	// severityPerPoint converts a scoring pattern's severity (40-60 band)
	// into score points: one point per full 25 severity.
	severityPerPoint = 25
)

// scoringCategories are swept for weight contributions in stage 3.
// CategoryVerification is absent on purpose: its patterns only matter in
// combination with a URL, where they upgrade the URL bonus.
var scoringCategories = []patterns.Category{
	patterns.CategoryPaymentPressure,
	patterns.CategoryCredentialHarvest,
	patterns.CategoryUrgency,
	patterns.CategoryIdentityKYC,
	patterns.CategoryLottery,
	patterns.CategoryJobScam,
	patterns.CategoryThreat,
	patterns.CategoryBanking,
}

// greetingBypassConfidence is reported for whitelisted small talk.
const greetingBypassConfidence = 0.05

// greetings whitelists openers that bypass scoring outright regardless of
// word count.
var greetings = map[string]struct{}{
	"hi": {}, "hii": {}, "hello": {}, "hey": {}, "yo": {},
	"good morning": {}, "good afternoon": {}, "good evening": {},
	"ok": {}, "okay": {}, "thanks": {}, "thank you": {},
	"namaste": {}, "bye": {}, "goodbye": {},
}

// Verdict is the classifier output for a single message.
type Verdict struct {
	IsScam     bool     `json:"is_scam"`
	Confidence float64  `json:"confidence"` // always in [0,1]
	Score      int      `json:"score"`      // weighted score, 0 on bypass/hard-trigger paths
	Rule       string   `json:"rule"`       // name of the rule that decided the verdict
	Keywords   []string `json:"keywords,omitempty"`
	Patterns   []string `json:"patterns,omitempty"` // scoring pattern names that contributed
	Template   string   `json:"template,omitempty"`

	// External probability, when a provider contributed one.
	Probability     float64 `json:"probability,omitempty"`
	ProbabilityUsed bool    `json:"probability_used,omitempty"`
}

// Classifier runs the rule cascade. Safe for concurrent use: the corpus
// and pattern registry are read-only after construction.
type Classifier struct {
	cfg      *config.Config
	corpus   *corpus.Corpus
	provider ProbabilityProvider // nil = rules only
	registry *patterns.Registry
}

// NewClassifier wires the cascade. provider may be nil.
func NewClassifier(cfg *config.Config, c *corpus.Corpus, provider ProbabilityProvider) *Classifier {
	return &Classifier{
		cfg:      cfg,
		corpus:   c,
		provider: provider,
		registry: patterns.Get(),
	}
}

// Classify runs the full cascade over one message.
func (c *Classifier) Classify(ctx context.Context, text string) Verdict {
	msg := strings.ToLower(strings.TrimSpace(Normalize(text)))

	// Stage 1: greeting / short-message bypass.
	if c.isGreeting(msg) {
		return Verdict{Confidence: greetingBypassConfidence, Rule: RuleGreetingBypass}
	}
	if len(strings.Fields(msg)) <= c.cfg.MinWordCount && !c.hasFinancialTrigger(msg) {
		return Verdict{Confidence: greetingBypassConfidence, Rule: RuleGreetingBypass}
	}

	// Stage 2: hard triggers, most severe first.
	if p := c.hardTrigger(msg); p != nil {
		return Verdict{
			IsScam:     true,
			Confidence: float64(p.Severity) / 100,
			Rule:       p.Name,
		}
	}

	// Stage 3: weighted scoring.
	v := Verdict{Rule: RuleWeightedScore}
	v.Keywords = c.corpus.MatchKeywords(msg)
	v.Score += len(v.Keywords) * weightKeyword

	if tpl, ok := c.corpus.MatchTemplate(msg); ok {
		v.Template = tpl
		v.Score += weightTemplate
	}

	for _, p := range c.registry.MatchAll(msg, scoringCategories...) {
		v.Patterns = append(v.Patterns, p.Name)
		v.Score += p.Severity / severityPerPoint
	}

	if extract.HasURL(msg) {
		if c.registry.MatchAny(msg, patterns.CategoryVerification) != nil {
			v.Score += weightURLVerification
		} else {
			v.Score += weightBareURL
		}
	}

	// Stage 4: external probability blending.
	if c.provider != nil {
		if p, err := c.provider.Probability(ctx, msg); err != nil {
			log.Printf("[CLASSIFY] probability provider unavailable: %v", err)
		} else {
			v.Probability = p
			v.ProbabilityUsed = true
			v.Score += int(p * weightProbability)
		}
	}

	v.Confidence = float64(v.Score) / float64(c.cfg.ScoreDenominator)
	if v.ProbabilityUsed {
		v.Confidence = (v.Confidence + v.Probability) / 2
	}
	v.Confidence = clamp01(v.Confidence)

	switch {
	case v.Score >= c.cfg.ScoreThreshold:
		v.IsScam = true
	case v.ProbabilityUsed && v.Probability > c.cfg.HighConfidenceCutover:
		v.IsScam = true
		v.Rule = RuleHighProbability
	}
	return v
}

// isGreeting reports whether msg is whitelisted small talk.
func (c *Classifier) isGreeting(msg string) bool {
	_, ok := greetings[strings.TrimRight(msg, "!,. ")]
	return ok
}

// hasFinancialTrigger blocks the short-message bypass: a three-word
// message demanding money is still scored.
func (c *Classifier) hasFinancialTrigger(msg string) bool {
	if c.hardTrigger(msg) != nil {
		return true
	}
	if extract.HasURL(msg) {
		return true
	}
	return len(c.corpus.MatchKeywords(msg)) > 0
}

// hardTrigger returns the most severe conclusive pattern matching msg,
// or nil. Severity ordering gives the documented precedence: payment
// identifier over OTP demand over an imperative send-money demand.
func (c *Classifier) hardTrigger(msg string) *patterns.Pattern {
	matched := c.registry.MatchAll(msg, patterns.CategoryPaymentRequest, patterns.CategoryOTPPhish)
	var best *patterns.Pattern
	for _, p := range matched {
		if best == nil || p.Severity > best.Severity {
			best = p
		}
	}
	return best
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
