// Package patterns provides a centralized, high-performance pattern registry
// for scam signal detection. All regex patterns are compiled once at package
// init and shared across the classifier and the HTTP surface.
//
// Design principles:
// - COMPILE ONCE: All patterns compiled at init, not per-request
// - DRY: Single source of truth for all scam patterns
// - CATEGORIZED: Patterns organized by scam category for targeted scans
// - EXTENSIBLE: Easy to add new patterns without touching rule code
package patterns

import (
	"regexp"
	"sync"
)

// Category represents a scam pattern category
type Category string

const (
	// Hard-trigger categories (conclusive on their own)
	CategoryPaymentRequest Category = "payment_request"
	CategoryOTPPhish       Category = "otp_phish"

	// Scoring categories (contribute weight, never conclusive alone)
	CategoryPaymentPressure   Category = "payment_pressure"
	CategoryCredentialHarvest Category = "credential_harvest"
	CategoryUrgency           Category = "urgency"
	CategoryVerification      Category = "verification"
	CategoryIdentityKYC       Category = "identity_kyc"
	CategoryLottery           Category = "lottery"
	CategoryJobScam           Category = "job_scam"
	CategoryThreat            Category = "threat"
	CategoryBanking           Category = "banking"
)

// Pattern holds a compiled regex with metadata
type Pattern struct {
	Name        string         // Human-readable name for logging
	Regex       *regexp.Regexp // Compiled regex (never nil after init)
	Category    Category       // Scam category
	Severity    int            // Risk score contribution (0-100)
	Description string         // What this pattern detects
}

// Registry holds all compiled patterns, organized by category
type Registry struct {
	mu         sync.RWMutex
	byCategory map[Category][]*Pattern
	all        []*Pattern
}

// global singleton - initialized once at package load
var (
	globalRegistry *Registry
	initOnce       sync.Once
)

// Get returns the global pattern registry (singleton)
// Thread-safe and guaranteed to be initialized
func Get() *Registry {
	initOnce.Do(func() {
		globalRegistry = newRegistry()
	})
	return globalRegistry
}

// newRegistry creates and populates the pattern registry
func newRegistry() *Registry {
	r := &Registry{
		byCategory: make(map[Category][]*Pattern),
		all:        make([]*Pattern, 0, 64),
	}

	r.registerPaymentPatterns()
	r.registerOTPPatterns()
	r.registerPaymentPressurePatterns()
	r.registerCredentialPatterns()
	r.registerUrgencyPatterns()
	r.registerVerificationPatterns()
	r.registerIdentityPatterns()
	r.registerLotteryPatterns()
	r.registerJobScamPatterns()
	r.registerThreatPatterns()
	r.registerBankingPatterns()

	return r
}

// register adds a pattern to the registry (internal use only)
func (r *Registry) register(name string, pattern string, category Category, severity int, description string) {
	compiled := regexp.MustCompile(pattern)
	p := &Pattern{
		Name:        name,
		Regex:       compiled,
		Category:    category,
		Severity:    severity,
		Description: description,
	}

	r.byCategory[category] = append(r.byCategory[category], p)
	r.all = append(r.all, p)
}

// GetByCategory returns all patterns for a specific category
// Returns empty slice if category not found (never nil)
func (r *Registry) GetByCategory(cat Category) []*Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if patterns, ok := r.byCategory[cat]; ok {
		return patterns
	}
	return []*Pattern{}
}

// GetMultipleCategories returns patterns from multiple categories
func (r *Registry) GetMultipleCategories(cats ...Category) []*Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*Pattern
	for _, cat := range cats {
		if patterns, ok := r.byCategory[cat]; ok {
			result = append(result, patterns...)
		}
	}
	return result
}

// MatchAny checks if text matches any pattern in the given categories
// Returns the first matching pattern or nil
// This is optimized for early exit on first match
func (r *Registry) MatchAny(text string, cats ...Category) *Pattern {
	patterns := r.GetMultipleCategories(cats...)
	for _, p := range patterns {
		if p.Regex.MatchString(text) {
			return p
		}
	}
	return nil
}

// MatchAll returns every matching pattern in the given categories.
// Used by weighted scoring where each distinct hit contributes.
func (r *Registry) MatchAll(text string, cats ...Category) []*Pattern {
	patterns := r.GetMultipleCategories(cats...)
	var matched []*Pattern
	for _, p := range patterns {
		if p.Regex.MatchString(text) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Count returns the total number of registered patterns
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.all)
}
