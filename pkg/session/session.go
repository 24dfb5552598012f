// Package session tracks honeypot conversations: per-conversation message
// history, merged scam intelligence, the escalation flag, and the
// cross-conversation artifact graph.
//
// Concurrency model: each session serializes its own mutations behind its
// own mutex; the store, rate limiter, and artifact graph shard their maps
// so unrelated conversations never contend on a single lock.
package session

import (
	"sort"
	"sync"
	"time"
)

// Message is one inbound message of a conversation. Honeypot replies are
// not stored; turn counts and the bot heuristic work on inbound traffic.
type Message struct {
	Text      string    `json:"text"`
	WordCount int       `json:"word_count"`
	Timestamp time.Time `json:"timestamp"`
}

// Intelligence is a point-in-time snapshot of everything harvested from a
// conversation. All sets are sorted for stable report output.
type Intelligence struct {
	UPIIDs       []string `json:"upi_ids"`
	BankAccounts []string `json:"bank_accounts"`
	URLs         []string `json:"urls"`
	Phones       []string `json:"phone_numbers"`
	Keywords     []string `json:"keywords"`
}

// Total returns the number of harvested artifacts excluding keywords.
func (i Intelligence) Total() int {
	return len(i.UPIIDs) + len(i.BankAccounts) + len(i.URLs) + len(i.Phones)
}

// botPatternWindow is how many trailing messages the automation heuristic
// inspects for identical word counts.
const botPatternWindow = 3

// Session is the state of one conversation. All methods are safe for
// concurrent use; mutations on different sessions never share a lock.
type Session struct {
	mu sync.Mutex

	ID           string
	CreatedAt    time.Time
	LastActiveAt time.Time

	messages  []Message
	escalated bool

	upiIDs       map[string]struct{}
	bankAccounts map[string]struct{}
	urls         map[string]struct{}
	phones       map[string]struct{}
	keywords     map[string]struct{}
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
		upiIDs:       make(map[string]struct{}),
		bankAccounts: make(map[string]struct{}),
		urls:         make(map[string]struct{}),
		phones:       make(map[string]struct{}),
		keywords:     make(map[string]struct{}),
	}
}

// Append records an inbound message and returns the new turn count.
func (s *Session) Append(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.messages = append(s.messages, Message{
		Text:      text,
		WordCount: countWords(text),
		Timestamp: now,
	})
	s.LastActiveAt = now
	return len(s.messages)
}

// touch refreshes the activity timestamp so reads extend the TTL the
// same way appends do.
func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.LastActiveAt = now
	s.mu.Unlock()
}

// Turns returns the number of inbound messages recorded so far.
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Merge unions newly harvested intelligence into the session's sets.
// Merging is monotone: nothing is ever removed.
func (s *Session) Merge(intel Intelligence) {
	s.mu.Lock()
	defer s.mu.Unlock()

	addAll(s.upiIDs, intel.UPIIDs)
	addAll(s.bankAccounts, intel.BankAccounts)
	addAll(s.urls, intel.URLs)
	addAll(s.phones, intel.Phones)
	addAll(s.keywords, intel.Keywords)
}

// Snapshot returns the current intelligence as sorted slices.
func (s *Session) Snapshot() Intelligence {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Intelligence{
		UPIIDs:       sortedKeys(s.upiIDs),
		BankAccounts: sortedKeys(s.bankAccounts),
		URLs:         sortedKeys(s.urls),
		Phones:       sortedKeys(s.phones),
		Keywords:     sortedKeys(s.keywords),
	}
}

// MarkEscalated flips the escalation flag and reports whether this call
// won the false-to-true transition. The flag is never rolled back, so at
// most one caller per session ever sees true.
func (s *Session) MarkEscalated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.escalated {
		return false
	}
	s.escalated = true
	return true
}

// Escalated reports whether the session has already been reported.
func (s *Session) Escalated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.escalated
}

// LikelyAutomated reports whether the trailing messages carry exactly
// equal word counts, a cheap tell for scripted senders. Auxiliary signal
// only: it never influences the scam verdict.
func (s *Session) LikelyAutomated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.messages) < botPatternWindow {
		return false
	}
	tail := s.messages[len(s.messages)-botPatternWindow:]
	first := tail[0].WordCount
	if first == 0 {
		return false
	}
	for _, m := range tail[1:] {
		if m.WordCount != first {
			return false
		}
	}
	return true
}

func countWords(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			inWord = false
			continue
		}
		if !inWord {
			n++
			inWord = true
		}
	}
	return n
}

func addAll(set map[string]struct{}, values []string) {
	for _, v := range values {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
