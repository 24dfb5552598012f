// Package extract mines structured scam artifacts (payment identifiers,
// bank accounts, URLs, phone numbers) out of raw message text.
//
// Extraction is pure and total: no state, no network, no failure modes.
// An input with no matches yields empty sets, never an error.
package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Pre-compiled patterns, compiled once at package init.
var (
	// UPI-style payment identifier: local-part@domain-part.
	// Deliberately loose — scammers rarely send RFC-clean handles.
	reUPI = regexp.MustCompile(`[a-zA-Z0-9][\w.-]*@[a-zA-Z][\w.-]*`)

	// Bank-account-like token: 9-18 consecutive digits.
	reBankAccount = regexp.MustCompile(`\b\d{9,18}\b`)

	// http(s) URLs.
	reURL = regexp.MustCompile(`https?://[^\s<>"']+`)

	// Phone-number-like token: 10-13 digits, optional + prefix.
	rePhone = regexp.MustCompile(`\+?\d{10,13}\b`)
)

// Entities holds one extraction pass over a single text blob.
// All slices are deduplicated and sorted for stable output.
type Entities struct {
	UPIIDs       []string `json:"upi_ids,omitempty"`
	BankAccounts []string `json:"bank_accounts,omitempty"`
	URLs         []string `json:"urls,omitempty"`
	Phones       []string `json:"phone_numbers,omitempty"`
}

// IsEmpty reports whether the pass found nothing.
func (e Entities) IsEmpty() bool {
	return len(e.UPIIDs) == 0 && len(e.BankAccounts) == 0 &&
		len(e.URLs) == 0 && len(e.Phones) == 0
}

// Count returns the total number of distinct artifacts found.
func (e Entities) Count() int {
	return len(e.UPIIDs) + len(e.BankAccounts) + len(e.URLs) + len(e.Phones)
}

// Extract runs all artifact patterns over text.
// Payment identifiers are lowercased (UPI handles are case-insensitive);
// URLs keep their original casing since paths may be case-sensitive.
func Extract(text string) Entities {
	return Entities{
		UPIIDs:       dedupe(reUPI.FindAllString(text, -1), strings.ToLower),
		BankAccounts: dedupe(reBankAccount.FindAllString(text, -1), nil),
		URLs:         dedupe(reURL.FindAllString(strings.TrimSpace(text), -1), trimURL),
		Phones:       dedupe(rePhone.FindAllString(text, -1), nil),
	}
}

// HasPaymentID reports whether text contains a UPI-style payment identifier.
// Used by the classifier's hard-trigger rule without a full extraction pass.
func HasPaymentID(text string) bool {
	return reUPI.MatchString(text)
}

// HasURL reports whether text contains an http(s) URL.
func HasURL(text string) bool {
	return reURL.MatchString(text)
}

// trimURL strips trailing sentence punctuation that the URL regex
// greedily swallows ("visit http://x.com." should not keep the dot).
func trimURL(u string) string {
	return strings.TrimRight(u, ".,;:!?)")
}

// dedupe removes duplicates (after applying the optional normalizer)
// and returns a sorted slice. Returns nil for empty input so that
// omitempty JSON fields stay absent.
func dedupe(in []string, normalize func(string) string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if normalize != nil {
			v = normalize(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
