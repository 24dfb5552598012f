package ml

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds Unicode evasion tricks before rule matching: NFKD
// decomposition flattens fullwidth/mathematical homoglyphs, then combining
// marks are stripped so "vérify" matches the "verify" rules.
//
// The transform chain is built per call; chained transformers carry state
// and must not be shared across goroutines.
func Normalize(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
