// Package corpus owns the static signal inputs of the classifier: the base
// trigger keyword list (auto-expanded with urgency suffixes) and the corpus
// of known scam-sentence templates.
//
// Both inputs are load-once at process start and read-only thereafter.
// Absence of either degrades gracefully: the classifier still functions on
// pattern rules alone, and a missing template file is backfilled with
// synthetic sentences (see generate.go).
package corpus

import (
	"bufio"
	"log"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// BaseKeywords is the embedded base trigger list. A keywords file, when
// configured, replaces this list entirely.
var BaseKeywords = []string{
	"otp", "send money", "upi", "verify", "account blocked", "bank alert",
	"click here", "urgent", "refund", "kyc", "aadhaar", "pan",
	"debit card", "credit card", "cvv", "loan approved", "processing fee",
	"telegram job", "whatsapp job", "legal notice", "customs", "parcel seized",
}

// urgencySuffixes multiply each base keyword into its pressured variants.
var urgencySuffixes = []string{"", " please", " immediately", " now", " urgently"}

// leading "42. " numbering written by the generator tool
var reLineNumber = regexp.MustCompile(`^\d+\.\s*`)

// Corpus bundles the expanded keyword list and the template sentences.
type Corpus struct {
	Keywords  []string // expanded, lowercased
	Templates []string // lowercased scam-sentence templates
}

// ExpandKeywords returns the base x suffix cross product, lowercased.
func ExpandKeywords(base []string) []string {
	out := make([]string, 0, len(base)*len(urgencySuffixes))
	for _, k := range base {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		for _, s := range urgencySuffixes {
			out = append(out, k+s)
		}
	}
	return out
}

// LoadSentences reads a template corpus file: one sentence per line,
// optional "N. " numbering, blank lines skipped, everything lowercased.
// At most max sentences are kept (0 means unlimited).
func LoadSentences(path string, max int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		line = reLineNumber.ReplaceAllString(line, "")
		out = append(out, strings.ToLower(line))
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out, scanner.Err()
}

// corpusFile mirrors the YAML corpus layout: a single file carrying both
// the base keyword list and the template sentences.
type corpusFile struct {
	Keywords  []string `yaml:"keywords"`
	Templates []string `yaml:"templates"`
}

func loadYAMLCorpus(path string) (*corpusFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cf corpusFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

func isYAMLPath(path string) bool {
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}

// cleanTemplates trims, strips generator numbering, lowercases, and caps
// the template list (max 0 means unlimited).
func cleanTemplates(raw []string, max int) []string {
	var out []string
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = reLineNumber.ReplaceAllString(line, "")
		out = append(out, strings.ToLower(line))
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}

// loadKeywordFile reads one base keyword per line, skipping blanks and
// "#" comments.
func loadKeywordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

// Load assembles the corpus from the configured files. It never fails:
// a missing keywords file falls back to BaseKeywords, and a missing
// dataset file falls back to synthetic templates so the containment
// bonus still has material to work with.
//
// A dataset path ending in .yaml/.yml is read as a combined corpus file
// (keywords + templates in one document); any other path is read as a
// plain one-sentence-per-line template list.
func Load(datasetPath, keywordsPath string, maxTemplates int) *Corpus {
	base := BaseKeywords
	var templates []string

	if datasetPath != "" && isYAMLPath(datasetPath) {
		cf, err := loadYAMLCorpus(datasetPath)
		if err != nil {
			log.Printf("[CORPUS] yaml corpus unavailable (%v), using embedded fallbacks", err)
		} else {
			if len(cf.Keywords) > 0 {
				base = cf.Keywords
			}
			templates = cleanTemplates(cf.Templates, maxTemplates)
		}
	} else if datasetPath != "" {
		loaded, err := LoadSentences(datasetPath, maxTemplates)
		if err != nil {
			log.Printf("[CORPUS] dataset unavailable (%v), generating synthetic templates", err)
		} else {
			templates = loaded
		}
	}

	if keywordsPath != "" {
		loaded, err := loadKeywordFile(keywordsPath)
		if err != nil {
			log.Printf("[CORPUS] keywords file unavailable (%v), using embedded list", err)
		} else if len(loaded) > 0 {
			base = loaded
		}
	}

	c := &Corpus{Keywords: ExpandKeywords(base), Templates: templates}
	if len(c.Templates) == 0 {
		n := maxTemplates
		if n <= 0 {
			n = 200
		}
		c.Templates = Generate(n, 1)
	}

	return c
}

// MatchTemplate reports whether any template sentence is wholly contained
// in msg (already lowercased). First match wins; no further scan.
func (c *Corpus) MatchTemplate(msg string) (string, bool) {
	for _, t := range c.Templates {
		if strings.Contains(msg, t) {
			return t, true
		}
	}
	return "", false
}

// MatchKeywords returns every distinct expanded keyword contained in msg
// (already lowercased).
func (c *Corpus) MatchKeywords(msg string) []string {
	var matched []string
	for _, k := range c.Keywords {
		if strings.Contains(msg, k) {
			matched = append(matched, k)
		}
	}
	return matched
}
