package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandKeywords(t *testing.T) {
	got := ExpandKeywords([]string{"otp", "send money"})

	// 2 base keywords x 5 suffixes
	if len(got) != 10 {
		t.Fatalf("expected 10 expanded keywords, got %d", len(got))
	}

	have := make(map[string]bool, len(got))
	for _, k := range got {
		have[k] = true
	}
	for _, k := range []string{"otp", "otp immediately", "send money now", "send money urgently"} {
		if !have[k] {
			t.Errorf("missing expansion %q", k)
		}
	}
}

func TestExpandKeywords_SkipsBlanksAndFoldCase(t *testing.T) {
	got := ExpandKeywords([]string{"  ", "KYC"})
	if len(got) != 5 {
		t.Fatalf("expected 5, got %d", len(got))
	}
	if got[0] != "kyc" {
		t.Errorf("expected lowercased base, got %q", got[0])
	}
}

func TestLoadSentences(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scam_sentences.txt")
	content := "1. Your bank account is blocked. Please verify now.\n" +
		"\n" +
		"2. Congratulations! You have won a lottery prize.\n" +
		"3. Extra line beyond cap\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadSentences(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences (capped), got %d", len(got))
	}
	if got[0] != "your bank account is blocked. please verify now." {
		t.Errorf("numbering/case not normalized: %q", got[0])
	}
}

func TestLoad_YAMLCorpus(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.yaml")
	content := "keywords:\n" +
		"  - otp\n" +
		"  - send money\n" +
		"templates:\n" +
		"  - \"1. Your KYC has expired. Update immediately.\"\n" +
		"  - \"\"\n" +
		"  - Dear customer, your SIM will be deactivated.\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := Load(path, "", 50)

	if len(c.Keywords) != 10 {
		t.Errorf("expected 2 yaml keywords x 5 suffixes, got %d", len(c.Keywords))
	}
	if len(c.Templates) != 2 {
		t.Fatalf("expected 2 templates (blank dropped), got %d", len(c.Templates))
	}
	if c.Templates[0] != "your kyc has expired. update immediately." {
		t.Errorf("numbering/case not normalized: %q", c.Templates[0])
	}
}

func TestLoad_BrokenYAMLFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.yaml")
	if err := os.WriteFile(path, []byte("keywords: [unterminated"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := Load(path, "", 25)
	if len(c.Keywords) != len(BaseKeywords)*5 {
		t.Errorf("expected embedded keyword fallback, got %d keywords", len(c.Keywords))
	}
	if len(c.Templates) != 25 {
		t.Errorf("expected 25 synthetic templates, got %d", len(c.Templates))
	}
}

func TestLoad_MissingFilesDegradeGracefully(t *testing.T) {
	c := Load("/nonexistent/dataset.txt", "/nonexistent/keywords.txt", 50)

	if len(c.Keywords) != len(BaseKeywords)*5 {
		t.Errorf("expected embedded keyword fallback, got %d keywords", len(c.Keywords))
	}
	if len(c.Templates) != 50 {
		t.Errorf("expected 50 synthetic templates, got %d", len(c.Templates))
	}
}

func TestMatchTemplate_FirstMatchWins(t *testing.T) {
	c := &Corpus{Templates: []string{"won a lottery prize", "account is blocked"}}

	tpl, ok := c.MatchTemplate("sir you have won a lottery prize and your account is blocked")
	if !ok {
		t.Fatal("expected a template match")
	}
	if tpl != "won a lottery prize" {
		t.Errorf("expected first template to win, got %q", tpl)
	}

	if _, ok := c.MatchTemplate("nothing suspicious here"); ok {
		t.Error("unexpected template match")
	}
}

func TestMatchKeywords(t *testing.T) {
	c := &Corpus{Keywords: ExpandKeywords([]string{"verify", "account blocked"})}

	got := c.MatchKeywords("please verify now, account blocked immediately")
	if len(got) < 2 {
		t.Fatalf("expected at least 2 keyword hits, got %v", got)
	}
}

func TestGenerate(t *testing.T) {
	a := Generate(25, 7)
	b := Generate(25, 7)

	if len(a) != 25 {
		t.Fatalf("expected 25 sentences, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("same seed must produce identical corpus")
		}
		if a[i] != strings.ToLower(a[i]) {
			t.Errorf("sentence not lowercased: %q", a[i])
		}
	}
}
