package patterns

import "testing"

func TestRegistryInitialization(t *testing.T) {
	r := Get()

	if r.Count() == 0 {
		t.Fatal("registry has no patterns")
	}

	// Singleton: second Get must return the same registry.
	if Get() != r {
		t.Error("Get() returned a different registry instance")
	}
}

func TestGetByCategory(t *testing.T) {
	r := Get()

	for _, cat := range []Category{
		CategoryPaymentRequest, CategoryOTPPhish, CategoryPaymentPressure,
		CategoryCredentialHarvest, CategoryUrgency, CategoryVerification,
		CategoryIdentityKYC, CategoryLottery, CategoryJobScam,
		CategoryThreat, CategoryBanking,
	} {
		if len(r.GetByCategory(cat)) == 0 {
			t.Errorf("category %s has no patterns", cat)
		}
	}

	if got := r.GetByCategory(Category("nonexistent")); got == nil {
		t.Error("unknown category should return empty slice, not nil")
	}
}

// The conclusive categories hold exactly the three near-zero-false-positive
// signals; fee and transfer talk lives in the scoring categories.
func TestConclusiveCategoriesAreMinimal(t *testing.T) {
	r := Get()

	got := make(map[string]bool)
	for _, p := range r.GetMultipleCategories(CategoryPaymentRequest, CategoryOTPPhish) {
		got[p.Name] = true
		if p.Severity < 85 {
			t.Errorf("conclusive pattern %s has severity %d, want at least 85", p.Name, p.Severity)
		}
	}

	want := []string{"upi_handle", "send_money", "otp_token"}
	if len(got) != len(want) {
		t.Fatalf("conclusive patterns = %v, want exactly %v", got, want)
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("missing conclusive pattern %s", name)
		}
	}
}

func TestMatchAny(t *testing.T) {
	r := Get()

	tests := []struct {
		name      string
		text      string
		cats      []Category
		wantMatch bool
	}{
		{"upi_handle", "pay to rahul@upi now", []Category{CategoryPaymentRequest}, true},
		{"send_money", "please send money to this number", []Category{CategoryPaymentRequest}, true},
		{"otp", "share your OTP to continue", []Category{CategoryOTPPhish}, true},
		{"account_blocked", "your account is blocked", []Category{CategoryBanking}, true},
		{"customs", "your parcel has been seized by customs", []Category{CategoryThreat}, true},
		{"benign", "see you at the meeting tomorrow", []Category{CategoryPaymentRequest, CategoryOTPPhish}, false},
		{"wrong_category", "share your OTP", []Category{CategoryLottery}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.MatchAny(tt.text, tt.cats...)
			if (got != nil) != tt.wantMatch {
				t.Errorf("MatchAny(%q) = %v, want match=%v", tt.text, got, tt.wantMatch)
			}
		})
	}
}

func TestMatchAllCountsDistinctHits(t *testing.T) {
	r := Get()

	text := "urgent: your account is blocked, verify immediately"
	matched := r.MatchAll(text, CategoryUrgency, CategoryBanking, CategoryVerification)
	if len(matched) < 3 {
		t.Errorf("expected at least 3 distinct hits, got %d", len(matched))
	}
}

func TestSeverityBounds(t *testing.T) {
	r := Get()

	for _, cat := range []Category{
		CategoryPaymentRequest, CategoryOTPPhish, CategoryPaymentPressure,
		CategoryCredentialHarvest, CategoryUrgency, CategoryVerification,
		CategoryIdentityKYC, CategoryLottery, CategoryJobScam,
		CategoryThreat, CategoryBanking,
	} {
		for _, p := range r.GetByCategory(cat) {
			if p.Severity < 0 || p.Severity > 100 {
				t.Errorf("pattern %s severity %d out of range", p.Name, p.Severity)
			}
			if p.Regex == nil {
				t.Errorf("pattern %s has nil regex", p.Name)
			}
		}
	}
}
