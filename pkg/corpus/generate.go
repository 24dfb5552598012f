package corpus

import (
	"fmt"
	"math/rand"
	"strings"
)

// Slot values for the synthetic scam-sentence generator. These mirror the
// phrasing of real reported scam SMS/chat campaigns: an asset, a scary
// status, and a demanded action.
var (
	genTemplates = []string{
		"your %[1]s is %[2]s. please %[3]s.",
		"dear customer, your %[1]s has been %[2]s. %[3]s immediately.",
		"we noticed suspicious activity in your %[1]s. %[3]s.",
		"congratulations! you have won a %[4]s. %[3]s.",
		"your %[1]s will be blocked today. %[3]s.",
		"police case registered regarding your %[1]s. %[3]s.",
		"your refund of rs %[5]d is pending. %[3]s.",
		"work from home job available. earn rs %[5]d daily. %[3]s.",
	}

	genEntities = []string{
		"bank account", "upi account", "credit card", "debit card",
		"mobile number", "pan card", "aadhaar", "loan account",
	}

	genStatuses = []string{
		"blocked", "suspended", "on hold", "under verification",
		"flagged", "disabled",
	}

	genActions = []string{
		"click the link", "verify now", "share otp",
		"send money", "update kyc", "confirm details",
		"call this number", "reply immediately",
	}

	genRewards = []string{
		"lottery prize", "cash reward", "bonus amount",
		"lucky draw prize",
	}
)

// Generate returns n synthetic scam sentences, lowercased, from the
// template x slot grid. A fixed seed gives a reproducible corpus; the
// sentences seed the template-containment rule when no dataset file is
// available and back the `gen` CLI subcommand.
func Generate(n int, seed int64) []string {
	rng := rand.New(rand.NewSource(seed))
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s := fmt.Sprintf(genTemplates[rng.Intn(len(genTemplates))],
			genEntities[rng.Intn(len(genEntities))],
			genStatuses[rng.Intn(len(genStatuses))],
			genActions[rng.Intn(len(genActions))],
			genRewards[rng.Intn(len(genRewards))],
			500+rng.Intn(49501),
		)
		out = append(out, strings.ToLower(s))
	}
	return out
}
