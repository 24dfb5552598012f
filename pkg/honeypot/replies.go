package honeypot

import (
	"math/rand"

	"github.com/rakshaklabs/rakshak/pkg/ml"
)

// Canned persona replies. The honeypot plays a slightly confused,
// cooperative target: probing questions on scam turns keep the scammer
// typing and leaking artifacts, neutral acknowledgments keep benign
// conversations short.
var (
	probingReplies = []string{
		"why is my account blocked? i paid everything on time",
		"which bank are you calling from exactly? what is your employee id?",
		"i have not received any otp yet, can you send it once more?",
		"the link is not opening on my phone, is there another way?",
		"how do i know this is genuine? my son keeps warning me about fraud calls",
		"okay but my net banking is not working today, what should i do?",
		"can you tell me the account number again slowly? i am writing it down",
	}

	neutralReplies = []string{
		"ok",
		"alright, tell me more",
		"hmm, i see",
		"who is this?",
		"sorry, i was busy. what is this about?",
	}
)

// reply picks the engagement reply for this turn. Scam turns rotate
// through the probing set by turn number so a persistent scammer sees a
// conversation, not a loop.
func (e *Engine) reply(v ml.Verdict, turns int) string {
	if turns < 1 {
		turns = 1
	}
	if v.IsScam {
		return probingReplies[(turns-1)%len(probingReplies)]
	}
	return neutralReplies[(turns-1)%len(neutralReplies)]
}

// typingLatencyMS fakes a human typing delay for the engagement metadata.
// The figure is advisory; the server never actually sleeps.
func typingLatencyMS() int {
	return 400 + rand.Intn(1200)
}
