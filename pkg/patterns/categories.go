package patterns

// =============================================================================
// PATTERN DEFINITIONS BY CATEGORY
// All patterns are registered here and compiled once at package init.
// This provides a single source of truth for all scam patterns.
// =============================================================================

// --- PAYMENT REQUEST PATTERNS (HARD TRIGGER) ---
// A payment identifier or an explicit demand to move money is near-zero
// false positive in the honeypot domain and bypasses weighted scoring.
// Only these patterns and otp_token are conclusive; everything else
// contributes weight.
func (r *Registry) registerPaymentPatterns() {
	cat := CategoryPaymentRequest

	r.register("upi_handle", `[a-zA-Z0-9][\w.-]*@[a-zA-Z][\w.-]*`, cat, 92, "UPI-style payment identifier")
	r.register("send_money", `(?i)\bsend\b.{0,40}\b(money|amount|cash|rupees|rs\.?|inr)\b`, cat, 85, "Imperative transfer demand")
}

// --- OTP PHISHING PATTERNS (HARD TRIGGER) ---
func (r *Registry) registerOTPPatterns() {
	r.register("otp_token", `(?i)\botp\b`, CategoryOTPPhish, 90, "One-time password mention")
}

// --- PAYMENT PRESSURE PATTERNS ---
// Talking about transfers or fees is common in benign banking chatter, so
// these only add weight.
func (r *Registry) registerPaymentPressurePatterns() {
	cat := CategoryPaymentPressure

	r.register("transfer_demand", `(?i)\btransfer\b.{0,30}\b(money|amount|funds|immediately)\b`, cat, 60, "Transfer pressure")
	r.register("processing_fee", `(?i)\b(processing|registration|activation)\s+fee\b`, cat, 50, "Advance-fee demand")
}

// --- CREDENTIAL HARVEST PATTERNS ---
func (r *Registry) registerCredentialPatterns() {
	cat := CategoryCredentialHarvest

	r.register("share_code", `(?i)\b(share|tell|send)\b.{0,30}\b(code|pin|password)\b`, cat, 60, "Credential sharing demand")
	r.register("cvv_request", `(?i)\bcvv\b`, cat, 55, "Card CVV request")
}

// --- URGENCY PRESSURE PATTERNS ---
func (r *Registry) registerUrgencyPatterns() {
	cat := CategoryUrgency

	r.register("urgent", `(?i)\burgent(ly)?\b`, cat, 40, "Urgency pressure")
	r.register("immediately", `(?i)\bimmediate(ly)?\b`, cat, 40, "Immediacy pressure")
	r.register("today_deadline", `(?i)\b(today|within\s+\d+\s+(hours?|minutes?))\b.{0,30}\b(blocked|suspended|expire)`, cat, 50, "Deadline threat")
	r.register("last_warning", `(?i)\b(final|last)\s+(warning|notice|chance)\b`, cat, 55, "Final warning pressure")
}

// --- VERIFICATION LURE PATTERNS ---
// A verification demand plus a link is the classic phishing funnel.
func (r *Registry) registerVerificationPatterns() {
	cat := CategoryVerification

	r.register("verify", `(?i)\bverif(y|ication)\b`, cat, 45, "Verification demand")
	r.register("click_here", `(?i)\bclick\s+(here|the\s+link|below)\b`, cat, 50, "Click lure")
	r.register("update_details", `(?i)\b(update|confirm)\b.{0,30}\b(details|information|account)\b`, cat, 45, "Detail harvesting")
	r.register("login_link", `(?i)\blog\s?in\b.{0,30}\b(link|portal|immediately)\b`, cat, 45, "Login lure")
}

// --- IDENTITY / KYC PATTERNS ---
func (r *Registry) registerIdentityPatterns() {
	cat := CategoryIdentityKYC

	r.register("kyc", `(?i)\bkyc\b`, cat, 50, "KYC pretext")
	r.register("aadhaar", `(?i)\baadhaa?r\b`, cat, 50, "Aadhaar identity pretext")
	r.register("pan_card", `(?i)\bpan\s?(card|number)\b`, cat, 50, "PAN identity pretext")
}

// --- LOTTERY / REWARD PATTERNS ---
func (r *Registry) registerLotteryPatterns() {
	cat := CategoryLottery

	r.register("lottery_win", `(?i)\b(won|winner)\b.{0,40}\b(lottery|prize|lakh|crore|reward)\b`, cat, 60, "Lottery win bait")
	r.register("lucky_draw", `(?i)\blucky\s+draw\b`, cat, 55, "Lucky draw bait")
	r.register("claim_reward", `(?i)\bclaim\b.{0,30}\b(prize|reward|refund|bonus)\b`, cat, 55, "Reward claim bait")
}

// --- JOB SCAM PATTERNS ---
func (r *Registry) registerJobScamPatterns() {
	cat := CategoryJobScam

	r.register("messenger_job", `(?i)\b(telegram|whatsapp)\s+job\b`, cat, 60, "Messenger job offer")
	r.register("work_from_home", `(?i)\bwork\s+from\s+home\b.{0,40}\b(earn|daily|salary)\b`, cat, 55, "Work-from-home earn bait")
	r.register("earn_daily", `(?i)\bearn\b.{0,20}\b(daily|per\s+day)\b`, cat, 50, "Daily earnings bait")
}

// --- AUTHORITY THREAT PATTERNS ---
func (r *Registry) registerThreatPatterns() {
	cat := CategoryThreat

	r.register("legal_notice", `(?i)\blegal\s+notice\b`, cat, 55, "Legal threat pretext")
	r.register("police_case", `(?i)\b(police|court)\s+(case|complaint|notice)\b`, cat, 60, "Police threat pretext")
	r.register("customs_parcel", `(?i)\b(customs|parcel)\b.{0,30}\b(seized|held|detained)\b`, cat, 60, "Customs parcel pretext")
	r.register("arrest_threat", `(?i)\barrest(ed)?\b`, cat, 50, "Arrest threat")
}

// --- BANKING PRETEXT PATTERNS ---
func (r *Registry) registerBankingPatterns() {
	cat := CategoryBanking

	r.register("account_blocked", `(?i)\baccount\b.{0,20}\b(blocked|suspended|frozen|on\s+hold|disabled)\b`, cat, 55, "Account blocked pretext")
	r.register("bank_alert", `(?i)\bbank\s+alert\b`, cat, 50, "Bank alert pretext")
	r.register("card_blocked", `(?i)\b(debit|credit)\s+card\b.{0,30}\b(blocked|expired|suspended)\b`, cat, 55, "Card blocked pretext")
	r.register("loan_approved", `(?i)\bloan\s+(approved|sanctioned)\b`, cat, 50, "Instant loan bait")
	r.register("refund_pending", `(?i)\brefund\b.{0,30}\b(pending|waiting|initiated)\b`, cat, 50, "Refund bait")
}
