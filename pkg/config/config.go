// Package config holds global settings for the Rakshak honeypot gateway.
// All settings can be configured via environment variables or programmatically.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds global settings for the honeypot gateway.
type Config struct {
	// === Boundary Auth ===
	APIKey string // x-api-key expected on POST /honeypot (env: RAKSHAK_API_KEY)

	// === Classifier Thresholds ===
	// The cascade is documented in pkg/ml; these are the canonical knobs.
	ScoreThreshold        int     // weighted score at/above this = scam (default: 7)
	ScoreDenominator      int     // score normalizer for confidence (default: 10)
	HighConfidenceCutover float64 // external probability above this = scam regardless of score (default: 0.65)
	MinWordCount          int     // messages at/below this word count may take the greeting bypass (default: 3)

	// === Static Corpus Inputs ===
	DatasetPath  string // scam-sentence template file, .txt lines or .yaml corpus (default: "scam_sentences.txt")
	KeywordsPath string // base trigger keyword file; empty = embedded list
	MaxTemplates int    // cap on loaded templates (default: 200)

	// === External Probability Provider ===
	ModelServerURL  string // HTTP model server exposing POST /predict; empty disables it
	OllamaBaseURL   string // Ollama endpoint for the semantic provider's embeddings
	EnableSemantics bool   // enable chromem-go semantic provider when no model server is set

	// === Session Management ===
	SessionTTL      time.Duration // inactivity TTL before a session is recreated fresh (default: 30m)
	CleanupInterval time.Duration // background sweep cadence for expired sessions (default: 5m)

	// === Rate Limiting (fixed window per client) ===
	RateLimitWindow time.Duration // window length (default: 1m)
	RateLimitMax    int           // request ceiling per window (default: 30)

	// === Escalation ===
	CollectorURL          string        // external collector endpoint for scam reports
	MinTurnsForEscalation int           // conversation length required before reporting (default: 3)
	EscalationTimeout     time.Duration // outbound report timeout (default: 5s)

	// === Artifact Graph ===
	ArtifactGraphCapacity int // max tracked payment identifiers before eviction (default: 10000)

	// === Optional Redis Backend ===
	RedisAddr     string // when set, sessions and rate limits live in Redis
	RedisPassword string
	RedisDB       int
}

// NewDefaultConfig creates a Config with sensible defaults.
// All settings can be overridden via environment variables.
func NewDefaultConfig() *Config {
	return &Config{
		APIKey: GetEnv("RAKSHAK_API_KEY", "rakshak-secret-key"),

		ScoreThreshold:        GetEnvInt("RAKSHAK_SCORE_THRESHOLD", 7),
		ScoreDenominator:      GetEnvInt("RAKSHAK_SCORE_DENOMINATOR", 10),
		HighConfidenceCutover: GetEnvFloat("RAKSHAK_ML_CUTOVER", 0.65),
		MinWordCount:          GetEnvInt("RAKSHAK_MIN_WORDS", 3),

		DatasetPath:  GetEnv("RAKSHAK_DATASET", "scam_sentences.txt"),
		KeywordsPath: GetEnv("RAKSHAK_KEYWORDS", ""),
		MaxTemplates: GetEnvInt("RAKSHAK_MAX_TEMPLATES", 200),

		ModelServerURL:  GetEnv("RAKSHAK_MODEL_URL", ""),
		OllamaBaseURL:   GetEnv("RAKSHAK_OLLAMA_URL", "http://localhost:11434"),
		EnableSemantics: GetEnvBool("RAKSHAK_ENABLE_SEMANTICS", false),

		SessionTTL:      GetEnvDuration("RAKSHAK_SESSION_TTL", 30*time.Minute),
		CleanupInterval: GetEnvDuration("RAKSHAK_CLEANUP_INTERVAL", 5*time.Minute),

		RateLimitWindow: GetEnvDuration("RAKSHAK_RATE_WINDOW", time.Minute),
		RateLimitMax:    GetEnvInt("RAKSHAK_RATE_MAX", 30),

		CollectorURL:          GetEnv("RAKSHAK_COLLECTOR_URL", "http://localhost:9090/report"),
		MinTurnsForEscalation: GetEnvInt("RAKSHAK_MIN_TURNS", 3),
		EscalationTimeout:     GetEnvDuration("RAKSHAK_ESCALATION_TIMEOUT", 5*time.Second),

		ArtifactGraphCapacity: GetEnvInt("RAKSHAK_GRAPH_CAPACITY", 10000),

		RedisAddr:     GetEnv("RAKSHAK_REDIS_ADDR", ""),
		RedisPassword: GetEnv("RAKSHAK_REDIS_PASSWORD", ""),
		RedisDB:       GetEnvInt("RAKSHAK_REDIS_DB", 0),
	}
}

// Helper functions for environment variable parsing.
// These are exported for use by other packages.

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvFloat returns the float64 value of an environment variable or a default value.
func GetEnvFloat(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

// GetEnvDuration returns the duration value of an environment variable
// ("30s", "5m", "1h") or a default value. Bare integers are seconds.
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// RequiredSecret defines a required environment variable for startup validation.
type RequiredSecret struct {
	Name        string // Environment variable name
	Description string // Human-readable description
	Production  bool   // Required in production only (false = required always)
}

// CriticalSecrets returns the list of secrets required for the gateway to operate.
func CriticalSecrets() []RequiredSecret {
	return []RequiredSecret{
		{Name: "RAKSHAK_API_KEY", Description: "API key for honeypot endpoint authentication", Production: true},
	}
}

// isProduction reports whether RAKSHAK_ENV names a production deployment.
func isProduction() bool {
	env := strings.ToLower(os.Getenv("RAKSHAK_ENV"))
	return env == "production" || env == "prod"
}

// Validate checks that all required configuration is present.
// In production mode this returns an error if critical secrets are missing
// or left at their development defaults. In development mode it logs
// warnings but allows startup for local testing.
func (c *Config) Validate() error {
	prod := isProduction()

	var missing []string
	for _, secret := range CriticalSecrets() {
		value := os.Getenv(secret.Name)
		if value == "" {
			if secret.Production && !prod {
				log.Printf("[STARTUP] Warning: missing optional secret: %s (%s)", secret.Name, secret.Description)
				continue
			}
			missing = append(missing, secret.Name+" ("+secret.Description+")")
		}
	}

	if prod && c.APIKey == "rakshak-secret-key" {
		missing = append(missing, "RAKSHAK_API_KEY (must not be the development default)")
	}

	if c.ScoreDenominator <= 0 {
		return fmt.Errorf("score denominator must be positive, got %d", c.ScoreDenominator)
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("rate limit window/ceiling must be positive")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required secrets: %s", strings.Join(missing, ", "))
	}
	return nil
}

// MustValidate calls Validate and fatally exits if validation fails.
// Call this at startup before starting the server.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		log.Fatalf("[STARTUP] FATAL: configuration validation failed: %v", err)
	}
	log.Println("[STARTUP] Configuration validated successfully")
}
