package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/rakshaklabs/rakshak/pkg/config"
	"github.com/rakshaklabs/rakshak/pkg/corpus"
	"github.com/rakshaklabs/rakshak/pkg/escalate"
	"github.com/rakshaklabs/rakshak/pkg/extract"
	"github.com/rakshaklabs/rakshak/pkg/honeypot"
	"github.com/rakshaklabs/rakshak/pkg/ml"
	"github.com/rakshaklabs/rakshak/pkg/session"
)

const Version = "0.1.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		port := "8080"
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		runHTTPServer(port)
	case "scan":
		if len(os.Args) < 3 {
			fmt.Println("Usage: rakshak scan <text>")
			os.Exit(1)
		}
		runCLIScan(strings.Join(os.Args[2:], " "))
	case "gen":
		n := 100
		if len(os.Args) > 2 {
			if parsed, err := strconv.Atoi(os.Args[2]); err == nil && parsed > 0 {
				n = parsed
			}
		}
		runGenerate(n)
	case "version":
		fmt.Printf("Rakshak v%s\n", Version)
		fmt.Println("Agentic Scam Honeypot Gateway")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Rakshak v%s - Agentic Scam Honeypot Gateway\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  rakshak serve [port]   Start the honeypot gateway (default: 8080)")
	fmt.Println("  rakshak scan <text>    Classify a single message from the CLI")
	fmt.Println("  rakshak gen [n]        Print n synthetic scam sentences (default: 100)")
	fmt.Println("  rakshak version        Show version")
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Println("  rakshak serve 8080")
	fmt.Println("  rakshak scan \"your account is blocked, verify at http://bad.link\"")
	fmt.Println("  rakshak gen 500 > scam_sentences.txt")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  RAKSHAK_API_KEY        API key expected on POST /honeypot")
	fmt.Println("  RAKSHAK_COLLECTOR_URL  Collector endpoint for escalation reports")
	fmt.Println("  RAKSHAK_MODEL_URL      External model server (POST /predict)")
	fmt.Println("  RAKSHAK_REDIS_ADDR     Redis address for multi-node session state")
}

// buildEngine assembles the full pipeline from config: corpus, optional
// probability provider, session store (Redis when configured), rate
// limiter, notifier.
func buildEngine(cfg *config.Config) (*honeypot.Engine, func()) {
	corp := corpus.Load(cfg.DatasetPath, cfg.KeywordsPath, cfg.MaxTemplates)
	log.Printf("[STARTUP] Corpus loaded: %d keywords, %d templates", len(corp.Keywords), len(corp.Templates))

	var provider ml.ProbabilityProvider
	switch {
	case cfg.ModelServerURL != "":
		provider = ml.NewModelClient(cfg.ModelServerURL)
		log.Printf("[STARTUP] ✓ Probability provider: model server at %s", cfg.ModelServerURL)
	case cfg.EnableSemantics:
		sp, err := ml.NewSemanticProvider(cfg.OllamaBaseURL)
		if err != nil {
			log.Printf("[STARTUP] ○ Semantic provider disabled (init failed: %v)", err)
			break
		}
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		if err := sp.Seed(ctx, corp.Templates); err != nil {
			log.Printf("[STARTUP] ○ Semantic provider disabled (corpus embed failed: %v)", err)
		} else {
			provider = sp
			log.Println("[STARTUP] ✓ Probability provider: chromem-go + Ollama embeddings")
		}
		cancel()
	default:
		log.Println("[STARTUP] ○ Probability provider disabled (rules only)")
	}

	var store session.Store
	var limiter honeypot.Limiter
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		rs, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
		cancel()
		if err != nil {
			log.Fatalf("[STARTUP] FATAL: redis unavailable: %v", err)
		}
		store = rs
		limiter = rs.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
		log.Printf("[STARTUP] ✓ Session store: redis at %s", cfg.RedisAddr)
	} else {
		store = session.NewMemoryStore(cfg.SessionTTL, cfg.CleanupInterval)
		rl := session.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
		limiter = honeypot.MemoryLimiter{RL: rl}
		go pruneLoop(rl, cfg.CleanupInterval)
		log.Println("[STARTUP] ✓ Session store: in-memory")
	}

	classifier := ml.NewClassifier(cfg, corp, provider)
	notifier := escalate.NewNotifier(cfg.CollectorURL, cfg.EscalationTimeout)

	engine := honeypot.NewEngine(cfg, store, limiter, classifier, notifier)
	return engine, func() { _ = store.Close() }
}

// pruneLoop bounds the in-memory rate limiter's window map.
func pruneLoop(rl *session.RateLimiter, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		rl.Prune()
	}
}

// ============================================================================
// HTTP Server Mode
// ============================================================================

func runHTTPServer(port string) {
	cfg := config.NewDefaultConfig()
	cfg.MustValidate()

	engine, shutdown := buildEngine(cfg)
	defer shutdown()

	app := fiber.New(fiber.Config{
		AppName: "Rakshak",
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": Version})
	})

	app.Get("/", func(c fiber.Ctx) error {
		return c.Type("html").SendString(landingPage)
	})

	app.Get("/user", func(c fiber.Ctx) error {
		return c.Type("html").SendString(userPage)
	})

	app.Get("/admin", func(c fiber.Ctx) error {
		stats, err := json.MarshalIndent(engine.Stats(c.Context()), "", "  ")
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "stats unavailable"})
		}
		return c.Type("html").SendString(fmt.Sprintf(adminPage, string(stats)))
	})

	app.Get("/admin/stats", func(c fiber.Ctx) error {
		return c.JSON(engine.Stats(c.Context()))
	})

	app.Post("/honeypot", func(c fiber.Ctx) error {
		if c.Get("x-api-key") != cfg.APIKey {
			return c.Status(401).JSON(fiber.Map{"error": "invalid api key"})
		}

		var req honeypot.Request
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		req.ClientID = c.IP()

		resp, err := engine.Handle(c.Context(), req)
		switch err {
		case nil:
			return c.JSON(resp)
		case honeypot.ErrEmptyMessage:
			return c.Status(400).JSON(fiber.Map{"error": "message field is required"})
		case honeypot.ErrRateLimited:
			return c.Status(429).JSON(fiber.Map{"error": "rate limit exceeded"})
		default:
			log.Printf("[HONEYPOT] request failed: %v", err)
			return c.Status(500).JSON(fiber.Map{"error": "internal error"})
		}
	})

	log.Printf("[STARTUP] Rakshak gateway starting on :%s", port)
	log.Printf("[STARTUP] Endpoints:")
	log.Printf("[STARTUP]   GET  /health       - Health check")
	log.Printf("[STARTUP]   GET  /             - Landing page")
	log.Printf("[STARTUP]   GET  /user         - Message checker page")
	log.Printf("[STARTUP]   GET  /admin        - Stats page (JSON at /admin/stats)")
	log.Printf("[STARTUP]   POST /honeypot     - Honeypot conversation endpoint")

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}

// ============================================================================
// CLI Modes
// ============================================================================

func runCLIScan(text string) {
	cfg := config.NewDefaultConfig()
	corp := corpus.Load(cfg.DatasetPath, cfg.KeywordsPath, cfg.MaxTemplates)
	classifier := ml.NewClassifier(cfg, corp, nil)

	result := struct {
		Text     string           `json:"text"`
		Verdict  ml.Verdict       `json:"verdict"`
		Entities extract.Entities `json:"entities"`
	}{
		Text:     text,
		Verdict:  classifier.Classify(context.Background(), text),
		Entities: extract.Extract(text),
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}

func runGenerate(n int) {
	for i, s := range corpus.Generate(n, time.Now().UnixNano()) {
		fmt.Printf("%d. %s\n", i+1, s)
	}
}
