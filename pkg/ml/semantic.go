package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/rakshaklabs/rakshak/pkg/httputil"
)

// SemanticProvider is an embedding-based ProbabilityProvider. The scam
// template corpus is embedded into an in-memory chromem collection at
// startup; at classify time the top-match cosine similarity against the
// corpus serves as the scam probability estimate.
//
// This is the fallback provider for deployments without a model server:
// it needs only a local Ollama instance for embeddings.
type SemanticProvider struct {
	db         *chromem.DB
	collection *chromem.Collection
	mu         sync.RWMutex
	ready      bool
}

// NewSemanticProvider creates a provider backed by Ollama embeddings.
// Call Seed before first use.
func NewSemanticProvider(ollamaURL string) (*SemanticProvider, error) {
	db := chromem.NewDB()

	collection, err := db.CreateCollection("scam_sentences", nil, newOllamaEmbeddingFunc("embeddinggemma", ollamaURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &SemanticProvider{db: db, collection: collection}, nil
}

// newOllamaEmbeddingFunc builds a chromem embedding function against
// Ollama's /api/embeddings endpoint.
func newOllamaEmbeddingFunc(model, baseURL string) chromem.EmbeddingFunc {
	client := httputil.SlowClient()
	baseURL = strings.TrimRight(baseURL, "/")

	return func(ctx context.Context, text string) ([]float32, error) {
		body, err := json.Marshal(map[string]string{
			"model":  model,
			"prompt": text,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/embeddings", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create embedding request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		defer httputil.DrainAndClose(resp.Body)

		if resp.StatusCode != http.StatusOK {
			errBody, _ := httputil.ReadErrorBody(resp.Body)
			return nil, fmt.Errorf("ollama returned %d: %s", resp.StatusCode, string(errBody))
		}

		var result struct {
			Embedding []float32 `json:"embedding"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode embedding response: %w", err)
		}
		return result.Embedding, nil
	}
}

// Seed embeds the scam sentence corpus into the collection. Documents are
// added sequentially to avoid overwhelming the Ollama API.
func (sp *SemanticProvider) Seed(ctx context.Context, sentences []string) error {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	docs := make([]chromem.Document, len(sentences))
	for i, s := range sentences {
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("scam_%d", i),
			Content: s,
		}
	}

	if err := sp.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to embed corpus: %w", err)
	}

	sp.ready = true
	log.Printf("[SEMANTIC] Embedded %d corpus sentences", len(docs))
	return nil
}

// IsReady reports whether the corpus has been embedded.
func (sp *SemanticProvider) IsReady() bool {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.ready
}

// Probability returns the cosine similarity of the closest corpus sentence.
func (sp *SemanticProvider) Probability(ctx context.Context, text string) (float64, error) {
	sp.mu.RLock()
	defer sp.mu.RUnlock()

	if !sp.ready {
		return 0, fmt.Errorf("semantic provider not seeded")
	}

	results, err := sp.collection.Query(ctx, strings.ToLower(text), 1, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("corpus query failed: %w", err)
	}
	if len(results) == 0 {
		return 0, nil
	}

	sim := float64(results[0].Similarity)
	if sim < 0 {
		sim = 0
	}
	if sim > 1 {
		sim = 1
	}
	return sim, nil
}
