package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rakshaklabs/rakshak/pkg/httputil"
)

// ProbabilityProvider supplies an external scam probability estimate for a
// message. The classifier treats the provider as a black box: a value in
// [0,1] blends into the weighted score, an error means the cascade runs on
// rules alone with the verdict logic unchanged.
type ProbabilityProvider interface {
	Probability(ctx context.Context, text string) (float64, error)
}

// ModelClient calls an external model server over HTTP.
type ModelClient struct {
	baseURL string
	client  *http.Client
}

// NewModelClient creates a client for a model server exposing POST /predict.
func NewModelClient(baseURL string) *ModelClient {
	return &ModelClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httputil.MediumClient(),
	}
}

type predictRequest struct {
	Text string `json:"text"`
}

type predictResponse struct {
	ScamProbability float64 `json:"scam_probability"`
}

// Probability POSTs the message to the model server and returns its scam
// probability estimate.
func (mc *ModelClient) Probability(ctx context.Context, text string) (float64, error) {
	body, err := json.Marshal(predictRequest{Text: text})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal predict request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mc.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := mc.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("model server request failed: %w", err)
	}
	defer httputil.DrainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		errBody, _ := httputil.ReadErrorBody(resp.Body)
		return 0, fmt.Errorf("model server returned %d: %s", resp.StatusCode, string(errBody))
	}

	data, err := httputil.ReadResponseBody(resp.Body, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to read predict response: %w", err)
	}

	var out predictResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("failed to decode predict response: %w", err)
	}

	if out.ScamProbability < 0 || out.ScamProbability > 1 {
		return 0, fmt.Errorf("model server returned out-of-range probability %f", out.ScamProbability)
	}
	return out.ScamProbability, nil
}
