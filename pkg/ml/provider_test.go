package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestModelClient_Probability(t *testing.T) {
	var gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("path = %q, want /predict", r.URL.Path)
		}
		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		gotText = req.Text
		json.NewEncoder(w).Encode(predictResponse{ScamProbability: 0.87})
	}))
	defer server.Close()

	mc := NewModelClient(server.URL + "/")

	p, err := mc.Probability(context.Background(), "send money now")
	if err != nil {
		t.Fatal(err)
	}
	if p != 0.87 {
		t.Errorf("probability = %f, want 0.87", p)
	}
	if gotText != "send money now" {
		t.Errorf("server received %q", gotText)
	}
}

func TestModelClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	mc := NewModelClient(server.URL)
	if _, err := mc.Probability(context.Background(), "hello"); err == nil {
		t.Error("expected error on 500 response")
	}
}

func TestModelClient_OutOfRangeProbability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(predictResponse{ScamProbability: 1.7})
	}))
	defer server.Close()

	mc := NewModelClient(server.URL)
	if _, err := mc.Probability(context.Background(), "hello"); err == nil {
		t.Error("expected error on out-of-range probability")
	}
}

func TestModelClient_Unreachable(t *testing.T) {
	mc := NewModelClient("http://127.0.0.1:1")
	if _, err := mc.Probability(context.Background(), "hello"); err == nil {
		t.Error("expected error when server is unreachable")
	}
}
