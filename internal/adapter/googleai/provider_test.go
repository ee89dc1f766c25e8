package googleai_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/praxis-legal/praxis/internal/adapter/googleai"
	"github.com/praxis-legal/praxis/internal/config"
	"github.com/praxis-legal/praxis/internal/port/llm"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.0-flash:generateContent" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if key := r.Header.Get("x-goog-api-key"); key != "test-key" {
			t.Fatalf("unexpected api key: %q", key)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"modelVersion": "gemini-2.0-flash",
			"candidates": [{"content": {"role": "model", "parts": [{"text": "Termination clause is one-sided."}]}}],
			"usageMetadata": {"promptTokenCount": 88, "candidatesTokenCount": 10}
		}`))
	}))
	defer srv.Close()

	client := googleai.New(config.Provider{BaseURL: srv.URL, Model: "gemini-2.0-flash"}, "test-key", 5*time.Second)
	resp, err := client.Complete(t.Context(), llm.Request{Prompt: "Review this NDA."})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "Termination clause is one-sided." {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.Provider != googleai.Name {
		t.Errorf("provider = %q, want google", resp.Provider)
	}
	if resp.Usage.InputTokens != 88 || resp.Usage.OutputTokens != 10 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestCompleteNoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates": []}`))
	}))
	defer srv.Close()

	client := googleai.New(config.Provider{BaseURL: srv.URL, Model: "gemini-2.0-flash"}, "test-key", 5*time.Second)
	if _, err := client.Complete(t.Context(), llm.Request{Prompt: "hi"}); err == nil {
		t.Fatal("expected error for no candidates")
	}
}
