package embedding

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOllamaGenerateParsesAndNormalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"embedding": [3.0, 4.0]}`))
	}))
	defer server.Close()

	provider := NewOllamaProvider(server.URL, "nomic-embed-text")
	res, err := provider.Generate(context.Background(), "direito de arrependimento", "RETRIEVAL_QUERY")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	values := res.Embedding.Values
	if len(values) != 2 {
		t.Fatalf("got %d values, want 2", len(values))
	}
	var magnitude float64
	for _, v := range values {
		magnitude += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(magnitude)-1.0) > 1e-6 {
		t.Errorf("vector magnitude = %f, want 1.0", math.Sqrt(magnitude))
	}
}

func TestOllamaGenerateStopsOnContextCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Stall until the client gives up.
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	provider := NewOllamaProvider(server.URL, "")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := provider.Generate(ctx, "qualquer texto", "RETRIEVAL_QUERY")
	if err == nil {
		t.Fatal("Generate() = nil error against a stalled backend, want context error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Generate() blocked %v past cancellation", elapsed)
	}
}

func TestOllamaClientHasTimeout(t *testing.T) {
	provider := NewOllamaProvider("", "").(*OllamaProvider)
	if provider.Client.Timeout == 0 {
		t.Error("ollama client has no timeout")
	}
}

func TestGeminiGenerateStopsOnContextCancel(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	provider := NewGeminiProvider("test-key").(*GeminiProvider)
	provider.BaseURL = server.URL

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := provider.Generate(ctx, "qualquer texto", "RETRIEVAL_QUERY"); err == nil {
		t.Fatal("Generate() = nil error against a stalled backend, want context error")
	}
}

func TestGeminiClientHasTimeout(t *testing.T) {
	provider := NewGeminiProvider("test-key").(*GeminiProvider)
	if provider.Client.Timeout == 0 {
		t.Error("gemini client has no timeout")
	}
}
