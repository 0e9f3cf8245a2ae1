package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/config"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

func TestOllamaGenerator_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"response": "  Annual returns are filed on the central portal.  ",
		})
	}))
	defer srv.Close()

	g, err := NewOllamaGenerator("llama3", srv.URL, 0)
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), Request{Prompt: "how are returns filed", MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, "Annual returns are filed on the central portal.", text)
}

func TestOllamaGenerator_FailureWrapsGenerationUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	g, err := NewOllamaGenerator("llama3", srv.URL, 0)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), Request{Prompt: "anything"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderFailed)
	assert.ErrorIs(t, err, types.ErrGenerationUnavailable)
}

func TestOpenAIGenerator_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Producers register once."}},
			},
		})
	}))
	defer srv.Close()

	g, err := NewOpenAIGenerator("key", "", srv.URL, 0)
	require.NoError(t, err)

	text, err := g.Generate(context.Background(), Request{Prompt: "registration", MaxTokens: 50})
	require.NoError(t, err)
	assert.Equal(t, "Producers register once.", text)
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	g, err := NewOllamaGenerator("llama3", "http://localhost:11434", 0)
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), Request{Prompt: "   "})
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(config.GeneratorConfig{Provider: "markov"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestNew_TimeoutFromConfig(t *testing.T) {
	g, err := New(config.GeneratorConfig{Provider: "ollama", TimeoutSeconds: 9})
	require.NoError(t, err)

	ollama, ok := g.(*OllamaGenerator)
	require.True(t, ok)
	assert.Equal(t, 9*time.Second, ollama.httpClient.Timeout)

	// Zero falls back to the default rather than disabling the timeout.
	fallback, err := NewOllamaGenerator("llama3", "http://localhost:11434", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultHTTPTimeout, fallback.httpClient.Timeout)
}
