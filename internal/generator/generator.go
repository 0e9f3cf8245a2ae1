// Package generator provides the generative-knowledge capability consumed by
// the answer composer: prompt in, text out, with bounded length and
// temperature. Failures surface as errors wrapping
// types.ErrGenerationUnavailable; the composer converts them into the
// retrieved-text-only fallback rather than showing an error to the user.
package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/config"
)

// Common errors
var (
	ErrEmptyPrompt     = errors.New("prompt cannot be empty")
	ErrUnknownProvider = errors.New("unknown generation provider")
	ErrProviderFailed  = errors.New("generation provider failed")
)

// Request bounds one generation call.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Generator produces text from a prompt.
type Generator interface {
	// Generate returns the model's completion for the request.
	Generate(ctx context.Context, req Request) (string, error)

	// Model returns the configured model name.
	Model() string

	// Close releases any resources held by the generator.
	Close() error
}

// New creates a generator from configuration. An empty API key falls back to
// the OPENAI_API_KEY environment variable for the openai provider.
func New(cfg config.GeneratorConfig) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderOpenAI:
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		return NewOpenAIGenerator(apiKey, cfg.Model, cfg.BaseURL, cfg.Timeout())
	case ProviderOllama:
		return NewOllamaGenerator(cfg.Model, cfg.BaseURL, cfg.Timeout())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

// validateRequest rejects requests no provider can serve.
func validateRequest(req Request) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}
