package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultOllamaModel = "llama3"

	defaultHTTPTimeout = 60 * time.Second

	// maxGenerateRetries bounds transient-failure retries. Generation calls
	// are slower than embedding calls, so the budget is smaller.
	maxGenerateRetries = 2
)

// OpenAIGenerator calls the OpenAI chat completions API.
type OpenAIGenerator struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAIGenerator creates a new OpenAI generator. A non-positive timeout
// falls back to the default.
func NewOpenAIGenerator(apiKey, model, baseURL string, timeout time.Duration) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai api key not set", ErrUnknownProvider)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &OpenAIGenerator{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt < maxGenerateRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		text, err := g.callAPI(ctx, req)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w: %v: %w", ErrProviderFailed, lastErr, types.ErrGenerationUnavailable)
}

func (g *OpenAIGenerator) callAPI(ctx context.Context, req Request) (string, error) {
	reqBody := map[string]interface{}{
		"model": g.model,
		"messages": []map[string]string{
			{"role": "user", "content": req.Prompt},
		},
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return apiResp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) Model() string {
	return g.model
}

func (g *OpenAIGenerator) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}

// OllamaGenerator calls a local Ollama server's generate endpoint.
type OllamaGenerator struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOllamaGenerator creates a new Ollama generator. A non-positive timeout
// falls back to the default.
func NewOllamaGenerator(model, baseURL string, timeout time.Duration) (*OllamaGenerator, error) {
	if model == "" {
		model = DefaultOllamaModel
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &OllamaGenerator{
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (g *OllamaGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := validateRequest(req); err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 0; attempt < maxGenerateRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		text, err := g.callAPI(ctx, req)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		lastErr = err
	}

	return "", fmt.Errorf("%w: %v: %w", ErrProviderFailed, lastErr, types.ErrGenerationUnavailable)
}

func (g *OllamaGenerator) callAPI(ctx context.Context, req Request) (string, error) {
	reqBody := map[string]interface{}{
		"model":  g.model,
		"prompt": req.Prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return apiResp.Response, nil
}

func (g *OllamaGenerator) Model() string {
	return g.model
}

func (g *OllamaGenerator) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}
