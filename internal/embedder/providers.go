package embedder

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderLocal  = "local"

	// Default models
	DefaultOpenAIModel = "text-embedding-3-small"
	DefaultOllamaModel = "nomic-embed-text"

	// DefaultDimension matches the corpus embedder the collections were
	// populated with. Mismatches are a hard ingestion error downstream.
	DefaultDimension = 768

	// Batch limits
	MaxBatchSize = 100

	defaultHTTPTimeout = 30 * time.Second
)

// OpenAIProvider implements Embedder using the OpenAI embeddings API.
type OpenAIProvider struct {
	apiKey     string
	model      string
	baseURL    string
	dimension  int
	httpClient *http.Client
	cache      *Cache
}

// NewOpenAIProvider creates a new OpenAI embedder. A non-positive timeout
// falls back to the default.
func NewOpenAIProvider(apiKey, model, baseURL string, dimension int, timeout time.Duration, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: openai api key not set", ErrUnknownProvider)
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &OpenAIProvider{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
	}, nil
}

func (o *OpenAIProvider) Embed(ctx context.Context, text string, mode Mode) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := validateMode(mode); err != nil {
		return nil, err
	}

	key := CacheKey(text, mode)
	if o.cache != nil {
		if v, ok := o.cache.Get(key); ok {
			return v, nil
		}
	}

	vectors, err := o.EmbedBatch(ctx, []string{text}, mode)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned: %w", ErrProviderFailed, types.ErrEmbeddingUnavailable)
	}
	return vectors[0], nil
}

func (o *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	if err := validateBatch(texts); err != nil {
		return nil, err
	}
	if err := validateMode(mode); err != nil {
		return nil, err
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	// OpenAI embedding models do not distinguish document and query inputs;
	// the same embedding serves both modes.
	config := DefaultRetryConfig()
	vectors, err := retryWithBackoff(ctx, config, func() ([][]float32, error) {
		return o.callAPI(ctx, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d retries: %v: %w",
			ErrProviderFailed, config.MaxRetries, err, types.ErrEmbeddingUnavailable)
	}

	if o.cache != nil {
		for i, v := range vectors {
			o.cache.Set(CacheKey(texts[i], mode), v)
		}
	}

	return vectors, nil
}

func (o *OpenAIProvider) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"input": texts,
		"model": o.model,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	vectors := make([][]float32, len(apiResp.Data))
	for i, data := range apiResp.Data {
		vectors[i] = data.Embedding
	}

	return vectors, nil
}

func (o *OpenAIProvider) Dimension() int {
	return o.dimension
}

func (o *OpenAIProvider) Provider() string {
	return ProviderOpenAI
}

func (o *OpenAIProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

// OllamaProvider implements Embedder using a local Ollama server. Models like
// nomic-embed-text distinguish document and query inputs via a task prefix.
type OllamaProvider struct {
	model      string
	baseURL    string
	dimension  int
	httpClient *http.Client
	cache      *Cache
}

// NewOllamaProvider creates a new Ollama embedder. A non-positive timeout
// falls back to the default.
func NewOllamaProvider(model, baseURL string, dimension int, timeout time.Duration, cache *Cache) (*OllamaProvider, error) {
	if model == "" {
		model = DefaultOllamaModel
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	return &OllamaProvider{
		model:      model,
		baseURL:    baseURL,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
	}, nil
}

func (l *OllamaProvider) Embed(ctx context.Context, text string, mode Mode) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := validateMode(mode); err != nil {
		return nil, err
	}

	key := CacheKey(text, mode)
	if l.cache != nil {
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
	}

	config := DefaultRetryConfig()
	vector, err := retryWithBackoff(ctx, config, func() ([]float32, error) {
		return l.callAPI(ctx, l.taskPrefix(mode)+text)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d retries: %v: %w",
			ErrProviderFailed, config.MaxRetries, err, types.ErrEmbeddingUnavailable)
	}

	if l.cache != nil {
		l.cache.Set(key, vector)
	}

	return vector, nil
}

func (l *OllamaProvider) EmbedBatch(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	if err := validateBatch(texts); err != nil {
		return nil, err
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	// The embeddings endpoint takes one prompt per call.
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := l.Embed(ctx, text, mode)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}

// taskPrefix maps the embedding mode to the nomic-style task prefix.
func (l *OllamaProvider) taskPrefix(mode Mode) string {
	if mode == ModeQuery {
		return "search_query: "
	}
	return "search_document: "
}

func (l *OllamaProvider) callAPI(ctx context.Context, prompt string) ([]float32, error) {
	reqBody := map[string]interface{}{
		"model":  l.model,
		"prompt": prompt,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", l.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return apiResp.Embedding, nil
}

func (l *OllamaProvider) Dimension() int {
	return l.dimension
}

func (l *OllamaProvider) Provider() string {
	return ProviderOllama
}

func (l *OllamaProvider) Close() error {
	l.httpClient.CloseIdleConnections()
	return nil
}

// LocalProvider is a deterministic hash-based embedder used for development
// and tests. Vectors are stable per (text, mode) pair and unit-normalized.
type LocalProvider struct {
	dimension int
	cache     *Cache
}

// NewLocalProvider creates a deterministic local embedder.
func NewLocalProvider(dimension int, cache *Cache) (*LocalProvider, error) {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &LocalProvider{dimension: dimension, cache: cache}, nil
}

func (p *LocalProvider) Embed(ctx context.Context, text string, mode Mode) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	if err := validateMode(mode); err != nil {
		return nil, err
	}

	key := CacheKey(text, mode)
	if p.cache != nil {
		if v, ok := p.cache.Get(key); ok {
			return v, nil
		}
	}

	vector := make([]float32, p.dimension)
	seed := sha256.Sum256([]byte(text))
	for i := range vector {
		vector[i] = float32(seed[i%len(seed)]) / 255.0
	}
	vector = NormalizeVector(vector)

	if p.cache != nil {
		p.cache.Set(key, vector)
	}

	return vector, nil
}

func (p *LocalProvider) EmbedBatch(ctx context.Context, texts []string, mode Mode) ([][]float32, error) {
	if err := validateBatch(texts); err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := p.Embed(ctx, text, mode)
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (p *LocalProvider) Dimension() int {
	return p.dimension
}

func (p *LocalProvider) Provider() string {
	return ProviderLocal
}

func (p *LocalProvider) Close() error {
	return nil
}

// NormalizeVector normalizes a vector to unit length (for cosine similarity).
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val * val)
	}

	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / norm
	}

	return result
}
