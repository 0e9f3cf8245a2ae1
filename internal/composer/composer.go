// Package composer decides the final answer text for a query and enforces
// the output-shape policy: cache first, retrieval next, generative blending
// where safe, and a fixed fallback message when nothing else is available.
package composer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/answercache"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/config"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/generator"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/session"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// NoInformationMessage is returned when neither retrieval nor generation
// produced anything usable. The user never sees an empty answer or an error.
const NoInformationMessage = "I don't have information on that. You could try rephrasing, or ask about EPR registration, filing requirements, or compliance targets."

// Retriever is the slice of the retrieval engine the composer consumes.
type Retriever interface {
	Retrieve(ctx context.Context, query string) (types.RetrievalResult, error)
}

// IntentClassifier assigns an intent to a query.
type IntentClassifier interface {
	Classify(query string) types.QueryIntent
}

// Composer routes a query through cache, retrieval, and generation.
type Composer struct {
	retriever  Retriever
	generator  generator.Generator
	cache      *answercache.Cache
	classifier IntentClassifier
	cfg        config.ComposerConfig
	genCfg     config.GeneratorConfig
	logger     *zap.Logger
}

// New creates a composer. The generator may be nil, in which case every
// query takes the retrieved-text-only path. genCfg supplies the sampling
// bounds applied to every generation call.
func New(ret Retriever, gen generator.Generator, cache *answercache.Cache, classifier IntentClassifier, cfg config.ComposerConfig, genCfg config.GeneratorConfig, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{
		retriever:  ret,
		generator:  gen,
		cache:      cache,
		classifier: classifier,
		cfg:        cfg,
		genCfg:     genCfg,
		logger:     logger,
	}
}

// Answer produces the answer for one query within a session.
//
// Errors returned here are construction errors (malformed query); every
// external failure downstream resolves into a fallback answer instead.
func (c *Composer) Answer(ctx context.Context, query string, sess *session.Session) (types.Answer, error) {
	if strings.TrimSpace(query) == "" {
		return types.Answer{}, fmt.Errorf("empty query: %w", types.ErrMalformedQuery)
	}

	queryIntent := c.classifier.Classify(query)

	// CACHE_CHECK: a hit is returned verbatim, no re-composition or
	// re-filtering. Time-sensitive queries always miss.
	if cached, ok := c.cache.Get(query); ok {
		cached.Source = types.SourceCache
		cached.Cached = true
		c.finishTurn(query, &cached, sess)
		return cached, nil
	}

	answer := c.compose(ctx, query, queryIntent, sess)
	answer.Intent = queryIntent
	answer.Suggestions = c.suggestions(queryIntent, sess)

	// Fallback answers are not cached: the store may gain the missing
	// documents at any time.
	if answer.Source != types.SourceFallback {
		c.cache.Put(query, answer)
	}

	c.finishTurn(query, &answer, sess)
	return answer, nil
}

// compose runs RETRIEVE → COMPOSE → FILTER and never returns an error.
func (c *Composer) compose(ctx context.Context, query string, queryIntent types.QueryIntent, sess *session.Session) types.Answer {
	res, err := c.retriever.Retrieve(ctx, query)
	if err != nil {
		c.logger.Warn("retrieval failed, using fallback answer",
			zap.String("query_prefix", prefix(query, 64)),
			zap.Error(err))
		return types.Answer{Text: NoInformationMessage, Source: types.SourceFallback}
	}
	if !res.Found {
		return types.Answer{Text: NoInformationMessage, Source: types.SourceFallback}
	}

	retrieved := strings.TrimSpace(res.CombinedText)
	provenance := provenanceOf(res.Hits)

	// Deadline answers come verbatim from the source of record. Paraphrasing
	// a filing date through a generative model is a correctness risk.
	if queryIntent == types.IntentDeadline && len(retrieved) >= c.cfg.MinDeadlineContextChars {
		return types.Answer{
			Text:       retrieved,
			Source:     types.SourceDatabase,
			Provenance: provenance,
		}
	}

	blended, err := c.blend(ctx, query, retrieved)
	if err != nil {
		c.logger.Warn("generation unavailable, answering with retrieved text",
			zap.String("query_prefix", prefix(query, 64)),
			zap.Error(err))
		return types.Answer{
			Text:       cleanup(retrieved),
			Source:     types.SourceDatabase,
			Provenance: provenance,
		}
	}

	if len(blended) > c.cfg.FilterAboveChars {
		blended = c.filter(ctx, query, blended)
	}

	return types.Answer{
		Text:       cleanup(blended),
		Source:     types.SourceBlended,
		Provenance: provenance,
	}
}

// blend obtains a generative-knowledge answer and merges it with the
// retrieved text in a second pass.
func (c *Composer) blend(ctx context.Context, query, retrieved string) (string, error) {
	if c.generator == nil {
		return "", types.ErrGenerationUnavailable
	}

	knowledge, err := c.generator.Generate(ctx, c.request(knowledgePrompt(query, c.cfg.MaxAnswerWords)))
	if err != nil {
		return "", err
	}

	blended, err := c.generator.Generate(ctx, c.request(blendPrompt(query, retrieved, knowledge)))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(blended), nil
}

// request builds one generation call. The token budget derives from the word
// cap; a tighter generator.max_tokens setting wins.
func (c *Composer) request(prompt string) generator.Request {
	maxTokens := tokensForWords(c.cfg.MaxAnswerWords)
	if c.genCfg.MaxTokens > 0 && c.genCfg.MaxTokens < maxTokens {
		maxTokens = c.genCfg.MaxTokens
	}
	return generator.Request{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: c.genCfg.Temperature,
	}
}

// filter runs the trimming pass. A generator failure here keeps the longer
// answer rather than degrading it further.
func (c *Composer) filter(ctx context.Context, query, answer string) string {
	trimmed, err := c.generator.Generate(ctx, c.request(trimPrompt(query, answer)))
	if err != nil {
		c.logger.Debug("trim pass failed, keeping unfiltered answer",
			zap.String("query_prefix", prefix(query, 64)),
			zap.Error(err))
		return answer
	}
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return answer
	}
	return trimmed
}

// finishTurn records the exchange and sets the handoff flag.
func (c *Composer) finishTurn(query string, answer *types.Answer, sess *session.Session) {
	if sess == nil {
		return
	}
	sess.AddTurn(query, answer.Text)
	if c.cfg.HandoffAfterTurns > 0 && sess.TurnCount() >= c.cfg.HandoffAfterTurns {
		answer.ShouldOfferHandoff = true
	}
}

func provenanceOf(hits []types.RetrievalHit) []types.Provenance {
	out := make([]types.Provenance, 0, len(hits))
	for _, h := range hits {
		out = append(out, types.Provenance{
			DocumentID:   h.Document.ID,
			CollectionID: h.CollectionID,
			Source:       h.Document.Metadata.GetString(types.MetaSource),
			FinalScore:   h.FinalScore,
		})
	}
	return out
}

// tokensForWords sizes the generation budget from a word cap.
func tokensForWords(words int) int {
	if words <= 0 {
		words = 150
	}
	return words * 2
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
