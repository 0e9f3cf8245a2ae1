// Package intent classifies queries with an ordered keyword rule table.
// Deadline rules run before definition rules; the first match wins, so a
// query like "what is the deadline for annual returns" classifies as a
// deadline query.
package intent

import (
	"strings"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/config"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// Classifier assigns a QueryIntent to raw query text.
type Classifier struct {
	deadline   []string
	definition []string
}

// New builds a classifier from the configured keyword tables. Keywords are
// matched case-insensitively as substrings of the query.
func New(cfg config.IntentConfig) *Classifier {
	return &Classifier{
		deadline:   lowerAll(cfg.DeadlineKeywords),
		definition: lowerAll(cfg.DefinitionKeywords),
	}
}

// Classify returns the intent of a query.
func (c *Classifier) Classify(query string) types.QueryIntent {
	q := strings.ToLower(query)
	if matchesAny(q, c.deadline) {
		return types.IntentDeadline
	}
	if matchesAny(q, c.definition) {
		return types.IntentDefinition
	}
	return types.IntentGeneral
}

func matchesAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(strings.ToLower(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
