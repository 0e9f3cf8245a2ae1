package composer

import (
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/internal/session"
	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// HandoffSuggestion is always the last suggestion offered.
const HandoffSuggestion = "Talk to our compliance team"

// suggestionsPerAnswer is the number of follow-up questions before the fixed
// handoff item.
const suggestionsPerAnswer = 3

// suggestionPools hold the follow-up questions per intent. Deadline answers
// steer toward filing specifics, definition answers toward obligations.
var suggestionPools = map[types.QueryIntent][]string{
	types.IntentDeadline: {
		"What documents are needed for annual return filing?",
		"What are the penalties for missing a filing deadline?",
		"How do I file quarterly returns?",
		"Can a filing deadline be extended?",
		"Which portal is used for annual return filing?",
	},
	types.IntentDefinition: {
		"Who qualifies as a producer under EPR?",
		"What are the obligations of a brand owner?",
		"How is the EPR target calculated?",
		"What categories of plastic packaging are covered?",
		"What is the difference between a producer and an importer?",
	},
	types.IntentGeneral: {
		"How do I register on the EPR portal?",
		"What are the annual return filing deadlines?",
		"What are recycling certificates and how do they work?",
		"What fees apply to EPR registration?",
		"How are EPR targets set for my category?",
	},
}

// suggestions builds the follow-up list: up to three pool questions not yet
// asked this session, then the fixed handoff item.
func (c *Composer) suggestions(queryIntent types.QueryIntent, sess *session.Session) []string {
	pool := suggestionPools[queryIntent]
	if pool == nil {
		pool = suggestionPools[types.IntentGeneral]
	}

	out := make([]string, 0, suggestionsPerAnswer+1)
	for _, q := range pool {
		if len(out) == suggestionsPerAnswer {
			break
		}
		if sess != nil && sess.WasAsked(q) {
			continue
		}
		out = append(out, q)
		if sess != nil {
			sess.MarkAsked(q)
		}
	}

	return append(out, HandoffSuggestion)
}
