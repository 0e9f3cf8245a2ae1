// Package chunker splits compliance source documents into retrievable
// passages. Splitting prefers paragraph boundaries; only a paragraph that
// alone exceeds the budget is cut at sentence boundaries.
package chunker

import (
	"strings"
)

const (
	// MaxTokensPerPassage is the target maximum token count per passage
	MaxTokensPerPassage = 1000

	// TokensPerChar is the heuristic for estimating tokens (chars/4)
	TokensPerChar = 4
)

// Passage is one split unit of a source document.
type Passage struct {
	Text       string
	TokenCount int
}

// Chunker splits document text into passages.
type Chunker struct {
	maxTokens int
}

// New creates a Chunker with the default token budget.
func New() *Chunker {
	return &Chunker{maxTokens: MaxTokensPerPassage}
}

// NewWithBudget creates a Chunker with a custom token budget.
func NewWithBudget(maxTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = MaxTokensPerPassage
	}
	return &Chunker{maxTokens: maxTokens}
}

// EstimateTokens estimates the token count of text.
func EstimateTokens(text string) int {
	return len(text) / TokensPerChar
}

// Split breaks text into passages. Whitespace-only input yields no passages.
func (c *Chunker) Split(text string) []Passage {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	paragraphs := splitParagraphs(text)

	var (
		passages []Passage
		current  strings.Builder
	)

	flush := func() {
		t := strings.TrimSpace(current.String())
		if t != "" {
			passages = append(passages, Passage{Text: t, TokenCount: EstimateTokens(t)})
		}
		current.Reset()
	}

	for _, para := range paragraphs {
		if EstimateTokens(para) > c.maxTokens {
			// Oversized paragraph: flush what we have and cut it by sentence.
			flush()
			for _, piece := range c.splitOversized(para) {
				passages = append(passages, Passage{Text: piece, TokenCount: EstimateTokens(piece)})
			}
			continue
		}

		if current.Len() > 0 && EstimateTokens(current.String())+EstimateTokens(para) > c.maxTokens {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return passages
}

// splitParagraphs splits on blank lines, trimming each paragraph.
func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitOversized cuts a single paragraph at sentence ends. A sentence that
// itself exceeds the budget is emitted whole rather than cut mid-sentence.
func (c *Chunker) splitOversized(para string) []string {
	sentences := splitSentences(para)

	var (
		pieces  []string
		current strings.Builder
	)

	for _, s := range sentences {
		if current.Len() > 0 && EstimateTokens(current.String())+EstimateTokens(s) > c.maxTokens {
			pieces = append(pieces, strings.TrimSpace(current.String()))
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(s)
	}
	if t := strings.TrimSpace(current.String()); t != "" {
		pieces = append(pieces, t)
	}
	return pieces
}

// splitSentences is a simple period/question/exclamation splitter. Good
// enough for regulatory prose; abbreviations may over-split occasionally.
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)
	runes := []rune(text)
	for i, r := range runes {
		if r == '.' || r == '?' || r == '!' {
			end := i + 1
			// Consume trailing quote or bracket.
			for end < len(runes) && (runes[end] == '"' || runes[end] == ')' || runes[end] == '\'') {
				end++
			}
			if end >= len(runes) || runes[end] == ' ' || runes[end] == '\n' {
				s := strings.TrimSpace(string(runes[start:end]))
				if s != "" {
					sentences = append(sentences, s)
				}
				start = end
			}
		}
	}
	if start < len(runes) {
		s := strings.TrimSpace(string(runes[start:]))
		if s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}
