package types

// AnswerSource records which path of the composition policy produced the
// answer text.
type AnswerSource string

const (
	// SourceCache means the answer was returned verbatim from the
	// conversation cache, with no re-composition or re-filtering.
	SourceCache AnswerSource = "cache"

	// SourceDatabase means the answer is retrieved text used as-is
	// (the deadline path, or the generator-down fallback).
	SourceDatabase AnswerSource = "database"

	// SourceBlended means retrieved text was blended with generative
	// knowledge.
	SourceBlended AnswerSource = "blended"

	// SourceFallback means neither retrieval nor generation produced
	// anything usable and the fixed no-information message was returned.
	SourceFallback AnswerSource = "fallback"
)

// Provenance names one supporting passage of an answer.
type Provenance struct {
	DocumentID   string
	CollectionID string
	Source       string
	FinalScore   float64
}

// Answer is the composer's output for one query. The user only ever sees
// Text; errors never surface here.
type Answer struct {
	Text               string
	Source             AnswerSource
	Intent             QueryIntent
	Suggestions        []string
	Provenance         []Provenance
	ShouldOfferHandoff bool
	Cached             bool
}
