package types

// RawHit is a document returned by a single collection's nearest-neighbor
// query, before cross-collection ranking. Distance is the raw embedding
// distance reported by the store (lower is closer).
type RawHit struct {
	Document Document
	Distance float64
}

// RetrievalHit is a query-scoped ranked hit. SemanticScore is always in
// [0, 1]; FinalScore is not bounded above 1 because priority multipliers may
// exceed 1.0 to boost fresher collections.
type RetrievalHit struct {
	Document           Document
	CollectionID       string
	RawDistance        float64
	SemanticScore      float64
	PriorityMultiplier float64
	FinalScore         float64
}

// RetrievalResult is the output of one retrieval pass. Found distinguishes
// "searched and found nothing" from "found an empty passage": when Found is
// false the caller must not treat CombinedText as an answer.
type RetrievalResult struct {
	Hits         []RetrievalHit
	CombinedText string
	Found        bool
}
