package types

// QueryIntent classifies a user query for special-case handling. Exactly one
// intent is assigned per query by an ordered rule table; every "should I
// treat this specially" branch in the core consumes this value rather than
// re-matching keywords.
type QueryIntent string

const (
	// IntentDeadline marks deadline/date queries. These are time-sensitive:
	// they bypass the answer cache in both directions and their answers are
	// never paraphrased by the generator.
	IntentDeadline QueryIntent = "deadline"

	// IntentDefinition marks "what is / what does X mean" queries.
	IntentDefinition QueryIntent = "definition"

	// IntentGeneral is the default intent.
	IntentGeneral QueryIntent = "general"
)

// TimeSensitive reports whether answers for this intent can change between
// requests as new source documents are ingested.
func (q QueryIntent) TimeSensitive() bool {
	return q == IntentDeadline
}
