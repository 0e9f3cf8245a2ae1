// Package ranker merges per-collection hits into one deterministically
// ordered list using priority-weighted semantic scores.
package ranker

import (
	"sort"

	"github.com/VishalSingh1806/ChatBot-RAG-sub000/pkg/types"
)

// DefaultMultiplier applies to collections with no configured priority.
const DefaultMultiplier = 1.0

// PriorityRanker scores hits by semantic similarity weighted with a
// per-collection freshness multiplier.
type PriorityRanker struct {
	multipliers map[string]float64
}

// New creates a ranker from a collection-id to multiplier table. The map is
// copied; later mutation of the argument has no effect.
func New(multipliers map[string]float64) *PriorityRanker {
	m := make(map[string]float64, len(multipliers))
	for k, v := range multipliers {
		m[k] = v
	}
	return &PriorityRanker{multipliers: m}
}

// Multiplier returns the priority multiplier for a collection.
func (r *PriorityRanker) Multiplier(collectionID string) float64 {
	if m, ok := r.multipliers[collectionID]; ok && m > 0 {
		return m
	}
	return DefaultMultiplier
}

// SemanticScore maps a raw embedding distance to [0, 1]. Distances above 1
// clamp to 0 rather than going negative.
func SemanticScore(distance float64) float64 {
	s := 1 - distance
	if s < 0 {
		return 0
	}
	return s
}

// Rank merges raw per-collection hits into one list ordered by descending
// final score. Ties break first on lexical collection id, then on the
// within-collection retrieval order, so equal inputs always produce equal
// output orderings.
func (r *PriorityRanker) Rank(byCollection map[string][]types.RawHit) []types.RetrievalHit {
	// Collections are visited in lexical order and hits appended in their
	// retrieval order; the stable sort then preserves exactly that order
	// among equal scores.
	ids := make([]string, 0, len(byCollection))
	for id := range byCollection {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var hits []types.RetrievalHit
	for _, id := range ids {
		mult := r.Multiplier(id)
		for _, raw := range byCollection[id] {
			semantic := SemanticScore(raw.Distance)
			hits = append(hits, types.RetrievalHit{
				Document:           raw.Document,
				CollectionID:       id,
				RawDistance:        raw.Distance,
				SemanticScore:      semantic,
				PriorityMultiplier: mult,
				FinalScore:         semantic * mult,
			})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].FinalScore > hits[j].FinalScore
	})
	return hits
}
