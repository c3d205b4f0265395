package retriever

import "edumate/internal/domain"

// NearDuplicateFilter drops results whose token sets are near-identical to
// a higher-scored result. Duplicate passages waste context budget without
// adding support.
type NearDuplicateFilter struct {
	threshold float64
}

// NewNearDuplicateFilter creates a filter dropping results with Jaccard
// similarity above threshold against an already kept result. A threshold
// >= 1 disables filtering.
func NewNearDuplicateFilter(threshold float64) *NearDuplicateFilter {
	return &NearDuplicateFilter{threshold: threshold}
}

// Filter keeps results in descending-score order, skipping near-duplicates
// of anything already kept.
func (f *NearDuplicateFilter) Filter(results []domain.ScoredChunk) []domain.ScoredChunk {
	if f.threshold >= 1 || len(results) < 2 {
		return results
	}

	kept := make([]domain.ScoredChunk, 0, len(results))
	for _, candidate := range results {
		duplicate := false
		for _, sel := range kept {
			if jaccardSimilarity(candidate.Chunk.Tokens, sel.Chunk.Tokens) >= f.threshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// jaccardSimilarity computes the Jaccard similarity between two token sets.
func jaccardSimilarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	setA := make(map[string]struct{}, len(a))
	for _, t := range a {
		setA[t] = struct{}{}
	}

	setB := make(map[string]struct{}, len(b))
	for _, t := range b {
		setB[t] = struct{}{}
	}

	intersection := 0
	for t := range setA {
		if _, exists := setB[t]; exists {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}
