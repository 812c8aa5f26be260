package search

import "cdc-educa-be/pkg/store"

// ClampTopK bounds a requested top-k to [1, max]. Zero or negative
// requests fall back to def.
func ClampTopK(k, def, max int) int {
	if k == 0 {
		k = def
	}
	if k < 1 {
		k = 1
	}
	if k > max {
		k = max
	}
	return k
}

// Shape deduplicates hits by natural key and truncates to limit,
// preserving the incoming ranking order. Hits without any identifying
// key are always kept: they cannot collide with anything.
func Shape(hits []store.SourceHit, limit int) []store.SourceHit {
	if limit < 1 {
		limit = 1
	}

	seen := make(map[string]bool, len(hits))
	shaped := make([]store.SourceHit, 0, limit)
	for _, hit := range hits {
		key := hit.NaturalKey()
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		shaped = append(shaped, hit)
		if len(shaped) == limit {
			break
		}
	}
	return shaped
}
