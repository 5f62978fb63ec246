// Package search implements layer 8: hybrid name search across an exact/
// phrase/n-gram lexical index and a vector-similarity fallback, merged into
// a single ranked candidate list per §4.3.
package search

import "github.com/vigilcore/sentry/pkg/types"

// DedupeCandidates keeps the highest-scoring row per (ID, Name) pair,
// preserving first-seen order, per §3's dedup-by-identity rule.
func DedupeCandidates(cands []types.SearchCandidate) []types.SearchCandidate {
	best := map[string]types.SearchCandidate{}
	var order []string
	for _, c := range cands {
		key := c.ID + "\x00" + c.Name
		existing, ok := best[key]
		if !ok {
			best[key] = c
			order = append(order, key)
			continue
		}
		if c.Score > existing.Score {
			best[key] = c
		}
	}
	out := make([]types.SearchCandidate, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

// IsHighConfidence applies the strict classification rule from §4.3: a
// candidate counts as high-confidence only when it is T0/T1 scoring at
// least t0t1Threshold, OR T3 scoring at least t3Threshold. A T3 candidate
// below t3Threshold is never high-confidence, however high t0t1Threshold is.
func IsHighConfidence(c types.SearchCandidate, t0t1Threshold, t3Threshold float64) bool {
	switch c.Tier {
	case types.TierExactID, types.TierPhrase:
		return float64(c.Score) >= t0t1Threshold
	case types.TierVector:
		return float64(c.Score) >= t3Threshold
	default:
		return false
	}
}
