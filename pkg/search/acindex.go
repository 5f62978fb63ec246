package search

import (
	"context"
	"strings"

	"github.com/vigilcore/sentry/pkg/types"
)

// SanctionsRecord is one name-bearing row available for lexical and vector
// search, grounded on the cache-entry shape used by the sanctioned-identifier
// screener this layer's AC index is modeled on.
type SanctionsRecord struct {
	ID      string
	Name    string
	Aliases []string
	HasTIN  bool
	HasDOB  bool
}

// ACIndex is the exact/phrase/n-gram lexical search surface (tiers T0-T2).
type ACIndex interface {
	Search(ctx context.Context, query string, limit int) ([]types.SearchCandidate, error)
}

// InMemoryACIndex is a small in-process lexical index: exact and substring
// matching plus a Levenshtein-distance n-gram fallback. It exists so the
// fusion policy and decision engine have something concrete to exercise
// without a live search backend; production deployments swap in a real
// full-text index behind the same interface.
type InMemoryACIndex struct {
	records       []SanctionsRecord
	ngramThreshold int
}

// NewInMemoryACIndex builds an index over records. ngramThreshold is the
// maximum Levenshtein distance tolerated for a T2 n-gram match.
func NewInMemoryACIndex(records []SanctionsRecord, ngramThreshold int) *InMemoryACIndex {
	if ngramThreshold <= 0 {
		ngramThreshold = 3
	}
	return &InMemoryACIndex{records: records, ngramThreshold: ngramThreshold}
}

// Search classifies query against every record's primary name and aliases,
// returning the best tier/score pair found per record.
func (idx *InMemoryACIndex) Search(ctx context.Context, query string, limit int) ([]types.SearchCandidate, error) {
	q := normalizeForMatching(query)
	var out []types.SearchCandidate

	for _, rec := range idx.records {
		tier, score, matched, ok := idx.bestMatch(q, rec)
		if !ok {
			continue
		}
		trace := CandidateTraceFor(matched)
		out = append(out, types.SearchCandidate{
			ID:    rec.ID,
			Name:  rec.Name,
			Tier:  tier,
			Score: float32(score),
			Meta: map[string]interface{}{
				"has_tin": rec.HasTIN,
				"has_dob": rec.HasDOB,
			},
			Trace: &trace,
		})
	}

	out = DedupeCandidates(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CandidateTraceFor builds a minimal trace for a lexically matched name;
// exported as a value (not pointer) to keep call sites terse, callers take
// its address.
func CandidateTraceFor(matchedName string) types.CandidateTrace {
	return types.CandidateTrace{Reason: "lexical_match", Anchors: []string{matchedName}}
}

func (idx *InMemoryACIndex) bestMatch(q string, rec SanctionsRecord) (types.SearchTier, float64, string, bool) {
	names := append([]string{rec.Name}, rec.Aliases...)

	bestTier := types.TierNgram
	bestScore := 0.0
	bestName := ""
	found := false

	for _, name := range names {
		n := normalizeForMatching(name)
		switch {
		case q == n:
			return types.TierExactID, 1.0, name, true
		case strings.Contains(q, n) || strings.Contains(n, q):
			if !found || 0.9 > bestScore {
				bestTier, bestScore, bestName, found = types.TierPhrase, 0.9, name, true
			}
		default:
			dist := levenshteinDistance(q, n)
			if dist <= idx.ngramThreshold {
				maxLen := len(q)
				if len(n) > maxLen {
					maxLen = len(n)
				}
				if maxLen == 0 {
					continue
				}
				score := 1.0 - float64(dist)/float64(maxLen)
				if !found || score > bestScore {
					bestTier, bestScore, bestName, found = types.TierNgram, score, name, true
				}
			}
		}
	}

	return bestTier, bestScore, bestName, found
}

func normalizeForMatching(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}

// levenshteinDistance computes the edit distance between two strings.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}

func min3(a, b, c int) int {
	if a < b {
		if a < c {
			return a
		}
		return c
	}
	if b < c {
		return b
	}
	return c
}
