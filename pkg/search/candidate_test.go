package search

import (
	"testing"

	"github.com/vigilcore/sentry/pkg/types"
)

func TestDedupeCandidatesKeepsHighestScore(t *testing.T) {
	in := []types.SearchCandidate{
		{ID: "1", Name: "Ivan Petrov", Tier: types.TierNgram, Score: 0.6},
		{ID: "1", Name: "Ivan Petrov", Tier: types.TierExactID, Score: 0.95},
	}
	out := DedupeCandidates(in)
	if len(out) != 1 {
		t.Fatalf("expected 1 deduped candidate, got %d", len(out))
	}
	if out[0].Score != 0.95 {
		t.Errorf("expected the higher score to survive, got %f", out[0].Score)
	}
}

// TestStrictHighConfidenceRule is the property from §4.3: a T3 candidate at
// 0.7 must never count as high-confidence, even though 0.7 exceeds a typical
// T0/T1 bar — only the T3-specific 0.90 threshold governs tier T3.
func TestStrictHighConfidenceRule(t *testing.T) {
	t3Weak := types.SearchCandidate{Tier: types.TierVector, Score: 0.7}
	if IsHighConfidence(t3Weak, 0.80, 0.90) {
		t.Error("a T3 candidate at 0.7 must not be classified high-confidence")
	}

	t3Strong := types.SearchCandidate{Tier: types.TierVector, Score: 0.95}
	if !IsHighConfidence(t3Strong, 0.80, 0.90) {
		t.Error("a T3 candidate at 0.95 must be classified high-confidence")
	}

	t0Strong := types.SearchCandidate{Tier: types.TierExactID, Score: 0.81}
	if !IsHighConfidence(t0Strong, 0.80, 0.90) {
		t.Error("a T0 candidate at 0.81 must be classified high-confidence")
	}

	t2Strong := types.SearchCandidate{Tier: types.TierNgram, Score: 0.99}
	if IsHighConfidence(t2Strong, 0.80, 0.90) {
		t.Error("T2 n-gram candidates are never classified high-confidence")
	}
}
