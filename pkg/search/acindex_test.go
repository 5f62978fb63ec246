package search

import (
	"context"
	"testing"

	"github.com/vigilcore/sentry/pkg/types"
)

func TestInMemoryACIndexExactMatch(t *testing.T) {
	idx := NewInMemoryACIndex([]SanctionsRecord{
		{ID: "r1", Name: "Ivan Petrov", HasTIN: true},
	}, 3)

	results, err := idx.Search(context.Background(), "Ivan Petrov", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Tier != types.TierExactID {
		t.Fatalf("expected one exact-tier match, got %+v", results)
	}
	if results[0].Score != 1.0 {
		t.Errorf("expected exact match score of 1.0, got %f", results[0].Score)
	}
}

func TestInMemoryACIndexNgramFallback(t *testing.T) {
	idx := NewInMemoryACIndex([]SanctionsRecord{
		{ID: "r1", Name: "Ivan Petrovich"},
	}, 4)

	results, err := idx.Search(context.Background(), "Ivan Petrovech", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected a fuzzy n-gram match, got %+v", results)
	}
	if results[0].Tier != types.TierNgram {
		t.Errorf("expected n-gram tier, got %v", results[0].Tier)
	}
}

func TestInMemoryACIndexNoMatchBeyondThreshold(t *testing.T) {
	idx := NewInMemoryACIndex([]SanctionsRecord{
		{ID: "r1", Name: "Completely Different Name"},
	}, 2)

	results, err := idx.Search(context.Background(), "Ivan Petrov", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no matches beyond the distance threshold, got %+v", results)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	if d := levenshteinDistance("kitten", "sitting"); d != 3 {
		t.Errorf("expected classic kitten/sitting distance of 3, got %d", d)
	}
	if d := levenshteinDistance("same", "same"); d != 0 {
		t.Errorf("expected identical strings to have distance 0, got %d", d)
	}
}
