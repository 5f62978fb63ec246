package search

import (
	"context"
	"testing"

	"github.com/vigilcore/sentry/pkg/config"
	"github.com/vigilcore/sentry/pkg/types"
)

type stubACIndex struct {
	results []types.SearchCandidate
}

func (s stubACIndex) Search(ctx context.Context, query string, limit int) ([]types.SearchCandidate, error) {
	return s.results, nil
}

type stubVectorIndex struct {
	results []types.SearchCandidate
	queried bool
}

func (s *stubVectorIndex) Search(ctx context.Context, query string, limit int) ([]types.SearchCandidate, error) {
	s.queried = true
	return s.results, nil
}

func (s *stubVectorIndex) Upsert(ctx context.Context, records []SanctionsRecord) error {
	return nil
}

func TestEngineSkipsVectorWhenLexicalIsStrong(t *testing.T) {
	ac := stubACIndex{results: []types.SearchCandidate{
		{ID: "1", Name: "Ivan Petrov", Tier: types.TierExactID, Score: 0.95},
	}}
	vec := &stubVectorIndex{results: []types.SearchCandidate{
		{ID: "2", Name: "Irrelevant", Tier: types.TierVector, Score: 0.6},
	}}

	engine := NewEngine(ac, vec, config.NewDefaultConfig())
	cands, tiers, err := engine.Query(context.Background(), "Ivan Petrov", 10)
	if err != nil {
		t.Fatal(err)
	}
	if vec.queried {
		t.Error("expected the vector index to be skipped when the lexical match already clears the AC threshold")
	}
	if len(cands) != 1 {
		t.Fatalf("expected only the lexical candidate, got %+v", cands)
	}
	if tiers.ExactConf != float64(float32(0.95)) {
		t.Errorf("expected exact tier confidence 0.95, got %f", tiers.ExactConf)
	}
}

func TestEngineEscalatesToVectorWhenLexicalIsWeak(t *testing.T) {
	ac := stubACIndex{results: []types.SearchCandidate{
		{ID: "1", Name: "Ivan Petrov", Tier: types.TierNgram, Score: 0.3},
	}}
	vec := &stubVectorIndex{results: []types.SearchCandidate{
		{ID: "2", Name: "Ivan Petroff", Tier: types.TierVector, Score: 0.72},
	}}

	engine := NewEngine(ac, vec, config.NewDefaultConfig())
	cands, tiers, err := engine.Query(context.Background(), "Ivan Petrov", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !vec.queried {
		t.Error("expected the vector index to be queried when the lexical result is weak")
	}
	if len(cands) != 2 {
		t.Fatalf("expected both lexical and vector candidates merged, got %+v", cands)
	}
	if tiers.VectorConf != float64(float32(0.72)) {
		t.Errorf("expected vector tier confidence 0.72, got %f", tiers.VectorConf)
	}
}

func TestEngineDropsVectorCandidatesBelowThreshold(t *testing.T) {
	ac := stubACIndex{}
	vec := &stubVectorIndex{results: []types.SearchCandidate{
		{ID: "2", Name: "Weak Match", Tier: types.TierVector, Score: 0.2},
	}}

	engine := NewEngine(ac, vec, config.NewDefaultConfig())
	cands, _, err := engine.Query(context.Background(), "anything", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 0 {
		t.Errorf("expected vector candidates below the cosine threshold to be dropped, got %+v", cands)
	}
}
