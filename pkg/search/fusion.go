package search

import (
	"context"

	"github.com/vigilcore/sentry/pkg/config"
	"github.com/vigilcore/sentry/pkg/types"
)

// Engine runs the hybrid search policy: query the lexical index first; only
// escalate to the vector index when the lexical result is weak, per §4.3's
// AC-to-vector escalation policy (AC threshold 0.6, vector cosine threshold
// 0.45 as the defaults carried in ScreeningConfig).
type Engine struct {
	AC     ACIndex
	Vector VectorIndex
	Cfg    *config.ScreeningConfig
}

// NewEngine builds a search Engine. vector may be nil (vector search
// unavailable); the engine then runs lexical-only.
func NewEngine(ac ACIndex, vector VectorIndex, cfg *config.ScreeningConfig) *Engine {
	return &Engine{AC: ac, Vector: vector, Cfg: cfg}
}

// Query runs the full escalation policy for a single name and returns the
// merged, deduplicated, reranked candidate list plus the aggregate tier
// confidences the decision engine consumes.
func (e *Engine) Query(ctx context.Context, name string, limit int) ([]types.SearchCandidate, types.SearchTierResult, error) {
	var merged []types.SearchCandidate

	acBest := 0.0
	if e.AC != nil {
		acResults, err := e.AC.Search(ctx, name, limit)
		if err != nil {
			return nil, types.SearchTierResult{}, err
		}
		merged = append(merged, acResults...)
		acBest = bestScore(acResults)
	}

	if e.Vector != nil && acBest < e.acThreshold() {
		vecResults, err := e.Vector.Search(ctx, name, limit)
		if err == nil {
			for _, c := range vecResults {
				if float64(c.Score) >= e.vectorThreshold() {
					merged = append(merged, c)
				}
			}
		}
		// A failed vector query degrades to lexical-only results; it is not
		// a fatal error for the overall search (embedding_unavailable).
	}

	merged = DedupeCandidates(merged)
	merged = rerank(merged)

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	return merged, tierResult(merged), nil
}

func (e *Engine) acThreshold() float64 {
	if e.Cfg == nil {
		return 0.6
	}
	return e.Cfg.ACConfidenceThreshold
}

func (e *Engine) vectorThreshold() float64 {
	if e.Cfg == nil {
		return 0.45
	}
	return e.Cfg.VectorCosineThreshold
}

func bestScore(cands []types.SearchCandidate) float64 {
	best := 0.0
	for _, c := range cands {
		if float64(c.Score) > best {
			best = float64(c.Score)
		}
	}
	return best
}

// rerank sorts candidates tier-first (T0 highest priority), then by score
// descending within a tier — simple insertion sort since candidate lists are
// small (tens, not thousands, of entries per query).
func rerank(cands []types.SearchCandidate) []types.SearchCandidate {
	out := append([]types.SearchCandidate(nil), cands...)
	for i := 1; i < len(out); i++ {
		j := i
		for j > 0 && lessRank(out[j], out[j-1]) {
			out[j], out[j-1] = out[j-1], out[j]
			j--
		}
	}
	return out
}

func lessRank(a, b types.SearchCandidate) bool {
	if a.Tier != b.Tier {
		return a.Tier < b.Tier
	}
	return a.Score > b.Score
}

// tierResult reduces a merged candidate list to the per-tier best score the
// decision engine's weighted formula consumes (§4.4).
func tierResult(cands []types.SearchCandidate) types.SearchTierResult {
	var r types.SearchTierResult
	for _, c := range cands {
		score := float64(c.Score)
		switch c.Tier {
		case types.TierExactID:
			if score > r.ExactConf {
				r.ExactConf = score
			}
		case types.TierPhrase:
			if score > r.PhraseConf {
				r.PhraseConf = score
			}
		case types.TierNgram:
			if score > r.NgramConf {
				r.NgramConf = score
			}
		case types.TierVector:
			if score > r.VectorConf {
				r.VectorConf = score
			}
		}
	}
	return r
}
