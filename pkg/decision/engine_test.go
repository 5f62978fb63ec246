package decision

import (
	"testing"

	"github.com/vigilcore/sentry/pkg/config"
	"github.com/vigilcore/sentry/pkg/types"
)

func baseInput() types.DecisionInput {
	return types.DecisionInput{
		SmartFilter: types.SmartFilterInput{ShouldProcess: true, Confidence: 0.8, Decision: "must_process"},
		Signals: types.SignalsResult{
			Persons: []types.PersonSignal{{Confidence: 0.7}},
		},
		Similarity: types.SimilarityInput{CosTop: 0.6},
		Search:     types.SearchTierResult{ExactConf: 0.9},
	}
}

// TestSanctionedIDAloneForcesHighRisk pins down scenario 3: a weak name
// match ("Дарья ПАвлова ИНН 2839403975") with a sanctioned ID hit must still
// reach HIGH, even though the weighted sum of its other contributions
// (smartfilter, person, no search/similarity) falls far short of ThrHigh.
func TestSanctionedIDAloneForcesHighRisk(t *testing.T) {
	engine := NewEngine(config.NewDefaultConfig())
	input := types.DecisionInput{
		SmartFilter: types.SmartFilterInput{ShouldProcess: true, Confidence: 0.2, Decision: "maybe"},
		Signals: types.SignalsResult{
			Persons: []types.PersonSignal{{Confidence: 0.4}},
		},
		HasSanctionedID: true,
	}

	out := engine.Evaluate(input)
	if out.Risk != types.RiskHigh {
		t.Fatalf("expected sanctioned ID alone to force HIGH risk, got %v (score %f)", out.Risk, out.Score)
	}
	if out.Score < engine.Cfg.ThrHigh {
		t.Errorf("expected score floored to at least ThrHigh, got %f", out.Score)
	}

	withoutID := input
	withoutID.HasSanctionedID = false
	weakOut := engine.Evaluate(withoutID)
	if weakOut.Risk == types.RiskHigh {
		t.Fatalf("test setup invalid: weak name match alone must not already reach HIGH")
	}
}

func TestEvaluateSmartFilterSkipShortCircuits(t *testing.T) {
	engine := NewEngine(config.NewDefaultConfig())
	input := baseInput()
	input.SmartFilter.ShouldProcess = false

	out := engine.Evaluate(input)
	if out.Risk != types.RiskSkip {
		t.Fatalf("expected SKIP risk, got %v", out.Risk)
	}
	if out.Score != 0 {
		t.Errorf("expected score 0 on skip, got %f", out.Score)
	}
}

func TestContextDiscountDampensPersonAndOrgOnly(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.ContextDiscountEnabled = true
	engine := NewEngine(cfg)

	plain := baseInput()
	withFraming := baseInput()
	withFraming.ContextFraming = "educational"

	plainOut := engine.Evaluate(plain)
	framedOut := engine.Evaluate(withFraming)

	if framedOut.Score >= plainOut.Score {
		t.Fatalf("expected context framing to lower the score: plain=%f framed=%f", plainOut.Score, framedOut.Score)
	}

	personOnly := types.DecisionInput{
		SmartFilter: plain.SmartFilter,
		Signals:     plain.Signals,
	}
	framedPersonOnly := personOnly
	framedPersonOnly.ContextFraming = "educational"

	idBonusOnly := personOnly
	idBonusOnly.HasSanctionedID = true
	framedIDBonusOnly := idBonusOnly
	framedIDBonusOnly.ContextFraming = "educational"

	// The sanctioned-ID floor lifts both ID variants to ThrHigh, so compare
	// the bonus term of the score breakdown rather than the final scores.
	bonusOf := func(in types.DecisionInput) float64 {
		breakdown := engine.Evaluate(in).Details["score_breakdown"].(map[string]interface{})
		return breakdown["bonus"].(float64)
	}
	plainBonus := bonusOf(idBonusOnly) - bonusOf(personOnly)
	framedBonus := bonusOf(framedIDBonusOnly) - bonusOf(framedPersonOnly)
	if plainBonus != framedBonus {
		t.Errorf("context discount must not dampen the sanctioned-ID bonus: plain_delta=%f framed_delta=%f", plainBonus, framedBonus)
	}
}

func TestContextDiscountDisabledByDefault(t *testing.T) {
	engine := NewEngine(config.NewDefaultConfig())
	plain := baseInput()
	framed := baseInput()
	framed.ContextFraming = "educational"

	if engine.Evaluate(plain).Score != engine.Evaluate(framed).Score {
		t.Error("expected ContextFraming to have no effect when ContextDiscountEnabled is false")
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	engine := NewEngine(config.NewDefaultConfig())
	input := baseInput()

	a := engine.Evaluate(input)
	b := engine.Evaluate(input)
	if a.Score != b.Score || a.Risk != b.Risk {
		t.Error("expected identical input to produce identical output")
	}
}

func TestEvaluateMonotonicInSimilarity(t *testing.T) {
	engine := NewEngine(config.NewDefaultConfig())
	low := baseInput()
	low.Similarity.CosTop = 0.1

	high := baseInput()
	high.Similarity.CosTop = 0.9

	outLow := engine.Evaluate(low)
	outHigh := engine.Evaluate(high)
	if outHigh.Score <= outLow.Score {
		t.Errorf("expected higher similarity to raise score: low=%f high=%f", outLow.Score, outHigh.Score)
	}
}

func TestEvaluateScoreIsClipped(t *testing.T) {
	engine := NewEngine(config.NewDefaultConfig())
	input := types.DecisionInput{
		SmartFilter: types.SmartFilterInput{ShouldProcess: true, Confidence: 1.0},
		Signals: types.SignalsResult{
			Persons:       []types.PersonSignal{{Confidence: 1.0}},
			Organizations: []types.OrganizationSignal{{Confidence: 1.0}},
		},
		Similarity:        types.SimilarityInput{CosTop: 1.0},
		Search:            types.SearchTierResult{ExactConf: 1.0, PhraseConf: 1.0, NgramConf: 1.0, VectorConf: 1.0},
		MultipleMatches:   true,
		HighConfidenceHit: true,
		HasDOBMatch:       true,
		HasSanctionedID:   true,
	}
	out := engine.Evaluate(input)
	if out.Score != 1.0 {
		t.Errorf("expected score clipped to 1.0, got %f", out.Score)
	}
	if out.Risk != types.RiskHigh {
		t.Errorf("expected HIGH risk at max score, got %v", out.Risk)
	}
}

// TestTINDOBGateFiresWhenRequestMissingBothFields matches spec scenario 3:
// a strong match whose winning sanctions record carries both a TIN and a
// DOB, but the incoming request supplied neither, must require review and
// name the missing fields.
func TestTINDOBGateFiresWhenRequestMissingBothFields(t *testing.T) {
	engine := NewEngine(config.NewDefaultConfig())
	input := baseInput()
	input.SmartFilter.Confidence = 1.0
	input.Signals.Persons = []types.PersonSignal{{Confidence: 1.0}}
	input.Similarity.CosTop = 1.0
	input.Search.ExactConf = 1.0
	input.WinningSanctionRef = &types.SanctionRecordRef{HasTIN: true, HasDOB: true}
	input.RequestHasTIN = false
	input.RequestHasDOB = false

	out := engine.Evaluate(input)
	if !out.ReviewRequired {
		t.Fatal("expected review_required to be set")
	}
	if len(out.RequiredAdditionalFields) != 2 {
		t.Fatalf("expected both tin and dob to be listed as missing, got %v", out.RequiredAdditionalFields)
	}
}

func TestTINDOBGateSuppressedWhenRequestHasBothFields(t *testing.T) {
	engine := NewEngine(config.NewDefaultConfig())
	input := baseInput()
	input.SmartFilter.Confidence = 1.0
	input.Signals.Persons = []types.PersonSignal{{Confidence: 1.0}}
	input.Search.ExactConf = 1.0
	input.WinningSanctionRef = &types.SanctionRecordRef{HasTIN: true, HasDOB: true}
	input.RequestHasTIN = true
	input.RequestHasDOB = true

	out := engine.Evaluate(input)
	if out.ReviewRequired {
		t.Error("expected the gate to be suppressed when the request already supplies both fields")
	}
}

func TestTINDOBGateSuppressedWhenWinningRecordLacksBothFields(t *testing.T) {
	engine := NewEngine(config.NewDefaultConfig())
	input := baseInput()
	input.SmartFilter.Confidence = 1.0
	input.Signals.Persons = []types.PersonSignal{{Confidence: 1.0}}
	input.Search.ExactConf = 1.0
	input.WinningSanctionRef = &types.SanctionRecordRef{HasTIN: false, HasDOB: false}
	input.RequestHasTIN = false
	input.RequestHasDOB = false

	out := engine.Evaluate(input)
	if out.ReviewRequired {
		t.Error("expected the gate to be suppressed when the winning record carries neither field")
	}
}

func TestTINDOBGateRequiresHighRisk(t *testing.T) {
	engine := NewEngine(config.NewDefaultConfig())
	input := baseInput()
	input.Signals.Persons = []types.PersonSignal{{Confidence: 0.8}}
	input.Search.ExactConf = 0
	input.WinningSanctionRef = &types.SanctionRecordRef{HasTIN: true, HasDOB: true}
	input.RequestHasTIN = false
	input.RequestHasDOB = false

	out := engine.Evaluate(input)
	if out.Risk == types.RiskHigh {
		t.Fatal("test fixture should not reach HIGH risk")
	}
	if out.ReviewRequired {
		t.Error("expected the gate to never fire below HIGH risk")
	}
}
