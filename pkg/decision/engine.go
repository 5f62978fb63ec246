// Package decision implements layer 9: fusing the smart-filter signal,
// extracted persons/organizations, embedding similarity, and hybrid search
// tier confidences into a single weighted risk score and verdict.
package decision

import (
	"sort"

	"github.com/vigilcore/sentry/pkg/config"
	"github.com/vigilcore/sentry/pkg/types"
)

// Engine evaluates DecisionInput against a ScreeningConfig's weights and
// thresholds to produce a DecisionOutput.
type Engine struct {
	Cfg *config.ScreeningConfig
}

// NewEngine builds a decision Engine bound to cfg.
func NewEngine(cfg *config.ScreeningConfig) *Engine {
	return &Engine{Cfg: cfg}
}

// Evaluate runs the full §4.4 scoring algorithm: a smart-filter skip
// short-circuit, a weighted sum of feature contributions (clipped to
// [0,1]), risk banding, and the TIN+DOB review gate.
func (e *Engine) Evaluate(input types.DecisionInput) types.DecisionOutput {
	cfg := e.Cfg

	if !input.SmartFilter.ShouldProcess {
		return types.DecisionOutput{
			Risk:    types.RiskSkip,
			Score:   0,
			Reasons: []string{"smart_filter_skip"},
			Details: map[string]interface{}{
				"smart_filter_decision": input.SmartFilter.Decision,
			},
		}
	}

	breakdown := map[string]interface{}{}
	var reasons []string
	score := 0.0

	smartContribution := cfg.WeightSmartFilter * input.SmartFilter.Confidence
	score += smartContribution
	breakdown["smart_filter"] = smartContribution

	discount := contextDiscount(input.ContextFraming, cfg)

	personConf := bestPersonConfidence(input.Signals)
	personContribution := cfg.WeightPerson * personConf * (1 - discount)
	score += personContribution
	breakdown["person"] = personContribution

	orgConf := bestOrgConfidence(input.Signals)
	orgContribution := cfg.WeightOrg * orgConf * (1 - discount)
	score += orgContribution
	breakdown["organization"] = orgContribution

	if discount > 0 {
		reasons = append(reasons, "context_discount_"+input.ContextFraming)
		breakdown["context_discount"] = discount
	}

	simContribution := cfg.WeightSimilarity * input.Similarity.CosTop
	score += simContribution
	breakdown["similarity"] = simContribution

	searchContribution := 0.0
	if input.Search.ExactConf >= cfg.ThrSearchExact {
		c := cfg.WeightSearchExact * input.Search.ExactConf
		searchContribution += c
		reasons = append(reasons, "search_tier_exact")
	}
	if input.Search.PhraseConf >= cfg.ThrSearchPhrase {
		c := cfg.WeightSearchPhrase * input.Search.PhraseConf
		searchContribution += c
		reasons = append(reasons, "search_tier_phrase")
	}
	if input.Search.NgramConf >= cfg.ThrSearchNgram {
		c := cfg.WeightSearchNgram * input.Search.NgramConf
		searchContribution += c
		reasons = append(reasons, "search_tier_ngram")
	}
	if input.Search.VectorConf >= cfg.ThrSearchVector {
		c := cfg.WeightSearchVector * input.Search.VectorConf
		searchContribution += c
		reasons = append(reasons, "search_tier_vector")
	}
	score += searchContribution
	breakdown["search"] = searchContribution

	bonus := 0.0
	if searchContribution > 0 {
		if input.Search.ExactConf >= cfg.BonusExactMatchAt {
			bonus += cfg.BonusExactMatch
			reasons = append(reasons, "bonus_exact_match")
		}
		if input.MultipleMatches {
			bonus += cfg.BonusMultipleMatches
			reasons = append(reasons, "bonus_multiple_matches")
		}
		if input.HighConfidenceHit {
			bonus += cfg.BonusHighConfMatches
			reasons = append(reasons, "bonus_high_confidence_matches")
		}
	}
	if input.HasDOBMatch {
		bonus += cfg.BonusDateMatch
		reasons = append(reasons, "bonus_date_match")
	}
	if input.HasSanctionedID {
		bonus += cfg.BonusIDMatch
		reasons = append(reasons, "bonus_id_match")
	}
	score += bonus
	breakdown["bonus"] = bonus

	breakdown["total_before_clip"] = score
	score = clip01(score)

	// §4.4 step 2 / scenario 3: a sanctioned ID match is sufficient on its
	// own to push a request into HIGH, regardless of how weak the name
	// match is otherwise — floor the score so bandRisk always lands there.
	if input.HasSanctionedID && score < cfg.ThrHigh {
		score = cfg.ThrHigh
		reasons = append(reasons, "sanctioned_id_forces_high")
	}

	risk := bandRisk(score, cfg)

	reviewRequired, requiredFields := tinDOBGate(input, risk, personConf, orgConf, cfg)
	if reviewRequired {
		reasons = append(reasons, "tin_dob_review_gate")
	}

	sort.Strings(reasons)

	return types.DecisionOutput{
		Risk:                     risk,
		Score:                    score,
		Reasons:                  reasons,
		Details:                  map[string]interface{}{"score_breakdown": breakdown},
		ReviewRequired:           reviewRequired,
		RequiredAdditionalFields: requiredFields,
	}
}

// contextDiscount returns the fractional dampening applied to the
// person/organization contribution for a detected context framing, or 0 when
// the config has the discount disabled or no framing was detected. It never
// touches the search, similarity, or sanctioned-ID/DOB bonus contributions.
func contextDiscount(framing string, cfg *config.ScreeningConfig) float64 {
	if !cfg.ContextDiscountEnabled {
		return 0
	}
	switch framing {
	case "educational":
		return cfg.EducationalDiscount
	case "professional":
		return cfg.ProfessionalDiscount
	case "historical":
		return cfg.HistoricalDiscount
	default:
		return 0
	}
}

func bestPersonConfidence(s types.SignalsResult) float64 {
	best := 0.0
	for _, p := range s.Persons {
		if p.Confidence > best {
			best = p.Confidence
		}
	}
	return best
}

func bestOrgConfidence(s types.SignalsResult) float64 {
	best := 0.0
	for _, o := range s.Organizations {
		if o.Confidence > best {
			best = o.Confidence
		}
	}
	return best
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func bandRisk(score float64, cfg *config.ScreeningConfig) types.Risk {
	switch {
	case score >= cfg.ThrHigh:
		return types.RiskHigh
	case score >= cfg.ThrMedium:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

// tinDOBGate implements §4.4 step 5: when the overall verdict is HIGH and a
// strong name match exists (person, org, or similarity confidence at least
// the strong-match threshold), and the winning sanctions record is known to
// carry both a TIN and a DOB, the request must supply both too — any it's
// missing go into RequiredAdditionalFields and ReviewRequired is set.
// Exception: if the winning record itself carries neither TIN nor DOB, the
// gate is suppressed outright (there is nothing to corroborate against).
func tinDOBGate(input types.DecisionInput, risk types.Risk, personConf, orgConf float64, cfg *config.ScreeningConfig) (bool, []string) {
	if !cfg.RequireTINDOBGate || risk != types.RiskHigh {
		return false, nil
	}

	strongMatch := personConf >= cfg.StrongMatchThreshold ||
		orgConf >= cfg.StrongMatchThreshold ||
		input.Similarity.CosTop >= cfg.StrongMatchThreshold
	if !strongMatch {
		return false, nil
	}

	ref := input.WinningSanctionRef
	if ref == nil || (!ref.HasTIN && !ref.HasDOB) {
		return false, nil
	}
	if !ref.HasTIN || !ref.HasDOB {
		return false, nil
	}

	var missing []string
	if !input.RequestHasTIN {
		missing = append(missing, "TIN")
	}
	if !input.RequestHasDOB {
		missing = append(missing, "DOB")
	}
	if len(missing) == 0 {
		return false, nil
	}
	return true, missing
}
