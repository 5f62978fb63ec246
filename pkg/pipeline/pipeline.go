package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/vigilcore/sentry/pkg/config"
	"github.com/vigilcore/sentry/pkg/decision"
	"github.com/vigilcore/sentry/pkg/logging"
	"github.com/vigilcore/sentry/pkg/morph"
	"github.com/vigilcore/sentry/pkg/normalize"
	"github.com/vigilcore/sentry/pkg/search"
	"github.com/vigilcore/sentry/pkg/signals"
	"github.com/vigilcore/sentry/pkg/types"
)

// Pipeline wires the nine layers together. All fields except Config are
// optional external collaborators (§1's "external collaborators" list):
// a nil SanctionedCache, SearchEngine, Embedder, or Analyzer degrades that
// layer gracefully rather than failing the request.
type Pipeline struct {
	Config          *config.ScreeningConfig
	NormalizeConfig normalize.Config
	SanctionedCache *signals.SanctionedIDCache
	SearchEngine    *search.Engine
	Embedder        search.EmbeddingProvider
	Analyzer        *morph.Analyzer
	Decision        *decision.Engine
	Logger          logr.Logger
}

// NewPipeline builds a Pipeline from a ScreeningConfig, constructing the
// decision engine and a default normalization config. Search, embeddings,
// and the sanctioned-ID cache are wired in separately via the exported
// fields since they carry their own lifecycles (DB pools, ONNX sessions).
func NewPipeline(cfg *config.ScreeningConfig) *Pipeline {
	return &Pipeline{
		Config:          cfg,
		NormalizeConfig: normalize.DefaultConfig(),
		Decision:        decision.NewEngine(cfg),
		Logger:          logr.Discard(),
	}
}

// Process runs a Request through all nine layers in order and assembles the
// Response. Layers 1-6 never yield; layers 7 and 8 are skipped unless the
// corresponding request option is set; layer 8/the search fusion call are
// the only points where Process may suspend on I/O.
func (p *Pipeline) Process(ctx context.Context, req Request) Response {
	start := time.Now()
	resp := Response{OriginalText: req.Text}

	log := logging.ForRequest(p.Logger, uuid.NewString())
	defer logging.LogLatency(log, "pipeline", start)

	// Layer 1: validation.
	text := strings.TrimSpace(req.Text)
	if text == "" || len(text) > MaxTextLength || !isPrintableText(text) {
		log.Info("rejected request", "reason", ErrInputInvalid)
		resp.Success = false
		resp.Errors = []string{string(ErrInputInvalid)}
		resp.ProcessingTimeMs = elapsedMs(start)
		return resp
	}

	// Layer 2: smart filter.
	smartFilter := SmartFilter(text, p.Config)

	// Layer 3: language detection.
	lang, langConf := req.Language, 1.0
	if lang == "" {
		lang, langConf = DetectLanguage(text)
	}
	resp.Language = lang
	resp.LanguageConfidence = langConf

	// Layer 4: Unicode normalization.
	clean := normalize.UnicodeNormalize(text, p.NormalizeConfig.RuYoStrategy)

	decisionInput := types.DecisionInput{
		SmartFilter: smartFilter,
	}

	if !smartFilter.ShouldProcess {
		log.V(1).Info("smart filter skip", "confidence", smartFilter.Confidence)
		out := p.Decision.Evaluate(decisionInput)
		resp.Decision = out
		resp.Success = true
		resp.ProcessingTimeMs = elapsedMs(start)
		return resp
	}

	// Layer 5: name normalization (core).
	norm := normalize.Normalize(clean, lang, p.NormalizeConfig)
	resp.NormalizedText = norm.Normalized
	resp.Tokens = norm.Tokens
	resp.Trace = norm.Trace

	// Layer 6: signals (core).
	sig := signals.Extract(clean, norm, p.SanctionedCache)
	resp.Signals = sig

	// Layer 7: variants (optional).
	if req.Options.GenerateVariants {
		resp.Variants = GenerateVariants(norm, p.Analyzer)
	}

	// Layer 8: embeddings (optional).
	var simInput types.SimilarityInput
	if req.Options.GenerateEmbeddings && p.Embedder != nil && norm.Normalized != "" {
		if vec, err := p.Embedder.Embed(ctx, norm.Normalized); err == nil {
			resp.Embeddings = vec
		}
	}

	var searchResult types.SearchTierResult
	var multipleMatches, highConfidenceHit bool
	var winningRef *types.SanctionRecordRef
	if p.SearchEngine != nil && norm.Normalized != "" {
		candidates, tierResult, err := p.SearchEngine.Query(ctx, norm.Normalized, 10)
		if err == nil {
			searchResult = tierResult
			multipleMatches = len(candidates) > 1
			for _, c := range candidates {
				if search.IsHighConfidence(c, p.highConfT0T1(), p.highConfT3()) {
					highConfidenceHit = true
				}
			}
			if len(candidates) > 0 {
				simInput.CosTop = maxCosine(candidates)
				winningRef = sanctionRefFromCandidate(candidates[0])
			}
		}
	}

	hasSanctionedID := anySanctioned(sig)
	hasDOBMatch := anyDOB(sig)

	decisionInput.Signals = sig
	decisionInput.Similarity = simInput
	decisionInput.Search = searchResult
	decisionInput.HasDOBMatch = hasDOBMatch
	decisionInput.HasSanctionedID = hasSanctionedID
	decisionInput.RequestHasTIN = req.Options.RequestHasTIN
	decisionInput.RequestHasDOB = req.Options.RequestHasDOB
	decisionInput.WinningSanctionRef = winningRef
	decisionInput.MultipleMatches = multipleMatches
	decisionInput.HighConfidenceHit = highConfidenceHit
	if p.Config != nil && p.Config.ContextDiscountEnabled {
		decisionInput.ContextFraming = DetectContextFraming(req.Text)
	}

	// Layer 9: decision (core).
	resp.Decision = p.Decision.Evaluate(decisionInput)
	log.Info("decision reached", "risk", resp.Decision.Risk, "score", resp.Decision.Score)

	resp.Success = true
	resp.ProcessingTimeMs = elapsedMs(start)
	return resp
}

func (p *Pipeline) highConfT0T1() float64 {
	if p.Config == nil {
		return 0.80
	}
	return p.Config.HighConfT0T1Threshold
}

func (p *Pipeline) highConfT3() float64 {
	if p.Config == nil {
		return 0.90
	}
	return p.Config.HighConfT3Threshold
}

// sanctionRefFromCandidate reads the has_tin/has_dob metadata the AC index
// attaches to each candidate so the decision engine's TIN+DOB gate (§4.4
// step 5) knows what the winning sanctions record is known to carry.
func sanctionRefFromCandidate(c types.SearchCandidate) *types.SanctionRecordRef {
	if c.Meta == nil {
		return nil
	}
	hasTIN, _ := c.Meta["has_tin"].(bool)
	hasDOB, _ := c.Meta["has_dob"].(bool)
	return &types.SanctionRecordRef{HasTIN: hasTIN, HasDOB: hasDOB}
}

func maxCosine(cands []types.SearchCandidate) float64 {
	best := 0.0
	for _, c := range cands {
		if c.Tier == types.TierVector && float64(c.Score) > best {
			best = float64(c.Score)
		}
	}
	return best
}

func anySanctioned(sig types.SignalsResult) bool {
	for _, p := range sig.Persons {
		for _, id := range p.IDs {
			if id.Sanctioned {
				return true
			}
		}
	}
	for _, o := range sig.Organizations {
		for _, id := range o.IDs {
			if id.Sanctioned {
				return true
			}
		}
	}
	for _, ids := range sig.Numbers {
		for _, id := range ids {
			if id.Sanctioned {
				return true
			}
		}
	}
	return false
}

func anyDOB(sig types.SignalsResult) bool {
	for _, p := range sig.Persons {
		if p.DOB != nil {
			return true
		}
	}
	return false
}

func isPrintableText(s string) bool {
	nulls := strings.Count(s, "\x00")
	return nulls == 0
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
