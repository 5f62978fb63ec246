package normalize

import (
	"strings"
	"time"

	"github.com/vigilcore/sentry/pkg/morph"
	"github.com/vigilcore/sentry/pkg/types"
)

// Normalize is the public layer-5 operation: normalize(text, config) ->
// NormalizationResult. Text is assumed already sanitized by layer 4
// (UnicodeNormalize).
func Normalize(text string, lang types.Language, cfg Config) types.NormalizationResult {
	start := time.Now()

	if cfg.ASCIIFastpath && lang == types.LanguageEN {
		if fast, ok := tryASCIIFastpath(text, cfg); ok {
			fast.ProcessingTimeMs = elapsedMs(start)
			return fast
		}
	}

	tokens := Tokenize(text, cfg)
	tokens = FilterStopwords(tokens, lang, cfg)

	if len(tokens) == 0 {
		return types.NormalizationResult{
			Normalized:  "",
			Language:    lang,
			Success:     true,
			ProcessingTimeMs: elapsedMs(start),
		}
	}

	surface := make([]string, len(tokens))
	for i, t := range tokens {
		surface[i] = t.Text
	}
	roleResults := TagRoles(tokens, lang, cfg)

	traces := make([]types.TokenTrace, 0, len(tokens))
	var pendingGender morph.Gender
	for i, t := range tokens {
		role := roleResults[i].Role

		if role == types.RolePatronymic {
			pendingGender = InferGenderFromPatronymic(t.Text, lang)
		} else if !role.IsPersonRole() {
			pendingGender = morph.GenderUnknown
		}

		norm := NormalizeByRole(t.Text, role, lang, cfg, pendingGender)

		trace := types.TokenTrace{
			Token:      t.Text,
			Role:       role,
			Rule:       roleResults[i].Rule,
			MorphLang:  norm.MorphLang,
			NormalForm: norm.NormalForm,
			Output:     norm.Output,
			Fallback:   norm.Fallback,
			Notes:      strings.Join(append(append([]string{}, t.Notes...), norm.Notes), ";"),
		}
		traces = append(traces, trace)
	}

	rec := Reconstruct(traces)

	result := types.NormalizationResult{
		Normalized:        strings.Join(rec.Normalized, " "),
		Tokens:            rec.Normalized,
		Trace:             traces,
		PersonsCore:       rec.PersonsCore,
		OrganizationsCore: rec.OrganizationsCore,
		Language:          lang,
		TokenCount:        len(rec.Normalized),
		Success:           true,
		ProcessingTimeMs:  elapsedMs(start),
	}
	result.Confidence = confidenceFor(result)
	return result
}

func confidenceFor(r types.NormalizationResult) float64 {
	if r.TokenCount == 0 {
		return 0
	}
	fallbacks := 0
	for _, tr := range r.Trace {
		if tr.Fallback {
			fallbacks++
		}
	}
	ratio := float64(len(r.Trace)-fallbacks) / float64(len(r.Trace))
	return 0.5 + 0.5*ratio
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
