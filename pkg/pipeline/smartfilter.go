package pipeline

import (
	"regexp"
	"unicode"

	"github.com/vigilcore/sentry/pkg/config"
	"github.com/vigilcore/sentry/pkg/normalize"
	"github.com/vigilcore/sentry/pkg/types"
)

var digitRunPattern = regexp.MustCompile(`\d{6,}`)

// SmartFilter is layer 2: a cheap pre-screen that scores "is there a
// name/org here?" before the expensive normalization/signals layers run.
// Scoring follows a tiered-threshold style: each structural signal present
// in the text (a legal-form word, a run of capitalized tokens, a long digit
// run) contributes a fixed weight; the total determines the decision band.
func SmartFilter(text string, cfg *config.ScreeningConfig) types.SmartFilterInput {
	score := 0.0

	if containsLegalForm(text) {
		score += 0.4
	}
	if titleCasedRunLength(text) >= 2 {
		score += 0.3
	}
	if digitRunPattern.MatchString(text) {
		score += 0.2
	}
	if len(text) >= 4 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}

	decision, shouldProcess := classify(score, cfg)

	return types.SmartFilterInput{
		ShouldProcess: shouldProcess,
		Confidence:    score,
		Decision:      decision,
	}
}

func classify(score float64, cfg *config.ScreeningConfig) (string, bool) {
	switch {
	case score >= 0.8:
		return "must_process", true
	case score >= cfg.SmartFilterRecommendThreshold:
		return "recommend", true
	case score >= cfg.SmartFilterMaybeThreshold:
		return "maybe", true
	default:
		return "skip", false
	}
}

func containsLegalForm(text string) bool {
	dict := normalize.Default()
	for _, word := range splitWords(text) {
		if dict.IsLegalForm(word) {
			return true
		}
	}
	return false
}

func splitWords(text string) []string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, toLowerRunes(current))
			current = nil
		}
	}
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			flush()
			continue
		}
		current = append(current, r)
	}
	flush()
	return words
}

func toLowerRunes(r []rune) string {
	out := make([]rune, len(r))
	for i, c := range r {
		out[i] = unicode.ToLower(c)
	}
	return string(out)
}

// titleCasedRunLength returns the length of the longest run of consecutive
// whitespace-delimited words in text that begin with an upper-case letter;
// all-caps words such as "ИНН" count too.
func titleCasedRunLength(text string) int {
	longest := 0
	current := 0
	for _, word := range splitRawWords(text) {
		runes := []rune(word)
		if len(runes) > 0 && unicode.IsUpper(runes[0]) {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 0
		}
	}
	return longest
}

func splitRawWords(text string) []string {
	var words []string
	var current []rune
	for _, r := range text {
		if unicode.IsSpace(r) {
			if len(current) > 0 {
				words = append(words, string(current))
				current = nil
			}
			continue
		}
		current = append(current, r)
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}
	return words
}
