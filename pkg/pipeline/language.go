package pipeline

import (
	"unicode"

	"github.com/vigilcore/sentry/pkg/types"
)

// ukrainianOnlyLetters are present in the Ukrainian alphabet but absent from
// Russian; russianOnlyLetters is the converse. DetectLanguage counts the
// letters of each set and picks Ukrainian when it has at least as many hits
// as Russian, since the two alphabets otherwise overlap almost entirely.
var ukrainianOnlyLetters = map[rune]bool{
	'і': true, 'І': true,
	'ї': true, 'Ї': true,
	'є': true, 'Є': true,
	'ґ': true, 'Ґ': true,
}

var russianOnlyLetters = map[rune]bool{
	'ы': true, 'Ы': true,
	'э': true, 'Э': true,
	'ъ': true, 'Ъ': true,
}

// DetectLanguage is layer 3: classify text as ru/uk/en with a confidence
// score. Detection is script-based rather than model-based — the pipeline
// only needs enough signal to pick the right morphology/dictionary tables
// downstream, not a general-purpose language identifier.
func DetectLanguage(text string) (types.Language, float64) {
	var cyrillic, latin, ukHits, ruHits, total int

	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		total++
		switch {
		case ukrainianOnlyLetters[r]:
			ukHits++
			cyrillic++
		case russianOnlyLetters[r]:
			ruHits++
			cyrillic++
		case unicode.Is(unicode.Cyrillic, r):
			cyrillic++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}

	if total == 0 {
		return types.LanguageEN, 0.0
	}

	if cyrillic == 0 {
		return types.LanguageEN, confidenceOf(latin, total)
	}

	switch {
	case ukHits > 0 && ukHits >= ruHits:
		return types.LanguageUK, confidenceOf(cyrillic, total)
	case ruHits > 0:
		return types.LanguageRU, confidenceOf(cyrillic, total)
	default:
		// Pure overlap alphabet with no distinctive letters: default to
		// Russian, the more common source language for this corpus, but
		// report a middling confidence since the call is a guess.
		return types.LanguageRU, 0.55
	}
}

func confidenceOf(scriptHits, total int) float64 {
	if total == 0 {
		return 0
	}
	c := float64(scriptHits) / float64(total)
	if c > 0.99 {
		c = 0.99
	}
	return c
}
