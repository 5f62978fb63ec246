package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// homoglyphFold maps visually-confusable Latin/Cyrillic characters that are
// frequently substituted in evasive payment narratives onto one canonical
// script. Kept intentionally small: only letters that are genuinely
// ambiguous across RU/UK/EN contexts are mapped.
var homoglyphFold = map[rune]rune{
	'а': 'a', 'е': 'e', 'о': 'o', 'р': 'p', 'с': 'c', 'х': 'x', 'у': 'y',
	'А': 'A', 'В': 'B', 'Е': 'E', 'К': 'K', 'М': 'M', 'Н': 'H', 'О': 'O',
	'Р': 'P', 'С': 'C', 'Т': 'T', 'Х': 'X',
}

var quoteFold = map[rune]rune{
	'“': '"', '”': '"', '«': '"', '»': '"',
	'‘': '\'', '’': '\'', 'ʼ': '\'',
}

var dashFold = map[rune]rune{
	'‐': '-', '‑': '-', '‒': '-', '–': '-', '—': '-', '―': '-',
}

// UnicodeNormalize applies layer 4: NFKC normalization, fullwidth/halfwidth
// folding, quote/dash canonicalization, and the configured ё→е strategy.
// It does not fold homoglyphs: normalization keeps script identity so later
// role tagging can still tell Cyrillic text from Latin text.
func UnicodeNormalize(s string, yo YoStrategy) string {
	s = norm.NFKC.String(s)
	s = width.Fold.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := quoteFold[r]; ok {
			b.WriteRune(repl)
			continue
		}
		if repl, ok := dashFold[r]; ok {
			b.WriteRune(repl)
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()

	switch yo {
	case YoFold:
		s = strings.ReplaceAll(s, "ё", "е")
		s = strings.ReplaceAll(s, "Ё", "Е")
	case YoPreserve:
		// no-op
	}

	return s
}

// FoldHomoglyphs maps visually-confusable Cyrillic letters onto their Latin
// equivalents. Neither UnicodeNormalize nor the ASCII fast-path gate calls
// it; the main pipeline keeps script identity intact for role tagging.
func FoldHomoglyphs(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if repl, ok := homoglyphFold[r]; ok {
			b.WriteRune(repl)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
