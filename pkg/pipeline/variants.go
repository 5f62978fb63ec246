package pipeline

import (
	"strings"

	"github.com/vigilcore/sentry/pkg/morph"
	"github.com/vigilcore/sentry/pkg/types"
)

// translitTable is an ICAO-9303-style Cyrillic→Latin transliteration map,
// the scheme most payment-narrative sources already use for machine-readable
// travel documents, so round-tripping through it tends to agree with how a
// name was likely already romanized elsewhere in the payment chain.
var translitTable = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e",
	'ж': "zh", 'з': "z", 'и': "i", 'й': "i", 'к': "k", 'л': "l", 'м': "m",
	'н': "n", 'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u",
	'ф': "f", 'х': "kh", 'ц': "ts", 'ч': "ch", 'ш': "sh", 'щ': "shch",
	'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "iu", 'я': "ia",
	'і': "i", 'ї': "i", 'є': "ie", 'ґ': "g",
}

// Transliterate renders a Cyrillic name in Latin script per translitTable.
// Non-Cyrillic runes pass through unchanged.
func Transliterate(s string) string {
	var b strings.Builder
	for _, r := range s {
		lower := r
		upper := false
		if r >= 'А' && r <= 'я' || r == 'Ё' || r == 'І' || r == 'Ї' || r == 'Є' || r == 'Ґ' {
			lower = toLowerCyrillic(r)
			upper = lower != r
		}
		if rep, ok := translitTable[lower]; ok {
			if upper && len(rep) > 0 {
				b.WriteString(strings.ToUpper(rep[:1]) + rep[1:])
			} else {
				b.WriteString(rep)
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func toLowerCyrillic(r rune) rune {
	if r >= 'А' && r <= 'Я' {
		return r + ('а' - 'А')
	}
	switch r {
	case 'Ё':
		return 'ё'
	case 'І':
		return 'і'
	case 'Ї':
		return 'ї'
	case 'Є':
		return 'є'
	case 'Ґ':
		return 'ґ'
	}
	return r
}

// GenerateVariants is layer 7 (optional): produce transliteration and
// morphological-nominative variants of the normalized name for downstream
// fuzzy matching. Variants are deduplicated and never include the
// normalized form itself.
func GenerateVariants(norm types.NormalizationResult, analyzer *morph.Analyzer) []string {
	if !norm.Success || norm.Normalized == "" {
		return nil
	}

	seen := map[string]bool{norm.Normalized: true}
	var variants []string

	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			return
		}
		seen[v] = true
		variants = append(variants, v)
	}

	add(Transliterate(norm.Normalized))

	if analyzer != nil {
		nominative := make([]string, len(norm.Tokens))
		changed := false
		for i, tok := range norm.Tokens {
			if parse, ok := analyzer.BestNominative(tok); ok && parse.Lemma != tok {
				nominative[i] = parse.Lemma
				changed = true
			} else {
				nominative[i] = tok
			}
		}
		if changed {
			joined := strings.Join(nominative, " ")
			add(joined)
			add(Transliterate(joined))
		}
	}

	for _, group := range norm.PersonsCore {
		if len(group) < 2 {
			continue
		}
		reordered := append(append([]string{}, group[1:]...), group[0])
		add(strings.Join(reordered, " "))
	}

	return variants
}
