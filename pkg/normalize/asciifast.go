package normalize

import (
	"strings"
	"unicode"

	"github.com/vigilcore/sentry/pkg/types"
)

// tryASCIIFastpath implements §4.1.7: when the gate conditions hold, split
// on whitespace, run a reduced English-only given/surname tagger, title-case
// each token, and return confidence 0.95. It must produce the same
// persons_core as the full pipeline on this restricted input domain — that
// parity is exercised by the shadow-mode test in normalize_test.go rather
// than enforced at runtime (enforcing it here would defeat the fast path's
// purpose).
func tryASCIIFastpath(text string, cfg Config) (types.NormalizationResult, bool) {
	if !isPureASCIIName(text) {
		return types.NormalizationResult{}, false
	}
	if cfg.EnableAdvancedFeatures {
		return types.NormalizationResult{}, false
	}
	n := len([]rune(text))
	if n < 2 || n > 100 {
		return types.NormalizationResult{}, false
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return types.NormalizationResult{}, false
	}

	dict := Default()
	roles := make([]types.Role, len(fields))
	for i, f := range fields {
		lower := strings.ToLower(f)
		switch {
		case dict.IsGivenName(types.LanguageEN, lower):
			roles[i] = types.RoleGiven
		case len(fields) >= 2 && i == 0:
			roles[i] = types.RoleGiven
		case len(fields) >= 2 && i == len(fields)-1:
			roles[i] = types.RoleSurname
		default:
			roles[i] = types.RoleUnknown
		}
	}

	titled := make([]string, len(fields))
	traces := make([]types.TokenTrace, len(fields))
	for i, f := range fields {
		titled[i] = ToTitle(f)
		traces[i] = types.TokenTrace{
			Token:  f,
			Role:   roles[i],
			Rule:   "ascii_fastpath",
			Output: titled[i],
		}
	}

	return types.NormalizationResult{
		Normalized:        strings.Join(titled, " "),
		Tokens:            titled,
		Trace:             traces,
		PersonsCore:       [][]string{titled},
		OrganizationsCore: nil,
		Language:          types.LanguageEN,
		Confidence:        0.95,
		TokenCount:        len(titled),
		Success:           true,
	}, true
}

// isPureASCIIName reports whether s contains only ASCII letters, space,
// hyphen, apostrophe, and dot.
func isPureASCIIName(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
		if unicode.IsLetter(r) {
			continue
		}
		switch r {
		case ' ', '-', '\'', '.':
			continue
		default:
			return false
		}
	}
	return true
}
