package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/vigilcore/sentry/pkg/morph"
	"github.com/vigilcore/sentry/pkg/types"
)

// morphLemma recovers the best-guess nominative lemma for a token via the
// morphological analyzer, used as a fallback dictionary key for oblique-case
// given names that don't match their dictionary entry verbatim (e.g.
// "Марии" -> "мария").
func morphLemma(token string) string {
	parse, ok := morph.Default().BestNominative(token, morph.POSName)
	if !ok {
		return strings.ToLower(token)
	}
	return parse.Lemma
}

// patronymic suffix patterns per §4.1.2 step 4, covering masculine and
// feminine forms plus the enumerated oblique-case extensions.
var patronymicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(о|е|й)вич$`),
	regexp.MustCompile(`(?i)ич$`),
	regexp.MustCompile(`(?i)(о|е)вна$`),
	regexp.MustCompile(`(?i)ична$`),
	regexp.MustCompile(`(?i)івна$`),
	// oblique-case extensions
	regexp.MustCompile(`(?i)(о|е)вичем?$`),
	regexp.MustCompile(`(?i)(о|е)вичу$`),
	regexp.MustCompile(`(?i)(о|е)вной$`),
	regexp.MustCompile(`(?i)(о|е)вну$`),
}

// surname suffix patterns per §4.1.2 step 6.
var surnamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)енко$`),
	regexp.MustCompile(`(?i)(у|ю)к$`),
	regexp.MustCompile(`(?i)чук$`),
	regexp.MustCompile(`(?i)ов(а)?$`),
	regexp.MustCompile(`(?i)ев(а)?$`),
	regexp.MustCompile(`(?i)ськ(ий|а)$`),
	regexp.MustCompile(`(?i)цьк(ий|а)$`),
	regexp.MustCompile(`(?i)ян$`),
	regexp.MustCompile(`(?i)дзе$`),
	regexp.MustCompile(`(?i)іна$`),
	regexp.MustCompile(`(?i)ин(а)?$`),
	regexp.MustCompile(`(?i)ов(ой|ым|у|а)?$`),
	regexp.MustCompile(`(?i)ев(ой|ым|у|а)?$`),
}

var quotedPhrasePattern = regexp.MustCompile(`^"[^"]+"$`)

// RoleTagResult is the per-token classification output, carrying the rule
// name that fired (for TokenTrace.Rule).
type RoleTagResult struct {
	Role types.Role
	Rule string
}

// TagRoles assigns exactly one Role to each token, applying the finite-state
// precedence order of §4.1.2. Positional default (step 8) operates over the
// whole segment and is applied as a post-pass.
func TagRoles(tokens []Token, lang types.Language, cfg Config) []RoleTagResult {
	dict := Default()
	results := make([]RoleTagResult, len(tokens))

	for i, t := range tokens {
		lower := strings.ToLower(t.Text)

		switch {
		case dict.IsLegalForm(lower):
			results[i] = RoleTagResult{Role: types.RoleOrgLegalForm, Rule: "legal_form_dictionary"}

		case quotedPhrasePattern.MatchString(t.Text):
			results[i] = RoleTagResult{Role: types.RoleOrgAnchor, Rule: "quoted_anchor"}

		case isSingleLetterInitial(t.Text) && !isStrictStopwordBlocked(lower, lang, cfg):
			results[i] = RoleTagResult{Role: types.RoleInitial, Rule: "single_letter_initial"}

		case lang != types.LanguageEN && matchesAny(patronymicPatterns, t.Text):
			results[i] = RoleTagResult{Role: types.RolePatronymic, Rule: "patronymic_suffix"}

		case lang != types.LanguageEN && dict.IsGivenName(lang, lower):
			results[i] = RoleTagResult{Role: types.RoleGiven, Rule: "given_name_dictionary"}

		case lang != types.LanguageEN && matchesAny(surnamePatterns, t.Text):
			results[i] = RoleTagResult{Role: types.RoleSurname, Rule: "surname_suffix"}

		case lang != types.LanguageEN && dict.IsGivenName(lang, morphLemma(t.Text)):
			results[i] = RoleTagResult{Role: types.RoleGiven, Rule: "given_name_dictionary_oblique"}

		default:
			results[i] = RoleTagResult{Role: types.RoleUnknown, Rule: "unmatched"}
		}
	}

	applyPositionalDefault(tokens, results)

	return results
}

func isSingleLetterInitial(s string) bool {
	runes := []rune(s)
	return len(runes) == 2 && unicode.IsLetter(runes[0]) && runes[1] == '.'
}

// strictStopwordLetters lists, per language, the single-letter
// prepositions/conjunctions (з, с, и, ...) that strict_stopwords forbids from ever being tagged
// INITIAL, even when they are a bare letter followed by a dot.
var strictStopwordLetters = map[types.Language]map[string]bool{
	types.LanguageRU: {"с": true, "и": true, "о": true, "у": true, "к": true, "в": true},
	types.LanguageUK: {"з": true, "і": true, "й": true, "у": true, "в": true},
}

func isStrictStopwordBlocked(lower string, lang types.Language, cfg Config) bool {
	if !cfg.StrictStopwords {
		return false
	}
	letter := strings.TrimSuffix(lower, ".")
	set := strictStopwordLetters[lang]
	return set != nil && set[letter]
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// applyPositionalDefault implements §4.1.2 step 8: for a run of two or more
// UNKNOWN, neutral title-cased tokens in the same segment, the first is
// GIVEN and the last is SURNAME; any tokens strictly between them stay
// UNKNOWN. ORG_LEGAL_FORM tokens are never touched (hard rule).
func applyPositionalDefault(tokens []Token, results []RoleTagResult) {
	start := -1
	for i := 0; i <= len(tokens); i++ {
		isCandidate := i < len(tokens) &&
			results[i].Role == types.RoleUnknown &&
			isNeutralTitleCased(tokens[i].Text)

		if isCandidate {
			if start == -1 {
				start = i
			}
			continue
		}

		if start != -1 {
			end := i - 1
			if end > start {
				results[start] = RoleTagResult{Role: types.RoleGiven, Rule: "positional_default_first"}
				results[end] = RoleTagResult{Role: types.RoleSurname, Rule: "positional_default_last"}
			}
			start = -1
		}
	}
}

// isNeutralTitleCased reports whether s looks like a single, unremarkable
// title-cased name token: uppercase first letter, lowercase thereafter,
// except that an uppercase letter may immediately follow a hyphen or
// apostrophe ("Mary-Jane", "O'Connor").
func isNeutralTitleCased(s string) bool {
	runes := []rune(s)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return false
	}
	prevBoundary := false
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			if !prevBoundary {
				return false
			}
		}
		prevBoundary = r == '-' || r == '\''
	}
	return true
}
