package normalize

import (
	"strings"
	"unicode"

	"github.com/vigilcore/sentry/pkg/morph"
	"github.com/vigilcore/sentry/pkg/types"
)

// RoleNormalizeResult is the per-token output of normalizing by role,
// feeding directly into a TokenTrace.
type RoleNormalizeResult struct {
	Output     string
	MorphLang  string
	NormalForm string
	Fallback   bool
	Notes      string
	InferredGender morph.Gender
}

// NormalizeByRole applies §4.1.3's per-role operations to a single token,
// given the role already assigned by TagRoles and a gender inferred earlier
// in the same person run (so a SURNAME can agree with a PATRONYMIC's
// gender without ever converting a feminine surname to masculine).
func NormalizeByRole(token string, role types.Role, lang types.Language, cfg Config, inferredGender morph.Gender) RoleNormalizeResult {
	switch role {
	case types.RoleInitial:
		return normalizeInitial(token)
	case types.RoleOrgAnchor:
		return normalizeOrgAnchor(token)
	case types.RoleGiven, types.RoleSurname, types.RolePatronymic:
		if lang == types.LanguageEN {
			return normalizePersonEN(token, role, cfg)
		}
		return normalizePersonRUUK(token, role, lang, cfg, inferredGender)
	default:
		return RoleNormalizeResult{Output: ToTitle(token)}
	}
}

func normalizeInitial(token string) RoleNormalizeResult {
	runes := []rune(strings.TrimSuffix(token, "."))
	if len(runes) == 0 {
		return RoleNormalizeResult{Output: token}
	}
	out := string(unicode.ToUpper(runes[0])) + "."
	return RoleNormalizeResult{Output: out}
}

func normalizeOrgAnchor(token string) RoleNormalizeResult {
	stripped := strings.Trim(token, `"`)
	if isAllLower(stripped) {
		stripped = ToTitle(stripped)
	}
	return RoleNormalizeResult{Output: stripped}
}

// normalizePersonRUUK implements §4.1.3's morphology -> diminutive ->
// gender-adjustment chain for RU/UK given/surname/patronymic tokens.
func normalizePersonRUUK(token string, role types.Role, lang types.Language, cfg Config, inferredGender morph.Gender) RoleNormalizeResult {
	if isASCII(token) {
		// ASCII tokens inside an RU/UK context are never morphed (§4.1.3).
		out := ToTitle(token)
		if cfg.EnableENNicknames {
			if full, ok := Default().NicknameEN(strings.ToLower(token)); ok {
				out = ToTitle(full)
			}
		}
		return RoleNormalizeResult{Output: out}
	}

	if !cfg.EnableAdvancedFeatures {
		return RoleNormalizeResult{Output: ToTitle(token)}
	}

	var wantPOS []morph.POS
	switch role {
	case types.RoleGiven:
		wantPOS = []morph.POS{morph.POSName}
	case types.RoleSurname:
		wantPOS = []morph.POS{morph.POSSurname}
	case types.RolePatronymic:
		wantPOS = []morph.POS{morph.POSPatronymic}
	}

	parse, ok := morph.Default().BestNominative(token, wantPOS...)
	lemma := strings.ToLower(token)
	fallback := !ok
	if ok {
		lemma = parse.Lemma
	}

	if role == types.RoleGiven && cfg.EnableRUNicknameExpansion {
		if full, has := Default().Diminutive(lang, lemma); has {
			lemma = full
		}
	}

	// Gender agreement: feminine surname forms are never converted to
	// masculine; a masculine surname is adjusted to feminine only when
	// the inferred gender is feminine and the surname has a recognised
	// feminine counterpart via the morphological parse itself (the
	// analyzer already encodes this in its rule table).
	if role == types.RoleSurname && ok && inferredGender == morph.GenderFeminine && parse.Gender == morph.GenderMasculine {
		if fem, feminized := feminizeSurname(lemma); feminized {
			lemma = fem
		}
	}

	out := ToTitle(lemma)
	return RoleNormalizeResult{
		Output:     out,
		MorphLang:  string(lang),
		NormalForm: lemma,
		Fallback:   fallback,
	}
}

// feminizeSurname applies the common -ов/-ев/-ский -> -ова/-ева/-ская
// productive suffix rule. Returns ok=false when no productive rule applies,
// in which case the observed (masculine) form is kept per the "on ambiguity,
// remain with the observed form" rule.
func feminizeSurname(lemma string) (string, bool) {
	switch {
	case strings.HasSuffix(lemma, "ов"), strings.HasSuffix(lemma, "ев"):
		return lemma + "а", true
	case strings.HasSuffix(lemma, "ский"):
		return strings.TrimSuffix(lemma, "ский") + "ская", true
	default:
		return lemma, false
	}
}

// normalizePersonEN lower-cases English name particles (van, de, la, von,
// di, ...), expands nicknames for GIVEN tokens when enabled, and title-cases
// every other token.
func normalizePersonEN(token string, role types.Role, cfg Config) RoleNormalizeResult {
	lower := strings.ToLower(token)
	if Default().IsParticleEN(lower) {
		return RoleNormalizeResult{Output: lower, Notes: "en_particle"}
	}
	if role == types.RoleGiven && cfg.EnableENNicknames {
		if full, ok := Default().NicknameEN(lower); ok {
			return RoleNormalizeResult{Output: ToTitle(full), NormalForm: full}
		}
	}
	return RoleNormalizeResult{Output: ToTitle(token)}
}

// ToTitle applies the _to_title policy of §4.1.3: first letter of each
// non-hyphen, non-apostrophe segment upper, remainder lower, letter after
// an apostrophe upper ("O'Connor").
func ToTitle(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	upperNext := true
	for _, r := range s {
		switch {
		case r == '-':
			b.WriteRune(r)
			upperNext = true
		case r == '\'':
			b.WriteRune(r)
			upperNext = true
		case upperNext:
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func isAllLower(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

// InferGenderFromPatronymic reads the gender a patronymic's morphology
// implies, used to drive surname agreement within the same person run.
func InferGenderFromPatronymic(token string, lang types.Language) morph.Gender {
	if lang == types.LanguageEN {
		return morph.GenderUnknown
	}
	parse, ok := morph.Default().BestNominative(token, morph.POSPatronymic)
	if !ok {
		return morph.GenderUnknown
	}
	return parse.Gender
}
