package normalize

import "github.com/vigilcore/sentry/pkg/types"

// reconstructed bundles the output of assembling persons_core and
// organizations_core from tagged, per-role-normalized tokens (§4.1.4).
type reconstructed struct {
	PersonsCore       [][]string
	OrganizationsCore []string
	Normalized        []string
}

// Reconstruct groups consecutive person-role tokens into persons_core runs,
// collects ORG_ANCHOR tokens into organizations_core, deduplicates
// consecutive exact-equal person tokens, and assembles the flattened,
// whitespace-joinable normalized token sequence.
func Reconstruct(traces []types.TokenTrace) reconstructed {
	var persons [][]string
	var current []string
	var orgs []string
	var normalized []string

	flushPerson := func() {
		if len(current) > 0 {
			persons = append(persons, dedupConsecutive(current))
			current = nil
		}
	}

	var prevRole types.Role
	for _, tr := range traces {
		switch {
		case tr.Role.IsPersonRole():
			// A SURNAME directly following another SURNAME with no
			// connector token starts a new person (run-separation rule).
			if tr.Role == types.RoleSurname && prevRole == types.RoleSurname {
				flushPerson()
			}
			current = append(current, tr.Output)
			if tr.Role.EmittedInNormalized() {
				normalized = append(normalized, tr.Output)
			}

		case tr.Role == types.RoleOrgAnchor:
			flushPerson()
			orgs = append(orgs, tr.Output)

		default:
			flushPerson()
		}
		prevRole = tr.Role
	}
	flushPerson()

	return reconstructed{
		PersonsCore:       titleCaseAll(persons),
		OrganizationsCore: orgs,
		Normalized:        normalized,
	}
}

func dedupConsecutive(tokens []string) []string {
	if len(tokens) == 0 {
		return tokens
	}
	out := []string{tokens[0]}
	for _, t := range tokens[1:] {
		if t != out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}

func titleCaseAll(groups [][]string) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		titled := make([]string, len(g))
		for j, tok := range g {
			titled[j] = ToTitle(tok)
		}
		out[i] = titled
	}
	return out
}
