package signals

import (
	"github.com/vigilcore/sentry/pkg/types"
)

// Extract runs layer 6 over a raw payment narrative and its normalization
// result, in the fixed sub-order required by §4.2: organizations first, then
// persons, then the sanctioned-ID fast path over every identifier found
// (independent of which entity, if any, it ended up attached to).
func Extract(rawText string, norm types.NormalizationResult, cache *SanctionedIDCache) types.SignalsResult {
	ids := ExtractIdentifiers(rawText)
	birth, other := ExtractDates(rawText)

	orgs := ExtractOrganizations(rawText, norm)
	orgs = AttachIDsToOrganizations(orgs, ids, rawText)

	persons := ExtractPersons(rawText, norm, birth, ids)

	if cache != nil {
		applySanctionedIDFastPath(ids, persons, orgs, cache)
	}

	numbers := groupByType(ids)

	return types.SignalsResult{
		Persons:       persons,
		Organizations: orgs,
		Numbers:       numbers,
		DatesBirth:    birth,
		DatesOther:    other,
		Confidence:    overallConfidence(persons, orgs),
	}
}

// applySanctionedIDFastPath implements §4.2's critical deviation: for every
// ID of an INN-family type with at least 10 digits, the sanctioned-ID cache
// is consulted regardless of Valid. A hit marks the ID sanctioned in place,
// wherever it is held (the flat list, a person's IDs, and an organization's
// IDs hold separate copies of the ID values, so each copy is updated
// independently).
func applySanctionedIDFastPath(ids []types.ID, persons []types.PersonSignal, orgs []types.OrganizationSignal, cache *SanctionedIDCache) {
	markAll := func(list []types.ID) {
		for i := range list {
			if !isINNFamily(list[i].Type) || len(digitsOnly(list[i].Value)) < 10 {
				continue
			}
			rec, ok := cache.Lookup(list[i].Value)
			if !ok {
				continue
			}
			list[i].Sanctioned = true
			list[i].SanctionedName = rec.Name
			list[i].SanctionedSource = rec.Source
			list[i].Confidence = 1.0
		}
	}

	markAll(ids)
	for i := range persons {
		markAll(persons[i].IDs)
	}
	for i := range orgs {
		markAll(orgs[i].IDs)
	}
}

func isINNFamily(t types.IDType) bool {
	return t == types.IDTypeINN || t == types.IDTypeINNUA || t == types.IDTypeINNRU
}

func digitsOnly(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b = append(b, s[i])
		}
	}
	return string(b)
}

func groupByType(ids []types.ID) map[types.IDType][]types.ID {
	out := map[types.IDType][]types.ID{}
	for _, id := range ids {
		out[id.Type] = append(out[id.Type], id)
	}
	return out
}

func overallConfidence(persons []types.PersonSignal, orgs []types.OrganizationSignal) float64 {
	if len(persons) == 0 && len(orgs) == 0 {
		return 0
	}
	var sum float64
	var n int
	for _, p := range persons {
		sum += p.Confidence
		n++
	}
	for _, o := range orgs {
		sum += o.Confidence
		n++
	}
	if n == 0 {
		return 0
	}
	return clamp01(sum / float64(n))
}
