package signals

import (
	"strings"

	"github.com/vigilcore/sentry/pkg/types"
)

// dobAnchorWindow bounds how far (in bytes) a DOB or ID may sit from a
// person's surface text and still count as attached evidence (§4.2).
const dobAnchorWindow = 80

// ExtractPersons assembles a PersonSignal per persons_core group produced by
// normalization, attaching nearby dates of birth and identifiers and scoring
// confidence as the weighted sum from §4.2: has patronymic (0.3), has two or
// more tokens (0.2), morphology succeeded (0.2), DOB attached (0.2), ID
// attached (0.1).
func ExtractPersons(rawText string, norm types.NormalizationResult, birth []types.ISODate, ids []types.ID) []types.PersonSignal {
	var persons []types.PersonSignal

	for _, group := range norm.PersonsCore {
		if len(group) == 0 {
			continue
		}
		fullName := strings.Join(group, " ")

		confidence := 0.0
		var evidence []string

		hasPatronymic, morphOK := personGroupTraits(norm.Trace, group)
		if hasPatronymic {
			confidence += 0.3
			evidence = append(evidence, "has_patronymic")
		}
		if len(group) >= 2 {
			confidence += 0.2
			evidence = append(evidence, "multi_token")
		}
		if morphOK {
			confidence += 0.2
			evidence = append(evidence, "morphology_resolved")
		}

		anchorPos := strings.Index(rawText, group[0])

		var dob *types.ISODate
		if anchorPos != -1 {
			for i := range birth {
				if birth[i].Position == nil || !withinWindow(birth[i].Position.Start, anchorPos, dobAnchorWindow) {
					continue
				}
				d := birth[i]
				dob = &d
				confidence += 0.2
				evidence = append(evidence, "dob_attached")
				break
			}
		}

		var attachedIDs []types.ID
		if anchorPos != -1 {
			for _, id := range ids {
				if id.Position == nil {
					continue
				}
				if withinWindow(id.Position.Start, anchorPos, dobAnchorWindow) {
					attachedIDs = append(attachedIDs, id)
				}
			}
		}
		if len(attachedIDs) > 0 {
			confidence += 0.1
			evidence = append(evidence, "id_attached")
		}

		persons = append(persons, types.PersonSignal{
			Core:       group,
			FullName:   fullName,
			DOB:        dob,
			IDs:        attachedIDs,
			Confidence: clamp01(confidence),
			Evidence:   evidence,
		})
	}

	return persons
}

// personGroupTraits reports whether the trace entries backing group include
// a PATRONYMIC role (hasPatronymic), and whether every token in the group
// resolved via a rule other than the raw fallback (morphOK), i.e. morphology
// or dictionary lookup actually fired rather than passing the token through
// unchanged.
func personGroupTraits(trace []types.TokenTrace, group []string) (hasPatronymic bool, morphOK bool) {
	morphOK = len(group) > 0
	matched := 0
	for _, tr := range trace {
		if !tr.Role.IsPersonRole() {
			continue
		}
		for _, g := range group {
			if tr.Output == g {
				matched++
				if tr.Role == types.RolePatronymic {
					hasPatronymic = true
				}
				if tr.Fallback {
					morphOK = false
				}
			}
		}
	}
	if matched == 0 {
		morphOK = false
	}
	return hasPatronymic, morphOK
}

func withinWindow(pos, anchor, window int) bool {
	d := pos - anchor
	if d < 0 {
		d = -d
	}
	return d <= window
}
