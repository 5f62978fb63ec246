package signals

import (
	"regexp"
	"strings"

	"github.com/vigilcore/sentry/pkg/types"
)

var paymentTriggerPattern = regexp.MustCompile(`(?i)(оплата|платеж|платіж|payment|перевод|переказ|за послуги|invoice)`)

// ExtractOrganizations pairs each ORG_LEGAL_FORM trace entry with the
// nearest following ORG_ANCHOR within 4 surface tokens (§4.2) and computes
// its confidence as the weighted sum of presence flags.
func ExtractOrganizations(rawText string, norm types.NormalizationResult) []types.OrganizationSignal {
	var orgs []types.OrganizationSignal

	for i, tr := range norm.Trace {
		if tr.Role != types.RoleOrgLegalForm {
			continue
		}

		anchorIdx, anchor, found := nearestOrgAnchor(norm.Trace, i, 4)
		if !found {
			continue
		}

		quoted := strings.Contains(rawText, `"`+anchor+`"`)
		core := anchor
		fullName := tr.Output + " " + core
		if quoted && !strings.HasPrefix(core, `"`) {
			fullName = tr.Output + ` "` + core + `"`
		}

		confidence := 0.5 // legal form present
		if quoted {
			confidence += 0.2
		}
		if paymentTriggerPattern.MatchString(rawText) {
			confidence += 0.2
		}

		evidence := []string{"legal_form:" + tr.Output, "anchor:" + anchor}
		_ = anchorIdx

		orgs = append(orgs, types.OrganizationSignal{
			LegalForm:  tr.Output,
			Core:       core,
			FullName:   fullName,
			Confidence: clamp01(confidence),
			Evidence:   evidence,
		})
	}

	return orgs
}

func nearestOrgAnchor(traces []types.TokenTrace, from int, maxDistance int) (int, string, bool) {
	for j := from + 1; j < len(traces) && j <= from+maxDistance; j++ {
		if traces[j].Role == types.RoleOrgAnchor {
			return j, traces[j].Output, true
		}
	}
	return -1, "", false
}

// AttachIDsToOrganizations assigns every extracted ID to the organization
// whose anchor it textually follows most closely, bumping confidence by the
// "ID attached (0.1)" term from the weighted confidence sum once attached.
func AttachIDsToOrganizations(orgs []types.OrganizationSignal, ids []types.ID, rawText string) []types.OrganizationSignal {
	anchors := make([]int, len(orgs))
	for i := range orgs {
		anchors[i] = strings.Index(rawText, orgs[i].Core)
	}
	for i := range orgs {
		anchorPos := anchors[i]
		if anchorPos == -1 {
			continue
		}
		for _, id := range ids {
			if id.Position == nil {
				continue
			}
			if id.Position.Start < anchorPos {
				continue
			}
			closer := false
			for _, p := range anchors {
				if p > anchorPos && p <= id.Position.Start {
					closer = true
				}
			}
			if closer {
				continue
			}
			orgs[i].IDs = append(orgs[i].IDs, id)
		}
		if len(orgs[i].IDs) > 0 {
			orgs[i].Confidence = clamp01(orgs[i].Confidence + 0.1)
			orgs[i].Evidence = append(orgs[i].Evidence, "id_attached")
		}
	}
	return orgs
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
