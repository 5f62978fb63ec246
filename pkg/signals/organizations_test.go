package signals

import (
	"testing"

	"github.com/vigilcore/sentry/pkg/normalize"
	"github.com/vigilcore/sentry/pkg/types"
)

func TestExtractOrganizationsQuotedAnchor(t *testing.T) {
	text := `ТОВ "Рога і Копита" отримувач`
	norm := normalize.Normalize(text, types.LanguageUK, normalize.DefaultConfig())

	orgs := ExtractOrganizations(text, norm)
	if len(orgs) != 1 {
		t.Fatalf("expected exactly one organization, got %d: %+v", len(orgs), orgs)
	}
	if orgs[0].LegalForm == "" {
		t.Error("expected legal form to be populated")
	}
	if orgs[0].Confidence < 0.5 {
		t.Errorf("expected at least the legal-form base confidence, got %f", orgs[0].Confidence)
	}
}

func TestAttachIDsToOrganizationsBumpsConfidence(t *testing.T) {
	orgs := []types.OrganizationSignal{
		{LegalForm: "ООО", Core: "Ромашка", FullName: "ООО Ромашка", Confidence: 0.5},
	}
	text := "ООО Ромашка ИНН 7707083893"
	ids := []types.ID{
		{Type: types.IDTypeINNRU, Value: "7707083893", Position: &types.Span{Start: 20, End: 30}},
	}

	out := AttachIDsToOrganizations(orgs, ids, text)
	if len(out[0].IDs) != 1 {
		t.Fatalf("expected one attached ID, got %d", len(out[0].IDs))
	}
	if out[0].Confidence <= 0.5 {
		t.Errorf("expected confidence bump after ID attachment, got %f", out[0].Confidence)
	}
}
