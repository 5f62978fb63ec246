package signals

import (
	"testing"

	"github.com/vigilcore/sentry/pkg/normalize"
	"github.com/vigilcore/sentry/pkg/types"
)

func TestExtractOrdersOrganizationsPersonsThenSanctionedFastPath(t *testing.T) {
	text := `Оплата ООО "Вектор" ИНН 7707083893 получатель Иванов Иван Иванович`
	norm := normalize.Normalize(text, types.LanguageRU, normalize.DefaultConfig())

	cache := NewSanctionedIDCache()
	cache.Swap(map[string]SanctionRecord{
		"7707083893": {Value: "7707083893", Name: "Sanctioned Co", Source: "test-list"},
	})

	result := Extract(text, norm, cache)

	if len(result.Organizations) == 0 {
		t.Fatal("expected at least one organization to be extracted")
	}
	if len(result.Persons) == 0 {
		t.Fatal("expected at least one person to be extracted")
	}

	sanctionedSeen := false
	for _, id := range result.Numbers[types.IDTypeINNUA] {
		if id.Value == "7707083893" && id.Sanctioned {
			sanctionedSeen = true
		}
	}
	if !sanctionedSeen {
		t.Error("expected the INN to be marked sanctioned via the fast path")
	}
}

func TestExtractHandlesNilCacheGracefully(t *testing.T) {
	text := "Смирнов Алексей Петрович"
	norm := normalize.Normalize(text, types.LanguageRU, normalize.DefaultConfig())
	result := Extract(text, norm, nil)
	if len(result.Persons) == 0 {
		t.Fatal("expected person extraction to work without a sanctioned-ID cache")
	}
}
