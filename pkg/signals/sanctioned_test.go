package signals

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vigilcore/sentry/pkg/types"
)

// TestSanctionedFastPathIgnoresValidity is the totality property from §4.2:
// sanctioned == true iff value is a key in the cache, independent of the
// ID's own checksum validity.
func TestSanctionedFastPathIgnoresValidity(t *testing.T) {
	cache := NewSanctionedIDCache()
	cache.Swap(map[string]SanctionRecord{
		"1234567890": {Value: "1234567890", Name: "Flagged Entity", Source: "test-list", HasTIN: true},
	})

	ids := []types.ID{
		{Type: types.IDTypeINNUA, Value: "1234567890", Valid: false},
		{Type: types.IDTypeINNUA, Value: "9999999999", Valid: true},
	}

	applySanctionedIDFastPath(ids, nil, nil, cache)

	if !ids[0].Sanctioned {
		t.Error("expected invalid-but-cached INN to be marked sanctioned")
	}
	if ids[0].SanctionedName != "Flagged Entity" {
		t.Errorf("expected sanctioned name to be populated, got %q", ids[0].SanctionedName)
	}
	if ids[1].Sanctioned {
		t.Error("expected uncached INN to remain unsanctioned")
	}
}

func TestSanctionedFastPathSkipsNonINNTypes(t *testing.T) {
	cache := NewSanctionedIDCache()
	cache.Swap(map[string]SanctionRecord{
		"DE89370400440532013000": {Value: "DE89370400440532013000", Name: "Should Not Match"},
	})
	ids := []types.ID{
		{Type: types.IDTypeIBAN, Value: "DE89370400440532013000", Valid: true},
	}
	applySanctionedIDFastPath(ids, nil, nil, cache)
	if ids[0].Sanctioned {
		t.Error("IBAN values must never be checked against the sanctioned-ID cache")
	}
}

// TestLoadSnapshotParsesDigitKeyedObject pins down the §6 snapshot format:
// an object keyed by canonical digit-string identifier, not an array.
func TestLoadSnapshotParsesDigitKeyedObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	data := `{
		"1234567890": {"name": "Flagged Entity", "source": "test-list", "entity_type": "person", "has_tin": true, "has_dob": false},
		"7707083893": {"name": "Flagged Org", "source": "test-list", "entity_type": "organization"}
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("writing fixture snapshot: %v", err)
	}

	cache := NewSanctionedIDCache()
	if err := cache.LoadSnapshot(path); err != nil {
		t.Fatalf("LoadSnapshot returned error: %v", err)
	}

	rec, ok := cache.Lookup("1234567890")
	if !ok {
		t.Fatal("expected digit-string key to be looked up directly")
	}
	if rec.Value != "1234567890" {
		t.Errorf("expected Value to be populated from the object key, got %q", rec.Value)
	}
	if rec.EntityType != "person" {
		t.Errorf("expected entity_type to be parsed, got %q", rec.EntityType)
	}
	if !rec.HasTIN || rec.HasDOB {
		t.Errorf("expected has_tin/has_dob parsed correctly, got HasTIN=%v HasDOB=%v", rec.HasTIN, rec.HasDOB)
	}

	orgRec, ok := cache.Lookup("7707083893")
	if !ok || orgRec.EntityType != "organization" {
		t.Errorf("expected second entry to load with entity_type=organization, got %+v ok=%v", orgRec, ok)
	}
}

func TestSanctionedIDCacheSwapIsAtomic(t *testing.T) {
	cache := NewSanctionedIDCache()
	cache.Swap(map[string]SanctionRecord{"1": {Value: "1", Name: "a"}})
	if _, ok := cache.Lookup("1"); !ok {
		t.Fatal("expected lookup to find freshly swapped record")
	}
	cache.Swap(map[string]SanctionRecord{"2": {Value: "2", Name: "b"}})
	if _, ok := cache.Lookup("1"); ok {
		t.Error("expected old record to be gone after swap")
	}
	if _, ok := cache.Lookup("2"); !ok {
		t.Error("expected new record to be present after swap")
	}
}
