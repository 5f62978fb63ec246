package signals

import "testing"

func TestValidateINNChecksum10Digit(t *testing.T) {
	if !validateINNChecksum("7707083893") {
		t.Error("expected a known-valid 10-digit INN to pass checksum")
	}
	if validateINNChecksum("1234567890") {
		t.Error("expected a random 10-digit string to fail checksum")
	}
}

func TestValidateIBAN(t *testing.T) {
	if !validateIBAN("DE89370400440532013000") {
		t.Error("expected well-known IBAN fixture to validate")
	}
	if validateIBAN("DE00000000000000000000") {
		t.Error("expected mismatched check digits to fail")
	}
}

func TestExtractIdentifiersEmitsInvalidCandidates(t *testing.T) {
	ids := ExtractIdentifiers("платеж ИНН 1234567890 за услуги")
	if len(ids) == 0 {
		t.Fatal("expected at least one ID candidate")
	}
	found := false
	for _, id := range ids {
		if id.Value == "1234567890" {
			found = true
			if id.Valid {
				t.Error("expected this candidate to fail checksum validation")
			}
		}
	}
	if !found {
		t.Fatal("expected the 10-digit run to be emitted despite failing checksum")
	}
}

func TestDedupeIDsKeepsHighestConfidence(t *testing.T) {
	ids := ExtractIdentifiers("ИНН 7707083893 ИНН 7707083893")
	count := 0
	for _, id := range ids {
		if id.Value == "7707083893" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one deduplicated entry, got %d", count)
	}
}
