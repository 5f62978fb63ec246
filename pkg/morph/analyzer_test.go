package morph

import "testing"

func TestAnalyzeSurnameNominative(t *testing.T) {
	a := New()
	p, ok := a.BestNominative("Иванов", POSSurname)
	if !ok {
		t.Fatal("expected a parse")
	}
	if p.Lemma != "иванов" {
		t.Errorf("expected lemma 'иванов', got %q", p.Lemma)
	}
	if p.Gender != GenderMasculine {
		t.Errorf("expected masculine gender, got %v", p.Gender)
	}
}

func TestAnalyzeSurnameObliqueRecoversNominative(t *testing.T) {
	a := New()
	p, ok := a.BestNominative("Иванову", POSSurname)
	if !ok {
		t.Fatal("expected a parse")
	}
	if p.Lemma == "" {
		t.Error("expected a non-empty lemma")
	}
}

func TestAnalyzeUnknownWordFallsBackGracefully(t *testing.T) {
	a := New()
	parses := a.Analyze("xyz123")
	if len(parses) != 1 || parses[0].POS != POSUnknown {
		t.Errorf("expected a single UNKN fallback parse, got %+v", parses)
	}
}

func TestAnalyzeIsCached(t *testing.T) {
	a := New()
	first := a.Analyze("Петренко")
	second := a.Analyze("петренко")
	if len(first) != len(second) {
		t.Errorf("expected cache to be case-insensitive and stable, got %d vs %d", len(first), len(second))
	}
}

func TestDefaultReturnsSingleton(t *testing.T) {
	if Default() != Default() {
		t.Error("Default() should return the same instance on every call")
	}
}
