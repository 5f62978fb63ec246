package signals

import (
	"testing"

	"github.com/vigilcore/sentry/pkg/normalize"
	"github.com/vigilcore/sentry/pkg/types"
)

func TestExtractPersonsPatronymicBoostsConfidence(t *testing.T) {
	text := "Иванов Иван Иванович"
	norm := normalize.Normalize(text, types.LanguageRU, normalize.DefaultConfig())

	if len(norm.PersonsCore) == 0 {
		t.Fatal("expected at least one persons_core group")
	}

	persons := ExtractPersons(text, norm, nil, nil)
	if len(persons) == 0 {
		t.Fatal("expected at least one extracted person")
	}

	found := false
	for _, p := range persons {
		for _, e := range p.Evidence {
			if e == "has_patronymic" {
				found = true
			}
		}
	}
	if !found {
		t.Error("expected at least one person to carry has_patronymic evidence")
	}
}

func TestExtractPersonsAttachesDOBWithinWindow(t *testing.T) {
	text := "Петров Петр Петрович д/р 15.03.1980"
	norm := normalize.Normalize(text, types.LanguageRU, normalize.DefaultConfig())
	birth, _ := ExtractDates(text)
	if len(birth) == 0 {
		t.Fatal("expected a birth date to be parsed")
	}

	persons := ExtractPersons(text, norm, birth, nil)
	if len(persons) == 0 {
		t.Fatal("expected at least one extracted person")
	}
	if persons[0].DOB == nil {
		t.Error("expected DOB to be attached to the first person")
	}
}

// TestExtractPersonsDoesNotAttachDistantOrWrongPersonDOB guards against the
// DOB attachment rule degenerating into "attach the first parsed birth date
// to every person": a second person with no DOB nearby must not inherit the
// first person's date, and a DOB anchored far from a name must not attach to
// it either.
func TestExtractPersonsDoesNotAttachDistantOrWrongPersonDOB(t *testing.T) {
	padding := ""
	for i := 0; i < 30; i++ {
		padding += "xxxxxxxxxx "
	}
	text := "Петров Петр Петрович д/р 15.03.1980 " + padding + "Сидоров Сидор Сидорович"
	norm := normalize.Normalize(text, types.LanguageRU, normalize.DefaultConfig())
	birth, _ := ExtractDates(text)
	if len(birth) == 0 {
		t.Fatal("expected a birth date to be parsed")
	}
	if len(norm.PersonsCore) < 2 {
		t.Fatal("expected two persons_core groups")
	}

	persons := ExtractPersons(text, norm, birth, nil)
	if len(persons) < 2 {
		t.Fatal("expected two extracted persons")
	}

	var nearName, farName bool
	for _, p := range persons {
		if p.FullName == "Петров Петр Петрович" {
			nearName = true
			if p.DOB == nil {
				t.Error("expected the nearby person to keep its DOB attachment")
			}
		}
		if p.FullName == "Сидоров Сидор Сидорович" {
			farName = true
			if p.DOB != nil {
				t.Error("expected the distant person to NOT inherit the first person's DOB")
			}
		}
	}
	if !nearName || !farName {
		t.Fatalf("expected both persons present, got %+v", persons)
	}
}
