// Package morph provides a simplified Russian/Ukrainian morphological
// analyzer for personal names: given names, patronymics, and surnames.
// Unlike a full OpenCorpora-backed analyzer it carries no embedded
// dictionary data — it recognises case endings by suffix rule and returns
// the nominative-singular lemma, which is all role normalization (§4.1.3)
// needs.
package morph

import (
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// POS is the part of speech a parse was assigned.
type POS string

const (
	POSName       POS = "Name"
	POSSurname    POS = "Surn"
	POSPatronymic POS = "Patr"
	POSUnknown    POS = "UNKN"
)

// Gender is the grammatical gender of a parse.
type Gender string

const (
	GenderMasculine Gender = "masc"
	GenderFeminine  Gender = "femn"
	GenderUnknown   Gender = ""
)

// Case is the grammatical case of a parse.
type Case string

const (
	CaseNominative Case = "nomn"
	CaseOblique    Case = "oblq"
)

// Parse is one candidate grammatical analysis of a surface word.
type Parse struct {
	Lemma      string
	POS        POS
	Gender     Gender
	Case       Case
	Confidence float64
}

// Analyzer performs suffix-rule morphological analysis for RU/UK personal
// names. Safe for concurrent use; obtain the shared instance via Default.
type Analyzer struct {
	cache *gocache.Cache
}

var (
	defaultOnce     sync.Once
	defaultAnalyzer *Analyzer
)

// Default returns the process-wide Analyzer. Its parse cache is a go-cache
// TTL cache: entries expire 30 minutes after they are stored and a cleanup
// sweep runs every 5 minutes. The cache has no entry-count bound and no LRU
// eviction.
func Default() *Analyzer {
	defaultOnce.Do(func() {
		defaultAnalyzer = New()
	})
	return defaultAnalyzer
}

// New builds a fresh Analyzer with its own cache; useful for tests that
// must not share state with the process-wide singleton.
func New() *Analyzer {
	return &Analyzer{
		cache: gocache.New(30*time.Minute, 5*time.Minute),
	}
}

// rule describes one suffix-stripping declension rule: strip Suffix, append
// NominativeSuffix to recover the nominative-singular lemma.
type rule struct {
	Suffix            string
	NominativeSuffix  string
	POS               POS
	Gender            Gender
	Case              Case
	Confidence        float64
}

// rules lists the suffix rules. Analyze applies every rule whose suffix
// matches and orders the resulting parses by confidence; rules of equal
// confidence keep their order in this table.
var rules = []rule{
	// Patronymic oblique cases -> nominative masculine/feminine.
	{"вичем", "вич", POSPatronymic, GenderMasculine, CaseOblique, 0.9},
	{"вичу", "вич", POSPatronymic, GenderMasculine, CaseOblique, 0.9},
	{"вича", "вич", POSPatronymic, GenderMasculine, CaseOblique, 0.9},
	{"вной", "вна", POSPatronymic, GenderFeminine, CaseOblique, 0.9},
	{"вну", "вна", POSPatronymic, GenderFeminine, CaseOblique, 0.9},
	{"вич", "вич", POSPatronymic, GenderMasculine, CaseNominative, 0.95},
	{"вна", "вна", POSPatronymic, GenderFeminine, CaseNominative, 0.95},
	{"івна", "івна", POSPatronymic, GenderFeminine, CaseNominative, 0.95},

	// Surname oblique -> nominative.
	{"ову", "ов", POSSurname, GenderMasculine, CaseOblique, 0.85},
	{"овым", "ов", POSSurname, GenderMasculine, CaseOblique, 0.85},
	{"овой", "ова", POSSurname, GenderFeminine, CaseOblique, 0.85},
	{"ову", "ова", POSSurname, GenderFeminine, CaseOblique, 0.7},
	{"евой", "ева", POSSurname, GenderFeminine, CaseOblique, 0.85},
	{"еву", "ев", POSSurname, GenderMasculine, CaseOblique, 0.85},
	{"ого", "ий", POSSurname, GenderMasculine, CaseOblique, 0.6},
	{"ому", "ий", POSSurname, GenderMasculine, CaseOblique, 0.6},

	// Surname nominative forms (identity rules, high confidence).
	{"ов", "ов", POSSurname, GenderMasculine, CaseNominative, 0.9},
	{"ова", "ова", POSSurname, GenderFeminine, CaseNominative, 0.9},
	{"ев", "ев", POSSurname, GenderMasculine, CaseNominative, 0.9},
	{"ева", "ева", POSSurname, GenderFeminine, CaseNominative, 0.9},
	{"енко", "енко", POSSurname, GenderUnknown, CaseNominative, 0.9},
	{"ський", "ський", POSSurname, GenderMasculine, CaseNominative, 0.9},
	{"ська", "ська", POSSurname, GenderFeminine, CaseNominative, 0.9},

	// Given-name oblique cases -> nominative (common first-declension endings).
	{"ии", "ия", POSName, GenderFeminine, CaseOblique, 0.6},
	{"ы", "а", POSName, GenderFeminine, CaseOblique, 0.5},
	{"е", "а", POSName, GenderFeminine, CaseOblique, 0.5},
	{"у", "а", POSName, GenderFeminine, CaseOblique, 0.55},
	{"ой", "а", POSName, GenderFeminine, CaseOblique, 0.6},
	{"а", "", POSName, GenderMasculine, CaseOblique, 0.4},
}

// Analyze returns every matching parse for word, most-confident first. It
// never returns an error; an unrecognised word yields a single low-confidence
// UNKN parse whose lemma is the input unchanged, matching the "per-token
// analyzer failures fall back to casing-only" rule upstream (§4.1.5).
func (a *Analyzer) Analyze(word string) []Parse {
	lower := strings.ToLower(strings.TrimSpace(word))
	if lower == "" {
		return nil
	}
	if cached, ok := a.cache.Get(lower); ok {
		return cached.([]Parse)
	}

	var parses []Parse
	for _, r := range rules {
		if strings.HasSuffix(lower, r.Suffix) && len(lower) > len(r.Suffix) {
			stem := lower[:len(lower)-len(r.Suffix)]
			parses = append(parses, Parse{
				Lemma:      stem + r.NominativeSuffix,
				POS:        r.POS,
				Gender:     r.Gender,
				Case:       r.Case,
				Confidence: r.Confidence,
			})
		}
	}
	if parses == nil {
		parses = []Parse{{Lemma: lower, POS: POSUnknown, Confidence: 0.1}}
	}

	sortParsesByConfidence(parses)
	a.cache.Set(lower, parses, gocache.DefaultExpiration)
	return parses
}

// BestNominative returns the best parse that is nominative singular and
// matches one of the wanted parts of speech, falling back to the
// highest-confidence parse of any case when no nominative parse exists —
// matching §4.1.3's "prefer nominative singular; fall back to the lemma of
// the best-confidence parse" rule.
func (a *Analyzer) BestNominative(word string, wantPOS ...POS) (Parse, bool) {
	parses := a.Analyze(word)
	if len(parses) == 0 {
		return Parse{}, false
	}
	for _, p := range parses {
		if p.Case == CaseNominative && posMatches(p.POS, wantPOS) {
			return p, true
		}
	}
	for _, p := range parses {
		if posMatches(p.POS, wantPOS) {
			return p, true
		}
	}
	return parses[0], true
}

func posMatches(p POS, want []POS) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		if p == w {
			return true
		}
	}
	return false
}

func sortParsesByConfidence(parses []Parse) {
	for i := 1; i < len(parses); i++ {
		for j := i; j > 0 && parses[j].Confidence > parses[j-1].Confidence; j-- {
			parses[j], parses[j-1] = parses[j-1], parses[j]
		}
	}
}
