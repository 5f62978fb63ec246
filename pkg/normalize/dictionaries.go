package normalize

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"sync"

	"github.com/vigilcore/sentry/pkg/types"
)

// Dictionaries bundles every lookup table role tagging and per-role
// normalization need. Word lists are stored gzip-compressed in memory and
// inflated together on first lookup, guarded by a single sync.Once, matching
// the "compressed in memory, thread-safe lazy initialization" requirement.
type Dictionaries struct {
	once sync.Once

	legalForms   map[string]bool
	givenNames   map[types.Language]map[string]bool
	diminutives  map[types.Language]map[string]string // DIM -> FULL
	stopwords    map[types.Language]map[string]bool
	particlesEN  map[string]bool
	nicknamesEN  map[string]string

	compressed map[string][]byte
}

var defaultDictionaries = newDictionaries()

// Default returns the process-wide, lazily-initialised dictionary set.
func Default() *Dictionaries {
	return defaultDictionaries
}

func newDictionaries() *Dictionaries {
	return &Dictionaries{
		compressed: seedData(),
	}
}

func (d *Dictionaries) ensureLoaded() {
	d.once.Do(func() {
		d.legalForms = decodeWordSet(d.compressed["legal_forms"])
		d.particlesEN = decodeWordSet(d.compressed["particles_en"])

		d.givenNames = map[types.Language]map[string]bool{
			types.LanguageRU: decodeWordSet(d.compressed["given_ru"]),
			types.LanguageUK: decodeWordSet(d.compressed["given_uk"]),
			types.LanguageEN: decodeWordSet(d.compressed["given_en"]),
		}
		d.stopwords = map[types.Language]map[string]bool{
			types.LanguageRU: decodeWordSet(d.compressed["stop_ru"]),
			types.LanguageUK: decodeWordSet(d.compressed["stop_uk"]),
			types.LanguageEN: decodeWordSet(d.compressed["stop_en"]),
		}
		d.diminutives = map[types.Language]map[string]string{
			types.LanguageRU: decodeMapping(d.compressed["dim_ru"]),
			types.LanguageUK: decodeMapping(d.compressed["dim_uk"]),
		}
		d.nicknamesEN = decodeMapping(d.compressed["nick_en"])
	})
}

// IsLegalForm reports whether a lower-cased token is a recognised
// organisation legal form (ооо, тов, llc, ...).
func (d *Dictionaries) IsLegalForm(lower string) bool {
	d.ensureLoaded()
	return d.legalForms[lower]
}

// IsGivenName reports whether lower is a known given name in language lang.
func (d *Dictionaries) IsGivenName(lang types.Language, lower string) bool {
	d.ensureLoaded()
	set := d.givenNames[lang]
	return set != nil && set[lower]
}

// IsStopword reports whether lower is a stop word in language lang.
func (d *Dictionaries) IsStopword(lang types.Language, lower string) bool {
	d.ensureLoaded()
	set := d.stopwords[lang]
	return set != nil && set[lower]
}

// Diminutive resolves a RU/UK diminutive to its full form; ok is false when
// no mapping exists.
func (d *Dictionaries) Diminutive(lang types.Language, lower string) (string, bool) {
	d.ensureLoaded()
	m := d.diminutives[lang]
	if m == nil {
		return "", false
	}
	full, ok := m[lower]
	return full, ok
}

// NicknameEN resolves an English nickname ("Bill") to its formal form
// ("William").
func (d *Dictionaries) NicknameEN(lower string) (string, bool) {
	d.ensureLoaded()
	full, ok := d.nicknamesEN[lower]
	return full, ok
}

// IsParticleEN reports whether lower is a name particle (van, de, von, ...).
func (d *Dictionaries) IsParticleEN(lower string) bool {
	d.ensureLoaded()
	return d.particlesEN[lower]
}

func decodeWordSet(gz []byte) map[string]bool {
	out := map[string]bool{}
	for _, w := range decodeLines(gz) {
		out[w] = true
	}
	return out
}

func decodeMapping(gz []byte) map[string]string {
	out := map[string]string{}
	for _, line := range decodeLines(gz) {
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			out[parts[0]] = parts[1]
		}
	}
	return out
}

func decodeLines(gz []byte) []string {
	if len(gz) == 0 {
		return nil
	}
	r, err := gzip.NewReader(bytes.NewReader(gz))
	if err != nil {
		return nil
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil
	}
	var out []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func gz(lines ...string) []byte {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, _ = w.Write([]byte(strings.Join(lines, "\n")))
	_ = w.Close()
	return buf.Bytes()
}

// seedData builds the compressed in-memory seed tables. The lists are small,
// representative dictionaries; production deployments replace this function's
// output by loading a larger snapshot through the same Dictionaries API.
func seedData() map[string][]byte {
	return map[string][]byte{
		"legal_forms": gz(
			"ооо", "зао", "оао", "пао", "ано", "нко", "ип", "чп",
			"тов", "пп", "фоп", "кс",
			"llc", "ltd", "inc", "corp", "gmbh", "ag", "sa", "srl", "bv", "plc", "llp", "kg",
		),
		"particles_en": gz("van", "de", "la", "du", "von", "di", "der", "den", "el", "al"),
		"given_ru": gz(
			"александр", "алексей", "андрей", "антон", "артём", "борис", "вадим", "валентин",
			"валерий", "василий", "виктор", "виталий", "владимир", "владислав", "геннадий",
			"георгий", "григорий", "денис", "дмитрий", "евгений", "егор", "иван", "игорь",
			"илья", "константин", "леонид", "максим", "михаил", "никита", "николай", "олег",
			"павел", "пётр", "роман", "сергей", "станислав", "степан", "тимур", "фёдор", "юрий",
			"ярослав", "анна", "виктория", "галина", "дарья", "екатерина", "елена", "жанна",
			"ирина", "ксения", "лариса", "любовь", "людмила", "марина", "мария", "надежда",
			"наталья", "нина", "оксана", "ольга", "светлана", "софия", "татьяна", "юлия",
		),
		"given_uk": gz(
			"олександр", "андрій", "антон", "богдан", "василь", "віктор", "віталій", "володимир",
			"дмитро", "євген", "іван", "ігор", "максим", "микола", "олег", "павло", "петро",
			"роман", "сергій", "тарас", "юрій", "ярослав", "ганна", "галина", "дарина",
			"катерина", "ірина", "любов", "людмила", "марія", "надія", "наталія", "оксана",
			"ольга", "світлана", "софія", "тетяна", "юлія",
		),
		"given_en": gz(
			"james", "john", "robert", "michael", "william", "david", "richard", "joseph",
			"thomas", "charles", "daniel", "matthew", "mary", "patricia", "jennifer", "linda",
			"elizabeth", "barbara", "susan", "jessica", "sarah", "karen", "bill", "bob", "dick",
		),
		"stop_ru": gz("и", "в", "на", "с", "к", "от", "для", "по", "за", "о", "об", "из", "у", "до"),
		"stop_uk": gz("і", "й", "в", "на", "з", "до", "для", "по", "за", "від", "у", "об"),
		"stop_en": gz("and", "of", "the", "for", "to", "from", "a", "an", "in", "on"),
		"dim_ru": gz(
			"саша=александр", "шура=александр", "алексаша=александр",
			"лёша=алексей", "лёха=алексей", "дима=дмитрий", "митя=дмитрий",
			"вова=владимир", "володя=владимир", "вадик=вадим", "женя=евгений",
			"серёжа=сергей", "серёга=сергей", "коля=николай", "петя=пётр",
			"ваня=иван", "миша=михаил", "максим=максим",
			"аня=анна", "катя=екатерина", "лена=елена", "маша=мария",
			"наташа=наталья", "оля=ольга", "света=светлана", "таня=татьяна",
			"юля=юлия",
		),
		"dim_uk": gz(
			"сашко=олександр", "андрійко=андрій", "василько=василь",
			"ганнуся=ганна", "катруся=катерина", "оля=ольга", "юля=юлія",
		),
		"nick_en": gz(
			"bill=william", "billy=william", "will=william",
			"bob=robert", "bobby=robert", "rob=robert", "robbie=robert",
			"dick=richard", "rich=richard", "rick=richard",
			"jim=james", "jimmy=james", "jamie=james",
			"mike=michael", "mick=michael",
			"tom=thomas", "tommy=thomas",
			"dave=david",
			"matt=matthew",
			"dan=daniel", "danny=daniel",
			"joe=joseph", "joey=joseph",
			"liz=elizabeth", "beth=elizabeth", "betty=elizabeth",
			"jen=jennifer", "jenny=jennifer",
			"pat=patricia", "patty=patricia",
			"sue=susan", "susie=susan",
			"kate=katherine", "katie=katherine", "kathy=katherine",
		),
	}
}
