package signals

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vigilcore/sentry/pkg/types"
)

var (
	dateDMYDot   = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)
	dateYMDDash  = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	dateDMYSlash = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	dateYearOnly = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	dobAnchorPattern = regexp.MustCompile(`(?i)(д/р|дата рождения|dob|born|р\.н\.)`)
)

var cyrillicMonths = map[string]int{
	"января": 1, "февраля": 2, "марта": 3, "апреля": 4, "мая": 5, "июня": 6,
	"июля": 7, "августа": 8, "сентября": 9, "октября": 10, "ноября": 11, "декабря": 12,
	"січня": 1, "лютого": 2, "березня": 3, "квітня": 4, "травня": 5, "червня": 6,
	"липня": 7, "серпня": 8, "вересня": 9, "жовтня": 10, "листопада": 11, "грудня": 12,
}

var cyrillicDatePattern = regexp.MustCompile(`(?i)\b(\d{1,2})\s+([а-яіїєА-ЯІЇЄ]+)\s+(\d{4})\b`)

// ExtractDates parses dd.mm.yyyy, yyyy-mm-dd, dd/mm/yyyy, and Cyrillic
// textual-month dates from text, per §4.2's DOB parsing rules. Whether a
// given match is a birth date (vs. some other date) is decided by proximity
// to a DOB anchor; callers separate the two lists.
func ExtractDates(text string) (birth []types.ISODate, other []types.ISODate) {
	hasAnchor := dobAnchorPattern.MatchString(text)

	for _, loc := range dateDMYDot.FindAllStringSubmatchIndex(text, -1) {
		d := parseNumericDate(text, loc, true)
		appendDate(&birth, &other, d, loc[0], loc[1], hasAnchor, anchorNear(text, loc[0], loc[1]))
	}
	for _, loc := range dateYMDDash.FindAllStringSubmatchIndex(text, -1) {
		d := parseNumericDate(text, loc, false)
		appendDate(&birth, &other, d, loc[0], loc[1], hasAnchor, anchorNear(text, loc[0], loc[1]))
	}
	for _, loc := range dateDMYSlash.FindAllStringSubmatchIndex(text, -1) {
		d := parseNumericDate(text, loc, true)
		appendDate(&birth, &other, d, loc[0], loc[1], hasAnchor, anchorNear(text, loc[0], loc[1]))
	}
	for _, loc := range cyrillicDatePattern.FindAllStringSubmatchIndex(text, -1) {
		d := parseCyrillicDate(text, loc)
		appendDate(&birth, &other, d, loc[0], loc[1], hasAnchor, anchorNear(text, loc[0], loc[1]))
	}

	return birth, other
}

// appendDate records d's surface position (so persons.go can gate its
// attachment by proximity to a name, the same way identifiers are gated)
// before sorting it into the birth or other list.
func appendDate(birth, other *[]types.ISODate, d *types.ISODate, start, end int, hasAnchor bool, near bool) {
	if d == nil {
		return
	}
	d.Position = &types.Span{Start: start, End: end}
	if hasAnchor && near {
		*birth = append(*birth, *d)
	} else {
		*other = append(*other, *d)
	}
}

// anchorNear reports whether a DOB anchor phrase appears in the window that
// starts 30 bytes before the date match and ends where the match ends.
func anchorNear(text string, start, end int) bool {
	windowStart := start - 30
	if windowStart < 0 {
		windowStart = 0
	}
	return dobAnchorPattern.MatchString(text[windowStart:end])
}

func parseNumericDate(text string, loc []int, dayFirst bool) *types.ISODate {
	groups := submatches(text, loc)
	var day, month, year int
	if dayFirst {
		day, _ = strconv.Atoi(groups[1])
		month, _ = strconv.Atoi(groups[2])
		year, _ = strconv.Atoi(groups[3])
	} else {
		year, _ = strconv.Atoi(groups[1])
		month, _ = strconv.Atoi(groups[2])
		day, _ = strconv.Atoi(groups[3])
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	return &types.ISODate{
		Value:     fmt.Sprintf("%04d-%02d-%02d", year, month, day),
		Precision: types.PrecisionDay,
	}
}

func parseCyrillicDate(text string, loc []int) *types.ISODate {
	groups := submatches(text, loc)
	day, _ := strconv.Atoi(groups[1])
	month, ok := cyrillicMonths[strings.ToLower(groups[2])]
	if !ok {
		return nil
	}
	year, _ := strconv.Atoi(groups[3])
	return &types.ISODate{
		Value:     fmt.Sprintf("%04d-%02d-%02d", year, month, day),
		Precision: types.PrecisionDay,
	}
}

func submatches(text string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := 0; i < len(loc); i += 2 {
		if loc[i] < 0 {
			continue
		}
		out[i/2] = text[loc[i]:loc[i+1]]
	}
	return out
}
