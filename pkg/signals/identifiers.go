// Package signals implements layer 6: extraction of persons, organisations,
// identifiers, and dates of birth from normalized name data, including the
// sanctioned-ID fast path.
package signals

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vigilcore/sentry/pkg/types"
)

var (
	digitsPattern10to12 = regexp.MustCompile(`\b\d{10,12}\b`)
	edrpouPattern       = regexp.MustCompile(`\b\d{8}\b`)
	ogrnPattern         = regexp.MustCompile(`\b\d{13,15}\b`)
	ibanPattern         = regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{4}\d{7,30}\b`)
	swiftPattern        = regexp.MustCompile(`\b[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}(?:[A-Z0-9]{3})?\b`)
	passportPattern     = regexp.MustCompile(`(?i)(?:passport|паспорт)[\s:№#-]*([A-Za-z0-9]{6,9})\b`)
	ssnPattern          = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	einPattern          = regexp.MustCompile(`\b\d{2}-\d{7}\b`)
)

// ExtractIdentifiers runs every identifier extractor over text and returns
// all candidates found, length-gated then checksum-validated per §4.2.
// A candidate may be emitted with valid=false; only the sanctioned-ID fast
// path (sanctioned.go) ignores validity.
func ExtractIdentifiers(text string) []types.ID {
	var ids []types.ID

	ids = append(ids, extractINNCandidates(text)...)
	ids = append(ids, extractByPattern(text, edrpouPattern, types.IDTypeEDRPOU, validateEDRPOU)...)
	ids = append(ids, extractByPattern(text, ogrnPattern, types.IDTypeOGRN, validateOGRN)...)
	ids = append(ids, extractByPattern(text, ibanPattern, types.IDTypeIBAN, validateIBAN)...)
	ids = append(ids, extractSWIFTCandidates(text)...)
	ids = append(ids, extractPassportCandidates(text)...)
	ids = append(ids, extractByPattern(text, ssnPattern, types.IDTypeSSN, validateSSNFormat)...)
	ids = append(ids, extractByPattern(text, einPattern, types.IDTypeEIN, validateEINFormat)...)

	return dedupeIDs(ids)
}

// extractINNCandidates classifies bare 10-12 digit runs as INN candidates.
// Length alone is the coarse gate (§4.2); the checksum is the fine gate and
// does not block emission.
func extractINNCandidates(text string) []types.ID {
	var out []types.ID
	for _, loc := range digitsPattern10to12.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		valid := validateINNChecksum(raw)
		out = append(out, types.ID{
			Type:       classifyINN(raw),
			Value:      raw,
			Raw:        raw,
			Confidence: 0.8,
			Valid:      valid,
			Position:   &types.Span{Start: loc[0], End: loc[1]},
		})
	}
	return out
}

func classifyINN(digits string) types.IDType {
	switch len(digits) {
	case 10:
		return types.IDTypeINNUA
	case 12:
		return types.IDTypeINNRU
	default:
		return types.IDTypeINN
	}
}

func extractByPattern(text string, pattern *regexp.Regexp, t types.IDType, validate func(string) bool) []types.ID {
	var out []types.ID
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		out = append(out, types.ID{
			Type:       t,
			Value:      raw,
			Raw:        raw,
			Confidence: 0.75,
			Valid:      validate(raw),
			Position:   &types.Span{Start: loc[0], End: loc[1]},
		})
	}
	return out
}

func extractSWIFTCandidates(text string) []types.ID {
	var out []types.ID
	for _, loc := range swiftPattern.FindAllStringIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		if len(raw) != 8 && len(raw) != 11 {
			continue
		}
		out = append(out, types.ID{
			Type:       types.IDTypeSWIFT,
			Value:      raw,
			Raw:        raw,
			Confidence: 0.7,
			Valid:      true,
			Position:   &types.Span{Start: loc[0], End: loc[1]},
		})
	}
	return out
}

func extractPassportCandidates(text string) []types.ID {
	var out []types.ID
	matches := passportPattern.FindAllStringSubmatchIndex(text, -1)
	for _, m := range matches {
		if len(m) < 4 {
			continue
		}
		value := text[m[2]:m[3]]
		out = append(out, types.ID{
			Type:       types.IDTypePassport,
			Value:      value,
			Raw:        text[m[0]:m[1]],
			Confidence: 0.8,
			Valid:      true,
			Position:   &types.Span{Start: m[2], End: m[3]},
		})
	}
	return out
}

// validateINNChecksum implements the published Russian/Ukrainian INN
// check-digit formula for 10- and 12-digit forms.
func validateINNChecksum(digits string) bool {
	d, err := digitsToInts(digits)
	if err != nil {
		return false
	}
	switch len(d) {
	case 10:
		weights := []int{2, 4, 10, 3, 5, 9, 4, 6, 8}
		check := checksum(d[:9], weights) % 11 % 10
		return check == d[9]
	case 12:
		weights1 := []int{7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
		c1 := checksum(d[:10], weights1) % 11 % 10
		weights2 := []int{3, 7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
		c2 := checksum(d[:11], weights2) % 11 % 10
		return c1 == d[10] && c2 == d[11]
	default:
		return false
	}
}

func checksum(digits []int, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += digits[i] * w
	}
	return sum
}

func digitsToInts(s string) ([]int, error) {
	out := make([]int, len(s))
	for i, r := range s {
		n, err := strconv.Atoi(string(r))
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// validateEDRPOU applies the Ukrainian 8-digit EDRPOU check-digit formula.
func validateEDRPOU(s string) bool {
	d, err := digitsToInts(s)
	if err != nil || len(d) != 8 {
		return false
	}
	var weights []int
	if d[0] >= 3 {
		weights = []int{1, 2, 3, 4, 5, 6, 7}
	} else {
		weights = []int{7, 1, 2, 3, 4, 5, 6}
	}
	sum := checksum(d[:7], weights)
	check := sum % 11
	if check > 9 {
		sum = checksum(d[:7], addConst(weights, 2))
		check = sum % 11 % 10
	}
	return check == d[7]
}

func addConst(weights []int, c int) []int {
	out := make([]int, len(weights))
	for i, w := range weights {
		out[i] = w + c
	}
	return out
}

// validateOGRN applies the Russian OGRN/OGRNIP check-digit rule: the first
// N-1 digits, interpreted as an integer, mod 11 (or mod 13 for the 15-digit
// individual-entrepreneur form), truncated to its last digit, must equal
// the trailing check digit.
func validateOGRN(s string) bool {
	if len(s) != 13 && len(s) != 15 {
		return false
	}
	n, err := strconv.ParseUint(s[:len(s)-1], 10, 64)
	if err != nil {
		return false
	}
	mod := uint64(11)
	if len(s) == 15 {
		mod = 13
	}
	check := (n % mod) % 10
	want, _ := strconv.Atoi(string(s[len(s)-1]))
	return int(check) == want
}

// validateIBAN applies the standard mod-97 IBAN checksum.
func validateIBAN(s string) bool {
	if len(s) < 15 || len(s) > 34 {
		return false
	}
	rearranged := s[4:] + s[:4]
	var numeric strings.Builder
	for _, r := range rearranged {
		switch {
		case r >= '0' && r <= '9':
			numeric.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			numeric.WriteString(strconv.Itoa(int(r-'A') + 10))
		default:
			return false
		}
	}
	return mod97(numeric.String()) == 1
}

func mod97(numeric string) int {
	remainder := 0
	for _, r := range numeric {
		remainder = (remainder*10 + int(r-'0')) % 97
	}
	return remainder
}

func validateSSNFormat(s string) bool {
	return ssnPattern.MatchString(s)
}

func validateEINFormat(s string) bool {
	return einPattern.MatchString(s)
}

// dedupeIDs drops exact (type, value) duplicates, keeping the
// highest-confidence instance per the ID deduplication ordering in §4.2.
func dedupeIDs(ids []types.ID) []types.ID {
	best := map[string]types.ID{}
	var order []string
	for _, id := range ids {
		key := string(id.Type) + ":" + id.Value
		existing, ok := best[key]
		if !ok {
			best[key] = id
			order = append(order, key)
			continue
		}
		if id.Confidence > existing.Confidence {
			best[key] = id
		}
	}
	out := make([]types.ID, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}
