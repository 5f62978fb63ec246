package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
	"github.com/vigilcore/sentry/pkg/types"
)

// Token is a surface token produced by tokenization, carrying the
// provenance notes that will seed its TokenTrace.
type Token struct {
	Text  string
	Notes []string
}

var innAnchorPattern = regexp.MustCompile(`(?i)^(инн|ipn|іпн|inn)$`)

// hardPunctuation is stripped as a token boundary unless the rune is one of
// '-', '\'', '.' and PreserveNames is set.
func isHardPunctuation(r rune) bool {
	if r == '-' || r == '\'' || r == '.' {
		return false
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// Tokenize splits sanitized text into surface tokens following §4.1.1:
// whitespace split, then punctuation split (respecting preserve_names),
// initial-run collapsing ("П.І." -> "П." "І."), double-dot collapsing, and
// digit-run retention for identifier candidates.
func Tokenize(text string, cfg Config) []Token {
	var tokens []Token

	for _, seg := range splitQuotedSegments(text) {
		if seg.quoted {
			tokens = append(tokens, Token{Text: seg.text})
			continue
		}
		for _, word := range splitWhitespace(seg.text) {
			tokens = append(tokens, splitWord(word, cfg)...)
		}
	}

	tokens = collapseInitialRuns(tokens)
	tokens = collapseDoubleDots(tokens)
	tokens = markINNAnchors(text, tokens)

	return tokens
}

type textSegment struct {
	text   string
	quoted bool
}

// splitQuotedSegments pulls out double-quoted spans (already canonicalised
// to '"' by layer 4) as standalone segments so they survive tokenization as
// a single ORG_ANCHOR candidate instead of being split word-by-word.
func splitQuotedSegments(text string) []textSegment {
	var segs []textSegment
	var plain strings.Builder
	inQuote := false
	var quoted strings.Builder

	flushPlain := func() {
		if plain.Len() > 0 {
			segs = append(segs, textSegment{text: plain.String()})
			plain.Reset()
		}
	}

	for _, r := range text {
		if r == '"' {
			if inQuote {
				quoted.WriteRune(r)
				segs = append(segs, textSegment{text: quoted.String(), quoted: true})
				quoted.Reset()
				inQuote = false
			} else {
				flushPlain()
				quoted.WriteRune(r)
				inQuote = true
			}
			continue
		}
		if inQuote {
			quoted.WriteRune(r)
		} else {
			plain.WriteRune(r)
		}
	}
	if inQuote {
		// Unterminated quote: treat the partial content as plain text.
		plain.WriteString(quoted.String())
	}
	flushPlain()
	return segs
}

func splitWhitespace(text string) []string {
	var words []string
	gr := uniseg.NewGraphemes(text)
	var cur strings.Builder
	for gr.Next() {
		cluster := gr.Str()
		r := []rune(cluster)
		if len(r) == 1 && unicode.IsSpace(r[0]) {
			if cur.Len() > 0 {
				words = append(words, cur.String())
				cur.Reset()
			}
			continue
		}
		cur.WriteString(cluster)
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	return words
}

func splitWord(word string, cfg Config) []Token {
	if word == "" {
		return nil
	}
	var out []Token
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, Token{Text: cur.String()})
			cur.Reset()
		}
	}
	for _, r := range word {
		if isHardPunctuation(r) {
			flush()
			continue
		}
		if !cfg.PreserveNames && (r == '-' || r == '\'' || r == '.') {
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	flush()
	return out
}

var initialRunPattern = regexp.MustCompile(`^\p{Lu}\.\p{Lu}\.$`)

// collapseInitialRuns splits a token like "П.І." (one run with no space)
// into two initial tokens "П." and "І.".
func collapseInitialRuns(tokens []Token) []Token {
	var out []Token
	for _, t := range tokens {
		if initialRunPattern.MatchString(t.Text) {
			runes := []rune(t.Text)
			out = append(out,
				Token{Text: string(runes[0:2]), Notes: []string{"split_initial_run"}},
				Token{Text: string(runes[2:4]), Notes: []string{"split_initial_run"}},
			)
			continue
		}
		out = append(out, t)
	}
	return out
}

func collapseDoubleDots(tokens []Token) []Token {
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		if strings.Contains(t.Text, "..") {
			t.Text = regexp.MustCompile(`\.\.+`).ReplaceAllString(t.Text, ".")
			t.Notes = append(t.Notes, "collapse_double_dots")
		}
		out[i] = t
	}
	return out
}

// markINNAnchors attaches "marker_inn_nearby" to alphabetic tokens that
// precede a digit-run-of-10+ token within 3 tokens, when one of those 3
// tokens is an ИНН/INN/ІПН anchor (matched case-insensitively).
func markINNAnchors(rawText string, tokens []Token) []Token {
	for i, t := range tokens {
		if !isDigitRun(t.Text) || len(t.Text) < 10 {
			continue
		}
		anchored := false
		for j := i - 1; j >= 0 && j >= i-3; j-- {
			if innAnchorPattern.MatchString(tokens[j].Text) {
				anchored = true
			}
		}
		if !anchored {
			continue
		}
		for j := i - 1; j >= 0 && j >= i-3; j-- {
			if isAlphabetic(tokens[j].Text) {
				tokens[j].Notes = append(tokens[j].Notes, "marker_inn_nearby")
			}
		}
	}
	return tokens
}

func isDigitRun(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '.' && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}

// FilterStopwords removes stop-set tokens, honoring strict_stopwords which
// keeps single-letter prepositions/conjunctions out of initial candidacy
// rather than deleting them outright (they are instead excluded from being
// classified as INITIAL by the role tagger, see roletag.go).
func FilterStopwords(tokens []Token, lang types.Language, cfg Config) []Token {
	if !cfg.RemoveStopWords {
		return tokens
	}
	dict := Default()
	var out []Token
	for _, t := range tokens {
		lower := strings.ToLower(t.Text)
		if dict.IsStopword(lang, lower) && len([]rune(t.Text)) > 1 {
			continue
		}
		out = append(out, t)
	}
	return out
}
