package pipeline

import "strings"

// contextFramingPhrases groups phrases that plausibly indicate the narrative
// is discussing a name rather than transacting with them: a training
// exercise, a due-diligence/compliance write-up, or a historical reference.
// Detection is intentionally cheap substring matching, not NLP — it only
// needs to catch the common framings seen in payment narratives, not every
// paraphrase.
var contextFramingPhrases = map[string][]string{
	"educational": {
		"for training purposes", "training exercise", "учебный пример",
		"навчальний приклад", "case study", "кейс для обучения",
	},
	"professional": {
		"due diligence", "compliance review", "проверка контрагента",
		"перевірка контрагента", "kyc review", "комплаенс",
	},
	"historical": {
		"historical record", "in memory of", "формерли known as",
		"раніше відомий як", "ранее известен как", "deceased",
	},
}

// DetectContextFraming is the optional, explicitly-flagged signal behind the
// decision engine's context discount (§SUPPLEMENTED FEATURES): it looks for
// a small set of framing phrases in the original narrative and returns the
// first category matched, or "" if none apply.
func DetectContextFraming(text string) string {
	lower := strings.ToLower(text)
	for _, category := range []string{"educational", "professional", "historical"} {
		for _, phrase := range contextFramingPhrases[category] {
			if strings.Contains(lower, phrase) {
				return category
			}
		}
	}
	return ""
}
