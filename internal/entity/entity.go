// Package entity defines the normalized candidate span every detector must
// produce, and the category → display-label table used for placeholders.
//
// Detectors (statistical NER, regex recognizers) have wildly different native
// output shapes; the single CandidateSpan value type is the only thing the
// fusion and substitution layers ever see.
package entity

// Detector category names. Detectors may also report synonyms (PER, LOC,
// LOCATION) or entirely new categories; both resolve through Label.
const (
	CategoryPerson   = "PERSON"
	CategoryOrg      = "ORG"
	CategoryPhone    = "PHONE_NUMBER"
	CategoryTaxID    = "INN"
	CategoryPassport = "PASSPORT"
	CategoryAddress  = "ADDRESS"
)

// CandidateSpan is a detector's proposal over the source text.
//
// Start and End are 0-based rune offsets into the exact input string,
// half-open [Start, End). Text is advisory only (a detector may supply
// approximate text), so the engine always slices by offsets.
type CandidateSpan struct {
	Category string  `json:"entity"`
	Start    int     `json:"start"`
	End      int     `json:"end"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

// Valid reports whether the span's offsets are usable against a text of
// textLen runes. Empty and out-of-bounds spans are detector noise and are
// dropped silently rather than surfaced as errors.
func (c CandidateSpan) Valid(textLen int) bool {
	return c.Start >= 0 && c.Start < c.End && c.End <= textLen
}

// Overlaps reports whether two half-open spans share at least one position.
func (c CandidateSpan) Overlaps(o CandidateSpan) bool {
	return !(c.End <= o.Start || c.Start >= o.End)
}

// labelTable maps detector categories to the human-facing Russian labels
// used inside placeholders. Fixed lookup, not inheritance: new categories
// pass through unchanged.
var labelTable = map[string]string{
	"PER":          "ИМЯ",
	"PERSON":       "ИМЯ",
	"ORG":          "ОРГАНИЗАЦИЯ",
	"LOC":          "АДРЕС",
	"LOCATION":     "АДРЕС",
	"ADDRESS":      "АДРЕС",
	"PHONE_NUMBER": "ТЕЛЕФОН",
	"PHONE":        "ТЕЛЕФОН",
	"INN":          "ИНН",
	"TAX_ID":       "ИНН",
	"PASSPORT":     "ПАСПОРТ",
}

// Label resolves a detector category to its display label. Unknown
// categories return their raw name so new detectors keep working without a
// code change.
func Label(category string) string {
	if l, ok := labelTable[category]; ok {
		return l
	}
	return category
}
