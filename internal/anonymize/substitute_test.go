package anonymize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutmateStudio/Anonimiser/internal/entity"
)

func TestSubstituteBasicScenario(t *testing.T) {
	text := "Иван +79001234567"
	spans := []entity.CandidateSpan{
		{Category: "PERSON", Start: 0, End: 4, Score: 0.9},
		{Category: "PHONE_NUMBER", Start: 5, End: 17, Score: 0.9},
	}
	req := NewRequest()
	got := Substitute(text, spans, req)

	assert.Equal(t, "{ИМЯ_1} {ТЕЛЕФОН_1}", got)
	m := req.Mapping().Map()
	assert.Equal(t, "Иван", m["{ИМЯ_1}"])
	assert.Equal(t, "+79001234567", m["{ТЕЛЕФОН_1}"])

	assert.Equal(t, text, Restore(got, m))
}

func TestSubstituteEmptySpans(t *testing.T) {
	req := NewRequest()
	assert.Equal(t, "привет", Substitute("привет", nil, req))
	assert.Empty(t, req.Mapping())
}

func TestSubstituteRegistersRightmostFirst(t *testing.T) {
	// Counter order follows registration order, which walks spans from the
	// end of the text: the last person in the text is ИМЯ_1.
	text := "Иван и Пётр"
	spans := []entity.CandidateSpan{
		{Category: "PERSON", Start: 0, End: 4, Score: 0.9},
		{Category: "PERSON", Start: 7, End: 11, Score: 0.9},
	}
	req := NewRequest()
	got := Substitute(text, spans, req)

	assert.Equal(t, "{ИМЯ_2} и {ИМЯ_1}", got)
	m := req.Mapping().Map()
	assert.Equal(t, "Пётр", m["{ИМЯ_1}"])
	assert.Equal(t, "Иван", m["{ИМЯ_2}"])
}

func TestSubstituteUsesOffsetsNotAdvisoryText(t *testing.T) {
	// A detector supplying approximate text must not corrupt the mapping:
	// offsets are authoritative.
	text := "позвони Иван завтра"
	spans := []entity.CandidateSpan{
		{Category: "PERSON", Start: 8, End: 12, Text: "иван за", Score: 0.9},
	}
	req := NewRequest()
	got := Substitute(text, spans, req)
	assert.Equal(t, "позвони {ИМЯ_1} завтра", got)
	v, ok := req.Mapping().Get("{ИМЯ_1}")
	require.True(t, ok)
	assert.Equal(t, "Иван", v)
}

func TestSubstituteCyrillicOffsets(t *testing.T) {
	// Rune offsets, not bytes: Cyrillic runes are two bytes each and the
	// splicing must still land on character boundaries.
	text := "ИНН 7707083893 указан"
	spans := []entity.CandidateSpan{
		{Category: "INN", Start: 4, End: 14, Score: 0.9},
	}
	req := NewRequest()
	got := Substitute(text, spans, req)
	assert.Equal(t, "ИНН {ИНН_1} указан", got)
	v, _ := req.Mapping().Get("{ИНН_1}")
	assert.Equal(t, "7707083893", v)
}

func TestRestoreLongestKeyFirst(t *testing.T) {
	// {ИМЯ_1} inside {ИМЯ_10}: naive ascending order would corrupt the
	// longer key's text.
	mapping := map[string]string{
		"{ИМЯ_1}":  "Анна",
		"{ИМЯ_10}": "Борис",
	}
	assert.Equal(t, "Борис и Анна", Restore("{ИМЯ_10} и {ИМЯ_1}", mapping))
}

func TestRestoreUnknownPlaceholderStaysLiteral(t *testing.T) {
	mapping := map[string]string{"{ИМЯ_1}": "Анна"}
	assert.Equal(t, "Анна и {ТЕЛЕФОН_1}", Restore("{ИМЯ_1} и {ТЕЛЕФОН_1}", mapping))
}

func TestRestoreReplacesAllOccurrences(t *testing.T) {
	mapping := map[string]string{"{ИМЯ_1}": "Анна"}
	assert.Equal(t, "Анна, Анна!", Restore("{ИМЯ_1}, {ИМЯ_1}!", mapping))
}

func TestRestoreEmptyMapping(t *testing.T) {
	assert.Equal(t, "как есть", Restore("как есть", nil))
}

func TestSubstituteRestoreRoundTrip(t *testing.T) {
	// Idempotent restore: with identity cleaners, restore(substitute(T)) == T
	// for any non-overlapping span set.
	text := "Клиент Иван Петров, тел +79001234567, ИНН 7707083893, адрес Невский проспект 28"
	spans := []entity.CandidateSpan{
		{Category: "PERSON", Start: 7, End: 18, Score: 0.85},
		{Category: "PHONE_NUMBER", Start: 24, End: 36, Score: 0.9},
		{Category: "INN", Start: 42, End: 52, Score: 0.9},
		{Category: "ADDRESS", Start: 60, End: 79, Score: 0.8},
	}
	req := NewRequest()
	identity := func(s string) string { return s }
	for _, cat := range []string{"PERSON", "PER", "ADDRESS", "LOC", "LOCATION"} {
		req.WithCleaner(cat, identity)
	}

	redacted := Substitute(text, spans, req)
	assert.NotEqual(t, text, redacted)
	assert.Equal(t, text, Restore(redacted, req.Mapping().Map()))
}
