package anonymize

import (
	"strings"
	"unicode"
)

// Words that mark the end of a captured name. NER models routinely drag
// trailing context ("Иван время встречи ...") into the span; the first stop
// word cuts it off.
var nameStopWords = map[string]struct{}{
	"время": {}, "место": {}, "номер": {}, "телефон": {}, "адрес": {},
	"дата": {}, "день": {}, "месяц": {}, "год": {}, "лет": {},
	"часов": {}, "минут": {}, "квартира": {}, "подъезд": {}, "этаж": {},
	"дом": {}, "улица": {}, "сообщу": {},
}

const trimCutset = ".,!?;:()[]{}\"'-"

// CleanName normalizes a captured person name: collapses whitespace,
// truncates at the first stop word, keeps only capitalized alphabetic
// (optionally hyphenated) tokens from the start, and caps the result at 50
// characters. When nothing qualifies it falls back to the first raw token.
// Pure function; safe to call from any request.
func CleanName(text string) string {
	if text == "" {
		return text
	}
	text = strings.Join(strings.Fields(text), " ")
	words := strings.Fields(text)

	var kept []string
	for _, w := range words {
		wc := strings.Trim(w, trimCutset)
		if wc == "" {
			continue
		}
		if _, stop := nameStopWords[strings.ToLower(wc)]; stop {
			break
		}
		if startsUpper(wc) && alphabeticIgnoringHyphens(wc) {
			kept = append(kept, wc)
		}
	}

	if len(kept) > 0 {
		return truncateRunes(strings.Join(kept, " "), 50)
	}

	first := text
	if len(words) > 0 {
		first = words[0]
	}
	return truncateRunes(strings.Trim(first, trimCutset), 50)
}

// CleanAddress normalizes a captured address: collapses whitespace, strips
// trailing punctuation, and when longer than 200 characters truncates at the
// last delimiter (comma, period, semicolon) found after character 100, else
// hard-truncates at 200. Pure function.
func CleanAddress(text string) string {
	if text == "" {
		return text
	}
	text = strings.Join(strings.Fields(text), " ")
	text = strings.TrimRight(text, ".,!?;:")

	runes := []rune(text)
	if len(runes) <= 200 {
		return text
	}
	head := runes[:200]
	for _, d := range []rune{',', '.', ';'} {
		if idx := lastIndexRune(head, d); idx > 100 {
			return strings.TrimSpace(string(head[:idx]))
		}
	}
	return strings.TrimSpace(string(head))
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// alphabeticIgnoringHyphens reports whether every rune is a letter once
// hyphens are ignored (double-barrelled names like Салтыкова-Щедрина pass).
func alphabeticIgnoringHyphens(s string) bool {
	seen := false
	for _, r := range s {
		if r == '-' {
			continue
		}
		if !unicode.IsLetter(r) {
			return false
		}
		seen = true
	}
	return seen
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func lastIndexRune(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}
