package anonymize

import (
	"strings"

	"github.com/AutmateStudio/Anonimiser/internal/entity"
)

// Substitute rewrites text by replacing each accepted span with a placeholder
// allocated from req. Spans must be non-overlapping and sorted by start
// offset (the fusion output contract); offsets are rune offsets.
//
// Spans are registered rightmost-first, so the last entity in the text gets
// counter 1 for its label. The output itself is assembled in a single
// left-to-right pass copying the untouched slices between span boundaries,
// which avoids quadratic re-splicing without changing the result.
func Substitute(text string, spans []entity.CandidateSpan, req *Request) string {
	if len(spans) == 0 {
		return text
	}
	runes := []rune(text)

	placeholders := make([]string, len(spans))
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		placeholders[i] = req.Register(s.Category, string(runes[s.Start:s.End]))
	}

	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for i, s := range spans {
		b.WriteString(string(runes[pos:s.Start]))
		b.WriteString(placeholders[i])
		pos = s.End
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}
