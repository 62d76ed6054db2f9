package anonymize

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AutmateStudio/Anonimiser/internal/entity"
	"github.com/AutmateStudio/Anonimiser/internal/fusion"
	anonotel "github.com/AutmateStudio/Anonimiser/internal/otel"
)

var tracer = anonotel.Tracer("github.com/AutmateStudio/Anonimiser/internal/anonymize")

// SpanSource produces candidate spans for a text. Satisfied by
// detect.Engine; tests plug in fakes.
type SpanSource interface {
	Detect(ctx context.Context, text string) []entity.CandidateSpan
}

// Result is the outcome of one redaction request.
type Result struct {
	RedactedText   string
	Mapping        Mapping
	Counts         map[string]int
	ProcessingTime float64
	SpanCount      int
}

// Anonymizer runs the full pipeline: detectors → fusion → placeholder
// substitution. It is stateless across requests; all mutable state lives in
// the per-call Request.
type Anonymizer struct {
	source SpanSource
}

// New returns an Anonymizer reading candidates from source.
func New(source SpanSource) *Anonymizer {
	return &Anonymizer{source: source}
}

// Redact anonymizes text and returns the redacted text plus the mapping
// needed to invert it. A text yielding zero candidates comes back unchanged
// with an empty mapping; that is not an error.
func (a *Anonymizer) Redact(ctx context.Context, text string) *Result {
	ctx, span := tracer.Start(ctx, "anonymize.redact")
	defer span.End()

	start := time.Now()
	candidates := a.source.Detect(ctx, text)
	accepted := fusion.FuseTraced(ctx, len([]rune(text)), candidates)

	req := NewRequest()
	redacted := Substitute(text, accepted, req)

	res := &Result{
		RedactedText:   redacted,
		Mapping:        req.Mapping(),
		Counts:         req.Counts(),
		ProcessingTime: time.Since(start).Seconds(),
		SpanCount:      len(accepted),
	}
	span.SetAttributes(
		attribute.Int("anonymize.spans", res.SpanCount),
		attribute.Int("anonymize.candidates", len(candidates)),
	)
	return res
}
