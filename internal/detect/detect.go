// Package detect hosts the detector framework: the normalized Detector
// interface, the rule-based regex detector, the remote NER adapter, and the
// engine that fans a text out to all detectors and buffers the complete
// candidate set for fusion.
package detect

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AutmateStudio/Anonimiser/internal/entity"
	anonotel "github.com/AutmateStudio/Anonimiser/internal/otel"
)

var tracer = anonotel.Tracer("github.com/AutmateStudio/Anonimiser/internal/detect")

// Detector proposes candidate spans over a text. Implementations adapt a
// detector's native output (regex matches, NER model spans) into the shared
// CandidateSpan shape; they must report rune offsets into the exact input.
type Detector interface {
	Name() string
	Detect(ctx context.Context, text string) ([]entity.CandidateSpan, error)
}

// Engine runs a fixed set of detectors over a text. Detectors run
// concurrently; the engine waits for every one of them and only then hands
// the combined candidates to the caller, because fusion's overlap resolution
// needs the complete set, never a partial one.
type Engine struct {
	detectors []Detector
}

// NewEngine returns an engine over the given detectors.
func NewEngine(detectors ...Detector) *Engine {
	return &Engine{detectors: detectors}
}

// Detect gathers candidates from all detectors. A detector returning an
// error contributes zero spans and is logged; a dead NER backend must never
// break redaction of the message.
func (e *Engine) Detect(ctx context.Context, text string) []entity.CandidateSpan {
	ctx, span := tracer.Start(ctx, "detect.engine")
	defer span.End()

	results := make([][]entity.CandidateSpan, len(e.detectors))
	var wg sync.WaitGroup
	for i, d := range e.detectors {
		wg.Add(1)
		go func(i int, d Detector) {
			defer wg.Done()
			spans, err := d.Detect(ctx, text)
			if err != nil {
				log.Warn().Err(err).Str("detector", d.Name()).Msg("detector_failed")
				return
			}
			results[i] = spans
		}(i, d)
	}
	wg.Wait()

	var combined []entity.CandidateSpan
	for _, r := range results {
		combined = append(combined, r...)
	}

	span.SetAttributes(
		attribute.Int("detect.detectors", len(e.detectors)),
		attribute.Int("detect.candidates", len(combined)),
	)
	return combined
}
