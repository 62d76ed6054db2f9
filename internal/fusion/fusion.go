// Package fusion merges candidate spans from arbitrarily many detectors into
// one non-overlapping, start-ordered set.
//
// Detectors run independently and frequently propose conflicting spans over
// the same text (a regex INN match inside an address, a NER person overlapping
// a phone prefix). Fusion resolves every conflict with a single rule: a
// candidate evicts an accepted span only when its score is strictly greater.
package fusion

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AutmateStudio/Anonimiser/internal/entity"
	anonotel "github.com/AutmateStudio/Anonimiser/internal/otel"
)

var tracer = anonotel.Tracer("github.com/AutmateStudio/Anonimiser/internal/fusion")

// Fuse resolves a batch of candidate spans into a non-overlapping set ordered
// by start offset. textLen is the source text length in runes; candidates
// with offsets outside [0, textLen) or with start >= end are detector noise
// and are dropped without error.
//
// Candidates are processed in (start ascending, score descending) order.
// A candidate overlapping an already accepted span replaces it only when its
// score is strictly greater; ties keep the earlier-processed span. The strict
// inequality is what makes the output deterministic across runs.
func Fuse(textLen int, candidates []entity.CandidateSpan) []entity.CandidateSpan {
	if len(candidates) == 0 {
		return nil
	}

	ordered := make([]entity.CandidateSpan, 0, len(candidates))
	for _, c := range candidates {
		if c.Valid(textLen) {
			ordered = append(ordered, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start != ordered[j].Start {
			return ordered[i].Start < ordered[j].Start
		}
		return ordered[i].Score > ordered[j].Score
	})

	// O(n²) scan over the accepted set. Fine at conversational-message scale
	// (tens of spans); a sweep line would be needed for whole documents.
	accepted := make([]entity.CandidateSpan, 0, len(ordered))
	for _, c := range ordered {
		idx := -1
		for i, a := range accepted {
			if c.Overlaps(a) {
				idx = i
				break
			}
		}
		if idx == -1 {
			accepted = append(accepted, c)
			continue
		}
		if c.Score > accepted[idx].Score {
			accepted = append(accepted[:idx], accepted[idx+1:]...)
			accepted = append(accepted, c)
		}
	}

	sort.Slice(accepted, func(i, j int) bool { return accepted[i].Start < accepted[j].Start })
	return accepted
}

// FuseTraced is Fuse with a trace span recording candidate and accepted
// counts. The HTTP pipeline uses it; library callers can use Fuse directly.
func FuseTraced(ctx context.Context, textLen int, candidates []entity.CandidateSpan) []entity.CandidateSpan {
	_, span := tracer.Start(ctx, "fusion.fuse")
	defer span.End()
	accepted := Fuse(textLen, candidates)
	span.SetAttributes(
		attribute.Int("fusion.candidates", len(candidates)),
		attribute.Int("fusion.accepted", len(accepted)),
	)
	return accepted
}
