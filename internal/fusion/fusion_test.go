package fusion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutmateStudio/Anonimiser/internal/entity"
)

func span(category string, start, end int, score float64) entity.CandidateSpan {
	return entity.CandidateSpan{Category: category, Start: start, End: end, Score: score}
}

func TestFuseEmpty(t *testing.T) {
	assert.Empty(t, Fuse(100, nil))
	assert.Empty(t, Fuse(100, []entity.CandidateSpan{}))
}

func TestFuseNonOverlapping(t *testing.T) {
	candidates := []entity.CandidateSpan{
		span("PHONE_NUMBER", 6, 20, 0.8),
		span("PERSON", 0, 5, 0.9),
	}
	got := Fuse(25, candidates)
	require.Len(t, got, 2)
	assert.Equal(t, "PERSON", got[0].Category)
	assert.Equal(t, "PHONE_NUMBER", got[1].Category)
}

func TestFuseHigherScoreEvicts(t *testing.T) {
	// Two candidates over [10,20) with different categories: only the
	// 0.9-scored one survives.
	candidates := []entity.CandidateSpan{
		span("INN", 10, 20, 0.6),
		span("PHONE_NUMBER", 10, 20, 0.9),
	}
	got := Fuse(30, candidates)
	require.Len(t, got, 1)
	assert.Equal(t, "PHONE_NUMBER", got[0].Category)
	assert.InDelta(t, 0.9, got[0].Score, 1e-9)
}

func TestFuseEqualScoreKeepsEarlier(t *testing.T) {
	// Strict inequality: an equal-score overlapping candidate never evicts.
	// At equal start the sort puts the higher score first; at equal score the
	// earlier-sorted (lower start) span wins, reproducibly.
	candidates := []entity.CandidateSpan{
		span("ADDRESS", 5, 15, 0.8),
		span("PERSON", 10, 20, 0.8),
	}
	for i := 0; i < 10; i++ {
		got := Fuse(30, candidates)
		require.Len(t, got, 1)
		assert.Equal(t, "ADDRESS", got[0].Category)
	}
}

func TestFusePartialOverlapLowerScoreDropped(t *testing.T) {
	candidates := []entity.CandidateSpan{
		span("PERSON", 0, 10, 0.95),
		span("ADDRESS", 8, 25, 0.7),
		span("PHONE_NUMBER", 25, 30, 0.9),
	}
	got := Fuse(40, candidates)
	require.Len(t, got, 2)
	assert.Equal(t, "PERSON", got[0].Category)
	assert.Equal(t, "PHONE_NUMBER", got[1].Category)
}

func TestFuseDropsMalformedSpans(t *testing.T) {
	candidates := []entity.CandidateSpan{
		span("PERSON", 5, 5, 0.99),   // empty
		span("PERSON", 9, 3, 0.99),   // inverted
		span("PERSON", -2, 4, 0.99),  // negative
		span("PERSON", 18, 25, 0.99), // past end of text
		span("INN", 0, 10, 0.9),
	}
	got := Fuse(20, candidates)
	require.Len(t, got, 1)
	assert.Equal(t, "INN", got[0].Category)
}

func TestFuseOutputNeverOverlaps(t *testing.T) {
	candidates := []entity.CandidateSpan{
		span("A", 0, 12, 0.5),
		span("B", 3, 8, 0.8),
		span("C", 7, 15, 0.7),
		span("D", 14, 22, 0.9),
		span("E", 2, 4, 0.95),
		span("F", 20, 28, 0.4),
	}
	got := Fuse(30, candidates)
	for i := 0; i < len(got); i++ {
		for j := i + 1; j < len(got); j++ {
			assert.False(t, got[i].Overlaps(got[j]),
				"spans %v and %v overlap", got[i], got[j])
		}
		if i > 0 {
			assert.Less(t, got[i-1].Start, got[i].Start, "output not start-ordered")
		}
	}
}

func TestFuseEqualStartHigherScoreWins(t *testing.T) {
	candidates := []entity.CandidateSpan{
		span("SHORT", 4, 9, 0.6),
		span("LONG", 4, 18, 0.85),
	}
	got := Fuse(20, candidates)
	require.Len(t, got, 1)
	assert.Equal(t, "LONG", got[0].Category)
}

func TestFuseTraced(t *testing.T) {
	got := FuseTraced(context.Background(), 20, []entity.CandidateSpan{
		span("PERSON", 0, 4, 0.9),
	})
	require.Len(t, got, 1)
}
