package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Generator creates and persists audit records.
type Generator struct {
	store *Store
}

// NewGenerator creates an audit generator backed by the given store.
func NewGenerator(store *Store) *Generator {
	return &Generator{store: store}
}

// GenerateParams holds all inputs for creating an audit record. Callers
// populate this at the end of a redaction; the Generator hashes the texts,
// signs the record, and persists it. The texts themselves never reach disk.
type GenerateParams struct {
	Caller     string         // Authenticated API caller
	Operation  string         // "redact" or "batch"
	InputText  string         // Raw request text (hashed, not stored verbatim)
	OutputText string         // Redacted text (hashed)
	Counts     map[string]int // Placeholders issued per label
	SpanCount  int            // Spans substituted after fusion
	DurationMS int64          // Wall-clock duration of the full pipeline
}

// Generate creates and stores an audit record from the given parameters.
func (g *Generator) Generate(ctx context.Context, params GenerateParams) (*Record, error) {
	rec := &Record{
		ID:         "red_" + uuid.New().String()[:8],
		Timestamp:  time.Now(),
		Caller:     params.Caller,
		Operation:  params.Operation,
		InputHash:  HashText(params.InputText),
		OutputHash: HashText(params.OutputText),
		Counts:     params.Counts,
		SpanCount:  params.SpanCount,
		DurationMS: params.DurationMS,
	}

	if err := g.store.Store(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}
