// Package audit provides an HMAC-signed audit trail for redaction requests.
//
// Every redaction produces a Record that is signed (HMAC-SHA256) and
// persisted in SQLite. Records hold only SHA-256 hashes of the input and
// output texts plus per-label placeholder counts, so the trail proves what
// was processed without retaining any personal data.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	anonotel "github.com/AutmateStudio/Anonimiser/internal/otel"
)

var tracer = anonotel.Tracer("github.com/AutmateStudio/Anonimiser/internal/audit")

// Store persists HMAC-signed audit records in SQLite.
type Store struct {
	db     *sql.DB
	signer *Signer
}

// Record is the full audit entry for a single redaction request.
type Record struct {
	ID         string         `json:"id"`
	Timestamp  time.Time      `json:"timestamp"`
	Caller     string         `json:"caller"`
	Operation  string         `json:"operation"`
	InputHash  string         `json:"input_hash"`
	OutputHash string         `json:"output_hash"`
	Counts     map[string]int `json:"counts,omitempty"`
	SpanCount  int            `json:"span_count"`
	DurationMS int64          `json:"duration_ms"`
	Signature  string         `json:"signature"`
}

// NewStore creates an audit store with HMAC signing.
func NewStore(dbPath string, signingKey string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS audit (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMP NOT NULL,
		caller TEXT NOT NULL,
		operation TEXT NOT NULL,
		record_json TEXT NOT NULL,
		signature TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_caller ON audit(caller);
	CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit(timestamp);
	`

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}

	signer, err := NewSigner(signingKey)
	if err != nil {
		return nil, fmt.Errorf("creating signer: %w", err)
	}

	return &Store{
		db:     db,
		signer: signer,
	}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Store saves a record with an HMAC signature.
func (s *Store) Store(ctx context.Context, rec *Record) error {
	ctx, span := tracer.Start(ctx, "audit.store",
		trace.WithAttributes(
			attribute.String("audit.id", rec.ID),
			attribute.String("caller", rec.Caller),
		))
	defer span.End()

	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	signature, err := s.signer.Sign(recordJSON)
	if err != nil {
		return fmt.Errorf("signing record: %w", err)
	}

	rec.Signature = signature

	recordJSONWithSig, _ := json.Marshal(rec)

	query := `INSERT INTO audit (id, timestamp, caller, operation, record_json, signature)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		rec.ID, rec.Timestamp, rec.Caller, rec.Operation,
		string(recordJSONWithSig), signature,
	)
	if err != nil {
		return fmt.Errorf("storing record: %w", err)
	}

	return nil
}

// Get retrieves a record by ID.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	ctx, span := tracer.Start(ctx, "audit.get",
		trace.WithAttributes(attribute.String("audit.id", id)))
	defer span.End()

	var recordJSON string
	query := `SELECT record_json FROM audit WHERE id = ?`
	err := s.db.QueryRowContext(ctx, query, id).Scan(&recordJSON)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("audit record %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying audit record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return nil, fmt.Errorf("unmarshaling audit record: %w", err)
	}

	return &rec, nil
}

// List returns records matching the given filters, newest first.
func (s *Store) List(ctx context.Context, caller string, from, to time.Time, limit int) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "audit.list",
		trace.WithAttributes(attribute.String("caller", caller)))
	defer span.End()

	query := `SELECT record_json FROM audit WHERE 1=1`
	args := []interface{}{}

	if caller != "" {
		query += ` AND caller = ?`
		args = append(args, caller)
	}
	if !from.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, from)
	}
	if !to.IsZero() {
		query += ` AND timestamp <= ?`
		args = append(args, to)
	}

	query += ` ORDER BY timestamp DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit records: %w", err)
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
			continue
		}

		results = append(results, rec)
	}

	span.SetAttributes(attribute.Int("audit.count", len(results)))
	return results, nil
}

// Verify checks the HMAC signature integrity of a stored record.
func (s *Store) Verify(ctx context.Context, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "audit.verify",
		trace.WithAttributes(attribute.String("audit.id", id)))
	defer span.End()

	rec, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}

	signature := rec.Signature
	rec.Signature = ""

	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshaling for verification: %w", err)
	}

	return s.signer.Verify(recordJSON, signature), nil
}
