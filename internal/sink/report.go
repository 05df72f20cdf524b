package sink

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ReportStore records per-record rejections and run summaries in Postgres so
// operators can triage bad institution data without grepping logs. A nil
// store is valid and records nothing.
type ReportStore struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

// NewReportStore opens the store; an empty DSN disables reporting.
func NewReportStore(dsn string) (*ReportStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, nil
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &ReportStore{db: db}, nil
}

func (s *ReportStore) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS transform_rejections (
    id          BIGSERIAL PRIMARY KEY,
    run_id      TEXT        NOT NULL,
    record_id   TEXT        NOT NULL,
    source      TEXT        NOT NULL,
    message     TEXT        NOT NULL,
    rejected_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS transform_runs (
    run_id      TEXT PRIMARY KEY,
    processed   BIGINT      NOT NULL,
    written     BIGINT      NOT NULL,
    failed      BIGINT      NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL
);`)
		s.schemaErr = err
	})
	return s.schemaErr
}

// Rejection inserts one rejected-record row.
func (s *ReportStore) Rejection(ctx context.Context, runID, recordID, source, message string, at time.Time) error {
	if s == nil {
		return nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transform_rejections (run_id, record_id, source, message, rejected_at) VALUES ($1, $2, $3, $4, $5)`,
		runID, recordID, source, message, at.UTC())
	return err
}

// RunSummary upserts the run's final counts.
func (s *ReportStore) RunSummary(ctx context.Context, runID string, processed, written, failed int64, startedAt, finishedAt time.Time) error {
	if s == nil {
		return nil
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO transform_runs (run_id, processed, written, failed, started_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (run_id) DO UPDATE SET
    processed = EXCLUDED.processed,
    written = EXCLUDED.written,
    failed = EXCLUDED.failed,
    finished_at = EXCLUDED.finished_at`,
		runID, processed, written, failed, startedAt.UTC(), finishedAt.UTC())
	return err
}

// Close releases the database handle.
func (s *ReportStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
